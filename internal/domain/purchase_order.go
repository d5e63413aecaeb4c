package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder represents goods ordered from a supplier. Only the
// transition into Delivered puts stock (cost layers) on the books; every
// other status merely tracks incoming quantity.
type PurchaseOrder struct {
	ID           int64               `json:"id" db:"id"`
	Reference    string              `json:"reference" db:"reference"`
	Supplier     string              `json:"supplier" db:"supplier"`
	Status       int                 `json:"status" db:"status"`
	DeliveryCost decimal.Decimal     `json:"delivery_cost" db:"delivery_cost"`
	OrderedAt    time.Time           `json:"ordered_at" db:"ordered_at"`
	Lines        []PurchaseOrderLine `json:"lines" db:"-"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// PurchaseOrderLine is one SKU position on a purchase order. UnitCost is
// the supplier item cost before any delivery cost allocation.
type PurchaseOrderLine struct {
	ID              int64           `json:"id" db:"id"`
	PurchaseOrderID int64           `json:"purchase_order_id" db:"purchase_order_id"`
	SKU             string          `json:"sku" db:"sku"`
	ProductName     string          `json:"product_name" db:"product_name"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost" db:"unit_cost"`
}

// TotalQuantity sums the ordered quantity across all lines.
func (po *PurchaseOrder) TotalQuantity() int {
	total := 0
	for _, line := range po.Lines {
		total += line.Quantity
	}
	return total
}

// CreatePurchaseOrderRequest is the payload for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	Reference    string                           `json:"reference" binding:"required"`
	Supplier     string                           `json:"supplier"`
	DeliveryCost decimal.Decimal                  `json:"delivery_cost"`
	OrderedAt    time.Time                        `json:"ordered_at"`
	Lines        []CreatePurchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreatePurchaseOrderLineRequest is one line of a create request.
type CreatePurchaseOrderLineRequest struct {
	SKU         string          `json:"sku" binding:"required"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// UpdatePOStatusRequest moves a purchase order to a new status.
type UpdatePOStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
