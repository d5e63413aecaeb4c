package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sales order. Monetary header fields are pointers because
// upstream order data may omit them; absent values are treated as zero in
// profit computation.
type Order struct {
	ID           int64            `json:"id" db:"id"`
	Reference    string           `json:"reference" db:"reference"`
	Customer     string           `json:"customer" db:"customer"`
	TotalAmount  *decimal.Decimal `json:"total_amount" db:"total_amount"`
	TaxAmount    *decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	ShippingCost *decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	Fulfilled    bool             `json:"fulfilled" db:"fulfilled"`
	PlacedAt     time.Time        `json:"placed_at" db:"placed_at"`
	Lines        []OrderLine      `json:"lines" db:"-"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// OrderLine is one SKU position on a sales order.
type OrderLine struct {
	ID         int64           `json:"id" db:"id"`
	OrderID    int64           `json:"order_id" db:"order_id"`
	SKU        string          `json:"sku" db:"sku"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
}

// OrderProfit is derived on demand from current ledger state plus the order
// header; it is never persisted as a source of truth, so historical figures
// can shift as layers change.
type OrderProfit struct {
	OrderID      int64             `json:"order_id"`
	Reference    string            `json:"reference"`
	Revenue      decimal.Decimal   `json:"revenue"`
	TaxAmount    decimal.Decimal   `json:"tax_amount"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	TotalCost    decimal.Decimal   `json:"total_cost"`
	Profit       decimal.Decimal   `json:"profit"`
	Lines        []OrderLineProfit `json:"lines"`
}

// OrderLineProfit is the per-line cost attribution inside an OrderProfit.
type OrderLineProfit struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	Shortfall int             `json:"shortfall,omitempty"`
}

// ProductRevenue aggregates revenue and quantity sold for one SKU across a
// set of orders.
type ProductRevenue struct {
	SKU      string          `json:"sku"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
}

// FulfillmentResult reports the cost attribution of a fulfillment at the
// moment it happened. Callers that need point-in-time-accurate history
// should persist this instead of recomputing later.
type FulfillmentResult struct {
	OrderID   int64                   `json:"order_id"`
	TotalCost decimal.Decimal         `json:"total_cost"`
	Lines     []LineFulfillmentResult `json:"lines"`
}

// LineFulfillmentResult carries the attributed cost and any shortfall for
// one fulfilled line. A non-zero shortfall means recorded inventory could
// not back the full quantity and should be treated as a data-quality alert.
type LineFulfillmentResult struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Cost      decimal.Decimal `json:"cost"`
	Shortfall int             `json:"shortfall"`
}

// HasShortfall reports whether any line was costed with fallback units.
func (r *FulfillmentResult) HasShortfall() bool {
	for _, line := range r.Lines {
		if line.Shortfall > 0 {
			return true
		}
	}
	return false
}

// CreateOrderRequest is the payload for recording a sales order.
type CreateOrderRequest struct {
	Reference    string                   `json:"reference" binding:"required"`
	Customer     string                   `json:"customer"`
	TotalAmount  *decimal.Decimal         `json:"total_amount"`
	TaxAmount    *decimal.Decimal         `json:"tax_amount"`
	ShippingCost *decimal.Decimal         `json:"shipping_cost"`
	PlacedAt     time.Time                `json:"placed_at"`
	Lines        []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateOrderLineRequest is one line of an order create request.
type CreateOrderLineRequest struct {
	SKU       string          `json:"sku" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
