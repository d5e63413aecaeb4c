package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLayer is a batch of inventory acquired at one unit cost and point in
// time. Layers are consumed oldest-first; Quantity is the remaining count
// and never goes negative. A layer with Quantity == 0 is exhausted but kept
// for audit until pruned.
type CostLayer struct {
	ID         int64           `json:"id" db:"id"`
	SKU        string          `json:"sku" db:"sku"`
	OriginID   string          `json:"origin_id" db:"origin_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	AcquiredAt time.Time       `json:"acquired_at" db:"acquired_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Exhausted reports whether the layer has no remaining quantity.
func (l *CostLayer) Exhausted() bool {
	return l.Quantity == 0
}
