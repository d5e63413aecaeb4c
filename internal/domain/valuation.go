package domain

import "github.com/shopspring/decimal"

// SKUValuation is the current stock position for one SKU. Value is quantity
// times the latest unit cost ("last cost wins", the dashboard figure);
// FIFOValue sums quantity times cost across remaining layers. The two can
// differ whenever layer costs differ, and both are reported so the gap is
// visible instead of silently picking one.
type SKUValuation struct {
	SKU            string          `json:"sku"`
	Quantity       int             `json:"quantity"`
	IncomingQty    int             `json:"incoming_qty"`
	LatestUnitCost decimal.Decimal `json:"latest_unit_cost"`
	Value          decimal.Decimal `json:"value"`
	FIFOValue      decimal.Decimal `json:"fifo_value"`
}

// ValuationReport aggregates SKU valuations for the dashboard.
type ValuationReport struct {
	Items      []SKUValuation  `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
}
