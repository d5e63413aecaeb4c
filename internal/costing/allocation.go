package costing

import "github.com/shopspring/decimal"

// DeliveryCostPerUnit spreads a purchase order's delivery charge evenly
// across every ordered unit. The share is rounded to 2 decimal places
// before it is applied, because unit costs are presented to 2 decimals;
// summing the rounded per-unit figures can therefore differ from the raw
// delivery total by a few cents. That discrepancy is an accepted
// approximation, not something to correct after the fact.
func DeliveryCostPerUnit(deliveryCost decimal.Decimal, totalQuantity int) decimal.Decimal {
	if totalQuantity <= 0 || deliveryCost.IsZero() {
		return decimal.Zero
	}

	return deliveryCost.Div(decimal.NewFromInt(int64(totalQuantity))).Round(2)
}

// LoadedUnitCost is the fully loaded cost of one unit on a PO line: the
// supplier item cost plus the allocated per-unit delivery share.
func LoadedUnitCost(itemCost, deliveryShare decimal.Decimal) decimal.Decimal {
	return itemCost.Add(deliveryShare)
}
