package costing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stocklens/backend/internal/domain"
)

// Reporter is the read side of the costing engine: valuation and profit
// figures computed from current ledger state. It never mutates layers.
type Reporter struct {
	engine *Engine
}

// NewReporter builds a reporter over an engine.
func NewReporter(engine *Engine) *Reporter {
	return &Reporter{engine: engine}
}

// SKUValuation reports the current stock position for one SKU. Value uses
// the latest unit cost; FIFOValue sums remaining layer quantities at their
// own costs. Both are computed so the difference between the display figure
// and the true FIFO valuation stays visible.
func (r *Reporter) SKUValuation(ctx context.Context, sku string) (domain.SKUValuation, error) {
	layers, err := r.engine.LayersFor(ctx, sku)
	if err != nil {
		return domain.SKUValuation{}, err
	}

	quantity := 0
	fifoValue := decimal.Zero
	latest := decimal.Zero
	for _, layer := range layers {
		quantity += layer.Quantity
		fifoValue = fifoValue.Add(layer.UnitCost.Mul(decimal.NewFromInt(int64(layer.Quantity))))
		latest = layer.UnitCost
	}

	return domain.SKUValuation{
		SKU:            sku,
		Quantity:       quantity,
		LatestUnitCost: latest,
		Value:          latest.Mul(decimal.NewFromInt(int64(quantity))),
		FIFOValue:      fifoValue,
	}, nil
}

// Valuation reports every known SKU plus the summed total value.
func (r *Reporter) Valuation(ctx context.Context) (*domain.ValuationReport, error) {
	skus, err := r.engine.SKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	sort.Strings(skus)

	report := &domain.ValuationReport{
		Items:      make([]domain.SKUValuation, 0, len(skus)),
		TotalValue: decimal.Zero,
	}
	for _, sku := range skus {
		item, err := r.SKUValuation(ctx, sku)
		if err != nil {
			return nil, err
		}
		report.Items = append(report.Items, item)
		report.TotalValue = report.TotalValue.Add(item.Value)
	}

	return report, nil
}

// TotalValuation sums the latest-cost valuation across all known SKUs.
func (r *Reporter) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	report, err := r.Valuation(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return report.TotalValue, nil
}

// OrderProfit computes revenue minus tax, shipping, and FIFO-attributed
// cost for an order. The cost attribution runs on the non-mutating lookup
// path, so querying profit never moves the ledger. Absent monetary header
// fields count as zero. A line whose SKU has no layers at all is costed
// entirely at the fallback unit cost and flagged, matching how consumption
// degrades.
func (r *Reporter) OrderProfit(ctx context.Context, order *domain.Order) (*domain.OrderProfit, error) {
	profit := &domain.OrderProfit{
		OrderID:      order.ID,
		Reference:    order.Reference,
		Revenue:      amountOrZero(order.TotalAmount),
		TaxAmount:    amountOrZero(order.TaxAmount),
		ShippingCost: amountOrZero(order.ShippingCost),
		TotalCost:    decimal.Zero,
		Lines:        make([]domain.OrderLineProfit, 0, len(order.Lines)),
	}

	for _, line := range order.Lines {
		result, err := r.engine.CostLookup(ctx, line.SKU, line.Quantity)
		if errors.Is(err, ErrUnknownSKU) {
			result = ConsumptionResult{
				Cost:      r.engine.policy.CostFor(line.Quantity),
				Shortfall: line.Quantity,
			}
			log.Warn().
				Str("sku", line.SKU).
				Int64("order_id", order.ID).
				Msg("profit lookup for sku without layers; costed at fallback")
		} else if err != nil {
			return nil, fmt.Errorf("cost lookup for %s: %w", line.SKU, err)
		}

		profit.TotalCost = profit.TotalCost.Add(result.Cost)
		profit.Lines = append(profit.Lines, domain.OrderLineProfit{
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			Cost:      result.Cost,
			Shortfall: result.Shortfall,
		})
	}

	profit.Profit = profit.Revenue.
		Sub(profit.TaxAmount).
		Sub(profit.ShippingCost).
		Sub(profit.TotalCost)

	return profit, nil
}

// TopProductsByRevenue aggregates line revenue and quantity per SKU across
// the given orders and returns the top limit SKUs by revenue, descending.
func (r *Reporter) TopProductsByRevenue(orders []*domain.Order, limit int) []domain.ProductRevenue {
	bySKU := make(map[string]*domain.ProductRevenue)
	for _, order := range orders {
		for _, line := range order.Lines {
			entry, ok := bySKU[line.SKU]
			if !ok {
				entry = &domain.ProductRevenue{SKU: line.SKU, Revenue: decimal.Zero}
				bySKU[line.SKU] = entry
			}
			entry.Revenue = entry.Revenue.Add(line.TotalPrice)
			entry.Quantity += line.Quantity
		}
	}

	ranked := make([]domain.ProductRevenue, 0, len(bySKU))
	for _, entry := range bySKU {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].SKU < ranked[j].SKU
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
