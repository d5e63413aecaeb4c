package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
)

func TestSKUValuationLatestVsFIFO(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 5, 20, base.Add(time.Hour))

	item, err := reporter.SKUValuation(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 10, item.Quantity)
	require.Equal(t, "20", item.LatestUnitCost.String())
	require.Equal(t, "200", item.Value.String())
	require.Equal(t, "150", item.FIFOValue.String())
}

func TestValuationSumsLatestCostValues(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()
	now := time.Now().UTC()

	addLayer(t, engine, "WIDGET-B", "PO-1", 4, 25, now)
	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 10, now)

	report, err := reporter.Valuation(ctx)
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	// Sorted by SKU.
	require.Equal(t, "WIDGET-A", report.Items[0].SKU)
	require.Equal(t, "WIDGET-B", report.Items[1].SKU)
	require.Equal(t, "200", report.TotalValue.String())
}

func TestOrderProfit(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 15, time.Now().UTC())

	revenue := decimal.RequireFromString("299.99")
	tax := decimal.NewFromInt(24)
	shipping := decimal.RequireFromString("9.99")
	order := &domain.Order{
		ID:           1,
		Reference:    "ORD-1",
		TotalAmount:  &revenue,
		TaxAmount:    &tax,
		ShippingCost: &shipping,
		Lines: []domain.OrderLine{
			{SKU: "WIDGET-A", Quantity: 10, UnitPrice: decimal.RequireFromString("29.99")},
		},
	}

	profit, err := reporter.OrderProfit(ctx, order)
	require.NoError(t, err)
	require.Equal(t, "150", profit.TotalCost.String())
	// 299.99 - 24 - 9.99 - 150
	require.Equal(t, "116", profit.Profit.String())
	require.Len(t, profit.Lines, 1)
	require.Equal(t, 0, profit.Lines[0].Shortfall)
}

func TestOrderProfitMissingHeaderAmounts(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 15, time.Now().UTC())

	order := &domain.Order{
		ID:        2,
		Reference: "ORD-2",
		Lines: []domain.OrderLine{
			{SKU: "WIDGET-A", Quantity: 4, UnitPrice: decimal.NewFromInt(30)},
		},
	}

	profit, err := reporter.OrderProfit(ctx, order)
	require.NoError(t, err)
	require.True(t, profit.Revenue.IsZero())
	require.Equal(t, "-60", profit.Profit.String())
}

func TestOrderProfitUnknownSKUFallsBack(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()

	order := &domain.Order{
		ID:        3,
		Reference: "ORD-3",
		Lines: []domain.OrderLine{
			{SKU: "GHOST", Quantity: 2, UnitPrice: decimal.NewFromInt(80)},
		},
	}

	profit, err := reporter.OrderProfit(ctx, order)
	require.NoError(t, err)
	require.Equal(t, "100", profit.TotalCost.String())
	require.Equal(t, 2, profit.Lines[0].Shortfall)
}

func TestOrderProfitIsStableAcrossReads(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 15, time.Now().UTC())

	order := &domain.Order{
		ID:        4,
		Reference: "ORD-4",
		Lines: []domain.OrderLine{
			{SKU: "WIDGET-A", Quantity: 5, UnitPrice: decimal.NewFromInt(30)},
		},
	}

	first, err := reporter.OrderProfit(ctx, order)
	require.NoError(t, err)
	second, err := reporter.OrderProfit(ctx, order)
	require.NoError(t, err)
	require.True(t, first.TotalCost.Equal(second.TotalCost))

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 10, remaining)
}

func TestTopProductsByRevenue(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	reporter := costing.NewReporter(engine)

	orders := []*domain.Order{
		{Lines: []domain.OrderLine{
			{SKU: "WIDGET-A", Quantity: 3, TotalPrice: decimal.NewFromInt(90)},
			{SKU: "WIDGET-B", Quantity: 1, TotalPrice: decimal.NewFromInt(50)},
		}},
		{Lines: []domain.OrderLine{
			{SKU: "WIDGET-B", Quantity: 2, TotalPrice: decimal.NewFromInt(100)},
		}},
	}

	ranked := reporter.TopProductsByRevenue(orders, 10)
	require.Len(t, ranked, 2)
	require.Equal(t, "WIDGET-B", ranked[0].SKU)
	require.Equal(t, "150", ranked[0].Revenue.String())
	require.Equal(t, 3, ranked[0].Quantity)

	top1 := reporter.TopProductsByRevenue(orders, 1)
	require.Len(t, top1, 1)
}
