package costing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/repository/memory"
)

func newTestEngine(t *testing.T, mode costing.ShortfallMode) (*costing.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine := costing.NewEngine(store, costing.ShortfallPolicy{
		Mode:             mode,
		FallbackUnitCost: decimal.NewFromInt(50),
	})
	return engine, store
}

func addLayer(t *testing.T, engine *costing.Engine, sku, origin string, qty int, cost int64, at time.Time) {
	t.Helper()
	require.NoError(t, engine.AddLayer(context.Background(), sku, origin, qty, decimal.NewFromInt(cost), at))
}

func TestConsumeAttributesOldestLayersFirst(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 5, 20, base.Add(24*time.Hour))

	result, err := engine.Consume(ctx, "WIDGET-A", 7)
	require.NoError(t, err)
	require.Equal(t, 0, result.Shortfall)
	require.Equal(t, "90", result.Cost.String())

	layers, err := engine.LayersFor(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Len(t, layers, 2)
	require.Equal(t, 0, layers[0].Quantity)
	require.Equal(t, 3, layers[1].Quantity)
}

func TestConsumeOrdersByAcquisitionNotInsertion(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	// Inserted newest-first; acquisition date must still win.
	addLayer(t, engine, "WIDGET-A", "PO-2", 5, 20, base.Add(24*time.Hour))
	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)

	result, err := engine.Consume(ctx, "WIDGET-A", 5)
	require.NoError(t, err)
	require.Equal(t, "50", result.Cost.String())
}

func TestConsumeConservesQuantity(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 10, 12, base.Add(time.Hour))
	addLayer(t, engine, "WIDGET-A", "PO-3", 10, 14, base.Add(2*time.Hour))

	totalCost := decimal.Zero
	for _, demand := range []int{6, 6, 6, 12} {
		result, err := engine.Consume(ctx, "WIDGET-A", demand)
		require.NoError(t, err)
		require.Equal(t, 0, result.Shortfall)
		totalCost = totalCost.Add(result.Cost)
	}

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 0, remaining)

	// 10*10 + 10*12 + 10*14
	require.Equal(t, "360", totalCost.String())
}

func TestConsumeShortfallDegrade(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 30, 20, time.Now().UTC())

	result, err := engine.Consume(ctx, "WIDGET-A", 100)
	require.NoError(t, err)
	require.Equal(t, 70, result.Shortfall)
	// 30*20 backed plus 70*50 fallback.
	require.Equal(t, "4100", result.Cost.String())

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}

func TestConsumeShortfallReject(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallReject)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 30, 20, time.Now().UTC())

	_, err := engine.Consume(ctx, "WIDGET-A", 100)
	require.ErrorIs(t, err, costing.ErrInsufficientStock)

	// Ledger untouched.
	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 30, remaining)
}

func TestConsumeUnknownSKU(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)

	_, err := engine.Consume(context.Background(), "NOPE", 1)
	require.ErrorIs(t, err, costing.ErrUnknownSKU)
}

func TestConsumeValidatesDemand(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()

	_, err := engine.Consume(ctx, "WIDGET-A", 0)
	require.ErrorIs(t, err, costing.ErrInvalidQuantity)

	_, err = engine.Consume(ctx, "", 1)
	require.ErrorIs(t, err, costing.ErrInvalidSKU)
}

func TestCostLookupLeavesLedgerUntouched(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 5, 20, base.Add(time.Hour))

	first, err := engine.CostLookup(ctx, "WIDGET-A", 7)
	require.NoError(t, err)
	second, err := engine.CostLookup(ctx, "WIDGET-A", 7)
	require.NoError(t, err)
	require.True(t, first.Cost.Equal(second.Cost), "repeated lookup changed cost")

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 10, remaining)
}

func TestAddLayerValidation(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	now := time.Now().UTC()

	// Zero cost is a valid layer.
	require.NoError(t, engine.AddLayer(ctx, "WIDGET-A", "ADJ-1", 5, decimal.Zero, now))

	err := engine.AddLayer(ctx, "WIDGET-A", "ADJ-2", 0, decimal.NewFromInt(10), now)
	require.ErrorIs(t, err, costing.ErrInvalidQuantity)

	err = engine.AddLayer(ctx, "", "ADJ-3", 5, decimal.NewFromInt(10), now)
	require.ErrorIs(t, err, costing.ErrInvalidSKU)
}

func TestRemoveLayersByOriginAfterPartialConsumption(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 10, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 10, 20, base.Add(time.Hour))

	_, err := engine.Consume(ctx, "WIDGET-A", 4)
	require.NoError(t, err)

	// Only the unconsumed remainder of PO-1 disappears.
	removed, err := engine.RemoveLayersByOrigin(ctx, "WIDGET-A", "PO-1")
	require.NoError(t, err)
	require.Equal(t, 6, removed)

	result, err := engine.Consume(ctx, "WIDGET-A", 5)
	require.NoError(t, err)
	require.Equal(t, "100", result.Cost.String())
}

func TestReleasePutsStockBack(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)

	_, err := engine.Consume(ctx, "WIDGET-A", 5)
	require.NoError(t, err)

	require.NoError(t, engine.Release(ctx, "WIDGET-A", "RET-1", 2, decimal.NewFromInt(10), base.Add(time.Hour)))

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 2, remaining)
}

func TestLatestUnitCost(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	_, ok, err := engine.LatestUnitCost(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.False(t, ok)

	addLayer(t, engine, "WIDGET-A", "PO-1", 5, 10, base)
	addLayer(t, engine, "WIDGET-A", "PO-2", 5, 20, base.Add(time.Hour))

	cost, ok, err := engine.LatestUnitCost(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "20", cost.String())
}

func TestConcurrentConsumeNeverOverdraws(t *testing.T) {
	engine, _ := newTestEngine(t, costing.ShortfallDegrade)
	ctx := context.Background()

	addLayer(t, engine, "WIDGET-A", "PO-1", 100, 10, time.Now().UTC())

	var wg sync.WaitGroup
	results := make([]costing.ConsumptionResult, 20)
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Consume(ctx, "WIDGET-A", 5)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	totalShortfall := 0
	totalCost := decimal.Zero
	for _, result := range results {
		totalShortfall += result.Shortfall
		totalCost = totalCost.Add(result.Cost)
	}
	require.Equal(t, 0, totalShortfall)
	require.Equal(t, "1000", totalCost.String())

	remaining, err := engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}
