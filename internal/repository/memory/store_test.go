package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

func insertLayer(t *testing.T, store *Store, sku, origin string, qty int, cost int64, at time.Time) *domain.CostLayer {
	t.Helper()
	layer := &domain.CostLayer{
		SKU:        sku,
		OriginID:   origin,
		Quantity:   qty,
		UnitCost:   decimal.NewFromInt(cost),
		AcquiredAt: at,
	}
	require.NoError(t, store.InsertLayer(context.Background(), layer))
	return layer
}

func TestLayersBySKUOrdering(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	insertLayer(t, store, "WIDGET-A", "PO-2", 5, 20, base.Add(time.Hour))
	insertLayer(t, store, "WIDGET-A", "PO-1", 5, 10, base)
	// Same acquisition instant as PO-2: insertion order breaks the tie.
	insertLayer(t, store, "WIDGET-A", "PO-3", 5, 30, base.Add(time.Hour))

	layers, err := store.LayersBySKU(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Len(t, layers, 3)
	require.Equal(t, "PO-1", layers[0].OriginID)
	require.Equal(t, "PO-2", layers[1].OriginID)
	require.Equal(t, "PO-3", layers[2].OriginID)
}

func TestApplyTakesAllOrNothing(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	a := insertLayer(t, store, "WIDGET-A", "PO-1", 5, 10, now)
	b := insertLayer(t, store, "WIDGET-A", "PO-2", 5, 20, now.Add(time.Hour))

	// Second take exceeds the layer: nothing may change.
	err := store.ApplyTakes(ctx, "WIDGET-A", []costing.LayerTake{
		{LayerID: a.ID, Quantity: 3},
		{LayerID: b.ID, Quantity: 6},
	})
	require.Error(t, err)

	layers, err := store.LayersBySKU(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 5, layers[0].Quantity)
	require.Equal(t, 5, layers[1].Quantity)

	require.NoError(t, store.ApplyTakes(ctx, "WIDGET-A", []costing.LayerTake{
		{LayerID: a.ID, Quantity: 3},
		{LayerID: b.ID, Quantity: 5},
	}))

	layers, err = store.LayersBySKU(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 2, layers[0].Quantity)
	require.Equal(t, 0, layers[1].Quantity)
}

func TestDeleteByOriginDropsEmptySKU(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	insertLayer(t, store, "WIDGET-A", "PO-1", 5, 10, now)

	removed, err := store.DeleteByOrigin(ctx, "WIDGET-A", "PO-1")
	require.NoError(t, err)
	require.Equal(t, 5, removed)

	skus, err := store.SKUs(ctx)
	require.NoError(t, err)
	require.Empty(t, skus)
}

func TestPurchaseOrderRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	po := &domain.PurchaseOrder{
		Reference: "PO-100",
		Supplier:  "Acme",
		Status:    domain.POStatusDraft,
		OrderedAt: time.Now().UTC(),
		Lines: []domain.PurchaseOrderLine{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(9)},
		},
	}
	require.NoError(t, store.CreatePurchaseOrder(ctx, po))
	require.NotZero(t, po.ID)

	got, err := store.GetPurchaseOrderByID(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, "PO-100", got.Reference)
	require.Len(t, got.Lines, 1)

	// Mutating the returned copy must not leak into the store.
	got.Lines[0].Quantity = 999
	again, err := store.GetPurchaseOrderByID(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, 10, again.Lines[0].Quantity)

	_, err = store.GetPurchaseOrderByID(ctx, 9999)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIncomingQuantitiesCountsPendingAndInTransit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, tc := range []struct {
		reference string
		status    int
		qty       int
	}{
		{"PO-1", domain.POStatusDraft, 5},
		{"PO-2", domain.POStatusPending, 10},
		{"PO-3", domain.POStatusInTransit, 20},
		{"PO-4", domain.POStatusDelivered, 40},
	} {
		po := &domain.PurchaseOrder{
			Reference: tc.reference,
			Status:    tc.status,
			OrderedAt: now,
			Lines:     []domain.PurchaseOrderLine{{SKU: "WIDGET-A", Quantity: tc.qty}},
		}
		require.NoError(t, store.CreatePurchaseOrder(ctx, po))
		require.NoError(t, store.UpdatePurchaseOrderStatus(ctx, po.ID, tc.status))
	}

	incoming, err := store.IncomingQuantities(ctx)
	require.NoError(t, err)
	require.Equal(t, 30, incoming["WIDGET-A"])
}

func TestOrderMarkFulfilled(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	order := &domain.Order{
		Reference: "ORD-1",
		PlacedAt:  time.Now().UTC(),
		Lines:     []domain.OrderLine{{SKU: "WIDGET-A", Quantity: 2}},
	}
	require.NoError(t, store.CreateOrder(ctx, order))

	require.NoError(t, store.MarkFulfilled(ctx, order.ID))

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, got.Fulfilled)

	require.ErrorIs(t, store.MarkFulfilled(ctx, 9999), repository.ErrNotFound)
}

func TestReturnStatusUpdate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ret := &domain.Return{
		Reference:  "RET-1",
		Status:     domain.ReturnStatusPending,
		ReceivedAt: time.Now().UTC(),
		Lines:      []domain.ReturnLine{{SKU: "WIDGET-A", Quantity: 1}},
	}
	require.NoError(t, store.CreateReturn(ctx, ret))

	require.NoError(t, store.UpdateReturnStatus(ctx, ret.ID, domain.ReturnStatusAccepted))

	got, err := store.GetReturnByID(ctx, ret.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReturnStatusAccepted, got.Status)
}
