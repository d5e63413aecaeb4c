package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository/memory"
	"github.com/stocklens/backend/internal/service"
)

type fixture struct {
	store   *memory.Store
	engine  *costing.Engine
	pos     *service.PurchaseOrderService
	orders  *service.OrderService
	returns *service.ReturnService
	reports *service.ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	engine := costing.NewEngine(store, costing.ShortfallPolicy{
		Mode:             costing.ShortfallDegrade,
		FallbackUnitCost: decimal.NewFromInt(50),
	})
	noop := cache.NewNoopReportCache()
	reporter := costing.NewReporter(engine)

	return &fixture{
		store:   store,
		engine:  engine,
		pos:     service.NewPurchaseOrderService(store, engine, noop),
		orders:  service.NewOrderService(store, engine, noop),
		returns: service.NewReturnService(store, engine, noop),
		reports: service.NewReportService(reporter, store, store, noop, t.TempDir()),
	}
}

func (f *fixture) deliverPO(t *testing.T, req *domain.CreatePurchaseOrderRequest) *domain.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	po, err := f.pos.Create(ctx, req)
	require.NoError(t, err)
	po, err = f.pos.UpdateStatus(ctx, po.ID, "delivered")
	require.NoError(t, err)
	return po
}

func TestDeliveryBooksLayersWithAllocatedDeliveryCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference:    "PO-1",
		DeliveryCost: decimal.NewFromInt(250),
		OrderedAt:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 100, UnitCost: decimal.NewFromInt(10)},
			{SKU: "WIDGET-B", Quantity: 75, UnitCost: decimal.NewFromInt(24)},
		},
	})

	// 250 / 175 units = 1.43 per unit after rounding.
	layersA, err := f.engine.LayersFor(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Len(t, layersA, 1)
	require.Equal(t, 100, layersA[0].Quantity)
	require.Equal(t, "11.43", layersA[0].UnitCost.String())
	require.Equal(t, "PO-1", layersA[0].OriginID)

	layersB, err := f.engine.LayersFor(ctx, "WIDGET-B")
	require.NoError(t, err)
	require.Equal(t, "25.43", layersB[0].UnitCost.String())
}

func TestDeliveryRevertRemovesLayers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po := f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 50, UnitCost: decimal.NewFromInt(10)},
		},
	})

	qty, err := f.engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 50, qty)

	_, err = f.pos.UpdateStatus(ctx, po.ID, "in_transit")
	require.NoError(t, err)

	qty, err = f.engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 0, qty)

	// Back in transit, the stock counts as incoming again.
	incoming, err := f.pos.IncomingQuantities(ctx)
	require.NoError(t, err)
	require.Equal(t, 50, incoming["WIDGET-A"])
}

func TestUpdateStatusRejectsUnknownLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po, err := f.pos.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 1, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	_, err = f.pos.UpdateStatus(ctx, po.ID, "teleported")
	require.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestUpdateStatusIsIdempotentOnSameStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po := f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(10)},
		},
	})

	// Delivering again must not double the stock.
	_, err := f.pos.UpdateStatus(ctx, po.ID, "delivered")
	require.NoError(t, err)

	qty, err := f.engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 10, qty)
}

func TestFulfillConsumesAndReportsShortfall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 30, UnitCost: decimal.NewFromInt(20)},
		},
	})

	order, err := f.orders.Create(ctx, &domain.CreateOrderRequest{
		Reference: "ORD-1",
		Lines: []domain.CreateOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 100, UnitPrice: decimal.NewFromInt(60)},
		},
	})
	require.NoError(t, err)

	result, err := f.orders.Fulfill(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, result.HasShortfall())
	require.Equal(t, 70, result.Lines[0].Shortfall)
	// 30*20 backed plus 70*50 fallback.
	require.Equal(t, "4100", result.TotalCost.String())

	_, err = f.orders.Fulfill(ctx, order.ID)
	require.ErrorIs(t, err, service.ErrAlreadyFulfilled)
}

func TestReturnAcceptReleasesAtLatestCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		OrderedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(18)},
		},
	})

	ret, err := f.returns.Create(ctx, &domain.CreateReturnRequest{
		Reference: "RET-1",
		Lines: []domain.CreateReturnLineRequest{
			{SKU: "WIDGET-A", Quantity: 3},
		},
	})
	require.NoError(t, err)

	_, err = f.returns.UpdateStatus(ctx, ret.ID, "accepted")
	require.NoError(t, err)

	qty, err := f.engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 13, qty)

	layers, err := f.engine.LayersFor(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, "RET-1", layers[len(layers)-1].OriginID)
	require.Equal(t, "18", layers[len(layers)-1].UnitCost.String())

	// Reverting the acceptance takes the stock back out.
	_, err = f.returns.UpdateStatus(ctx, ret.ID, "processing")
	require.NoError(t, err)

	qty, err = f.engine.TotalQuantity(ctx, "WIDGET-A")
	require.NoError(t, err)
	require.Equal(t, 10, qty)
}

func TestReturnAcceptFallsBackWhenNoCostHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ret, err := f.returns.Create(ctx, &domain.CreateReturnRequest{
		Reference: "RET-1",
		Lines: []domain.CreateReturnLineRequest{
			{SKU: "GHOST", Quantity: 2},
		},
	})
	require.NoError(t, err)

	_, err = f.returns.UpdateStatus(ctx, ret.ID, "accepted")
	require.NoError(t, err)

	layers, err := f.engine.LayersFor(ctx, "GHOST")
	require.NoError(t, err)
	require.Len(t, layers, 1)
	require.Equal(t, "50", layers[0].UnitCost.String())
}

func TestValuationMergesIncomingQuantities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(10)},
		},
	})

	po, err := f.pos.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-2",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 25, UnitCost: decimal.NewFromInt(11)},
		},
	})
	require.NoError(t, err)
	_, err = f.pos.UpdateStatus(ctx, po.ID, "pending")
	require.NoError(t, err)

	report, err := f.reports.Valuation(ctx)
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	require.Equal(t, 10, report.Items[0].Quantity)
	require.Equal(t, 25, report.Items[0].IncomingQty)
	require.Equal(t, "100", report.TotalValue.String())
}

func TestOrderProfitThroughReportService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(15)},
		},
	})

	revenue := decimal.RequireFromString("299.99")
	tax := decimal.NewFromInt(24)
	shipping := decimal.RequireFromString("9.99")
	order, err := f.orders.Create(ctx, &domain.CreateOrderRequest{
		Reference:    "ORD-1",
		TotalAmount:  &revenue,
		TaxAmount:    &tax,
		ShippingCost: &shipping,
		Lines: []domain.CreateOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitPrice: decimal.RequireFromString("29.99")},
		},
	})
	require.NoError(t, err)

	profit, err := f.reports.OrderProfit(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "116", profit.Profit.String())
}

func TestExportValuationCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.deliverPO(t, &domain.CreatePurchaseOrderRequest{
		Reference: "PO-1",
		Lines: []domain.CreatePurchaseOrderLineRequest{
			{SKU: "WIDGET-A", Quantity: 10, UnitCost: decimal.NewFromInt(10)},
		},
	})

	path, err := f.reports.ExportValuationCSV(ctx)
	require.NoError(t, err)
	require.FileExists(t, path)
}
