package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/importer"
	"github.com/stocklens/backend/internal/repository/memory"
	"github.com/stocklens/backend/internal/service"
)

func newImportService(t *testing.T) (*importer.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	engine := costing.NewEngine(store, costing.ShortfallPolicy{
		Mode:             costing.ShortfallDegrade,
		FallbackUnitCost: decimal.NewFromInt(50),
	})
	poService := service.NewPurchaseOrderService(store, engine, cache.NewNoopReportCache())
	return importer.NewService(poService), store
}

func TestImportCreatesDraftPurchaseOrders(t *testing.T) {
	svc, store := newImportService(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"reference,supplier,sku,quantity,unit_cost",
		"PO-1,Acme,WIDGET-A,100,10",
		"PO-1,Acme,WIDGET-B,75,24",
		"PO-2,Acme,WIDGET-A,50,12",
	}, "\n")

	result, err := svc.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Equal(t, []string{"PO-1", "PO-2"}, result.References)

	pos, err := store.ListPurchaseOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	require.Len(t, pos[0].Lines, 2)

	// Imported orders start in Draft: nothing lands on the ledger and
	// nothing counts as incoming yet.
	skus, err := store.SKUs(ctx)
	require.NoError(t, err)
	require.Empty(t, skus)

	incoming, err := store.IncomingQuantities(ctx)
	require.NoError(t, err)
	require.Empty(t, incoming)
}

func TestImportFailsOnBadFile(t *testing.T) {
	svc, _ := newImportService(t)

	_, err := svc.Import(context.Background(), strings.NewReader("reference,sku\nPO-1,WIDGET-A\n"))
	require.Error(t, err)
}

func TestImportAllMergesResults(t *testing.T) {
	svc, store := newImportService(t)
	ctx := context.Background()

	files := []importer.NamedReader{
		{Name: "a.csv", Reader: strings.NewReader("reference,sku,quantity,unit_cost\nPO-1,WIDGET-A,10,10\n")},
		{Name: "b.csv", Reader: strings.NewReader("reference,sku,quantity,unit_cost\nPO-2,WIDGET-B,5,20\n")},
	}

	result, err := svc.ImportAll(ctx, files)
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)

	pos, err := store.ListPurchaseOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pos, 2)
}
