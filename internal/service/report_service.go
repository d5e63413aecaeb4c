package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

// ReportService serves the read side: inventory valuation, per-order
// profit, and top-product rankings. Valuation and top-product figures go
// through the report cache; profit is always computed live against the
// current ledger.
type ReportService struct {
	reporter  *costing.Reporter
	poRepo    repository.PurchaseOrderRepository
	orderRepo repository.OrderRepository
	cache     cache.ReportCache
	exportDir string
}

func NewReportService(reporter *costing.Reporter, poRepo repository.PurchaseOrderRepository, orderRepo repository.OrderRepository, reportCache cache.ReportCache, exportDir string) *ReportService {
	return &ReportService{
		reporter:  reporter,
		poRepo:    poRepo,
		orderRepo: orderRepo,
		cache:     reportCache,
		exportDir: exportDir,
	}
}

// Valuation returns the stock valuation report with incoming (ordered but
// not yet delivered) quantities merged in per SKU.
func (s *ReportService) Valuation(ctx context.Context) (*domain.ValuationReport, error) {
	if report, hit, err := s.cache.GetValuation(ctx); err == nil && hit {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report cache read failed, computing valuation")
	}

	report, err := s.reporter.Valuation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute valuation: %w", err)
	}

	incoming, err := s.poRepo.IncomingQuantities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load incoming quantities: %w", err)
	}
	for i := range report.Items {
		report.Items[i].IncomingQty = incoming[report.Items[i].SKU]
	}

	if err := s.cache.SetValuation(ctx, report); err != nil {
		log.Warn().Err(err).Msg("failed to cache valuation report")
	}

	return report, nil
}

// SKUValuation returns the valuation of a single SKU, bypassing the cache.
func (s *ReportService) SKUValuation(ctx context.Context, sku string) (domain.SKUValuation, error) {
	item, err := s.reporter.SKUValuation(ctx, sku)
	if err != nil {
		return domain.SKUValuation{}, err
	}

	incoming, err := s.poRepo.IncomingQuantities(ctx)
	if err != nil {
		return domain.SKUValuation{}, fmt.Errorf("failed to load incoming quantities: %w", err)
	}
	item.IncomingQty = incoming[sku]

	return item, nil
}

// OrderProfit recomputes profit for one order against the current ledger.
func (s *ReportService) OrderProfit(ctx context.Context, orderID int64) (*domain.OrderProfit, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.reporter.OrderProfit(ctx, order)
}

// TopProducts ranks SKUs by revenue across all recorded orders.
func (s *ReportService) TopProducts(ctx context.Context, limit int) ([]domain.ProductRevenue, error) {
	if limit <= 0 {
		limit = 10
	}

	if items, hit, err := s.cache.GetTopProducts(ctx, limit); err == nil && hit {
		return items, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report cache read failed, computing top products")
	}

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	items := s.reporter.TopProductsByRevenue(orders, limit)

	if err := s.cache.SetTopProducts(ctx, limit, items); err != nil {
		log.Warn().Err(err).Msg("failed to cache top products")
	}

	return items, nil
}

// ExportValuationCSV writes the current valuation report to a timestamped
// CSV file under the export directory and returns its path.
func (s *ReportService) ExportValuationCSV(ctx context.Context) (string, error) {
	report, err := s.Valuation(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.exportDir, fmt.Sprintf("valuation_%s.csv", time.Now().UTC().Format("20060102_150405")))
	if err := s.writeValuationCSV(path, report); err != nil {
		return "", fmt.Errorf("failed to export valuation: %w", err)
	}

	log.Info().Str("path", path).Int("skus", len(report.Items)).Msg("valuation exported")
	return path, nil
}

func (s *ReportService) writeValuationCSV(path string, report *domain.ValuationReport) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"SKU", "Quantity", "Incoming", "Latest Unit Cost", "Value", "FIFO Value"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, item := range report.Items {
		record := []string{
			item.SKU,
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%d", item.IncomingQty),
			item.LatestUnitCost.StringFixed(2),
			item.Value.StringFixed(2),
			item.FIFOValue.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	total := []string{"TOTAL", "", "", "", report.TotalValue.StringFixed(2), ""}
	return writer.Write(total)
}
