package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

// ErrInvalidStatus is returned when a status label cannot be parsed.
var ErrInvalidStatus = errors.New("invalid status")

// PurchaseOrderService manages purchase orders and drives the cost ledger
// on the Delivered boundary: moving a PO into Delivered books one cost
// layer per line (item cost plus allocated delivery share), moving it back
// out removes those layers again.
type PurchaseOrderService struct {
	repo   repository.PurchaseOrderRepository
	engine *costing.Engine
	cache  cache.ReportCache
}

func NewPurchaseOrderService(repo repository.PurchaseOrderRepository, engine *costing.Engine, reportCache cache.ReportCache) *PurchaseOrderService {
	return &PurchaseOrderService{repo: repo, engine: engine, cache: reportCache}
}

func (s *PurchaseOrderService) Create(ctx context.Context, req *domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	orderedAt := req.OrderedAt
	if orderedAt.IsZero() {
		orderedAt = time.Now().UTC()
	}

	po := &domain.PurchaseOrder{
		Reference:    req.Reference,
		Supplier:     req.Supplier,
		Status:       domain.POStatusDraft,
		DeliveryCost: req.DeliveryCost,
		OrderedAt:    orderedAt,
	}
	for _, line := range req.Lines {
		po.Lines = append(po.Lines, domain.PurchaseOrderLine{
			SKU:         line.SKU,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}

	if err := s.repo.CreatePurchaseOrder(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	log.Info().
		Int64("po_id", po.ID).
		Str("reference", po.Reference).
		Int("lines", len(po.Lines)).
		Msg("purchase order created")

	return po, nil
}

func (s *PurchaseOrderService) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return s.repo.GetPurchaseOrderByID(ctx, id)
}

func (s *PurchaseOrderService) List(ctx context.Context) ([]*domain.PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx)
}

// UpdateStatus moves a purchase order to the named status and applies the
// ledger side effects of crossing the Delivered boundary in either
// direction. Redoing the current status is a no-op.
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, id int64, statusLabel string) (*domain.PurchaseOrder, error) {
	status, ok := domain.ParsePOStatus(statusLabel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, statusLabel)
	}

	po, err := s.repo.GetPurchaseOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if po.Status == status {
		return po, nil
	}

	wasDelivered := po.Status == domain.POStatusDelivered
	nowDelivered := status == domain.POStatusDelivered

	if nowDelivered && !wasDelivered {
		if err := s.bookLayers(ctx, po); err != nil {
			return nil, err
		}
	}
	if wasDelivered && !nowDelivered {
		if err := s.removeLayers(ctx, po); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdatePurchaseOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	po.Status = status

	if wasDelivered || nowDelivered {
		s.invalidateReports(ctx)
	}

	log.Info().
		Int64("po_id", po.ID).
		Str("status", domain.POStatusLabel(status)).
		Msg("purchase order status updated")

	return po, nil
}

// bookLayers inserts one cost layer per PO line. The delivery cost share
// is rounded per unit before it is applied, so the booked total can differ
// from the invoiced delivery cost by a few cents.
func (s *PurchaseOrderService) bookLayers(ctx context.Context, po *domain.PurchaseOrder) error {
	perUnit := costing.DeliveryCostPerUnit(po.DeliveryCost, po.TotalQuantity())

	for _, line := range po.Lines {
		unitCost := costing.LoadedUnitCost(line.UnitCost, perUnit)
		if err := s.engine.AddLayer(ctx, line.SKU, po.Reference, line.Quantity, unitCost, po.OrderedAt); err != nil {
			return fmt.Errorf("failed to book layer for %s: %w", line.SKU, err)
		}
	}

	return nil
}

func (s *PurchaseOrderService) removeLayers(ctx context.Context, po *domain.PurchaseOrder) error {
	for _, line := range po.Lines {
		removed, err := s.engine.RemoveLayersByOrigin(ctx, line.SKU, po.Reference)
		if err != nil {
			return fmt.Errorf("failed to remove layers for %s: %w", line.SKU, err)
		}
		if removed < line.Quantity {
			log.Warn().
				Str("sku", line.SKU).
				Str("origin", po.Reference).
				Int("ordered", line.Quantity).
				Int("removed", removed).
				Msg("delivery revert removed less than the delivered quantity")
		}
	}

	return nil
}

// IncomingQuantities reports ordered-but-not-delivered quantity per SKU.
func (s *PurchaseOrderService) IncomingQuantities(ctx context.Context) (map[string]int, error) {
	return s.repo.IncomingQuantities(ctx)
}

func (s *PurchaseOrderService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}
