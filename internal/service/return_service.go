package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

// ReturnService manages customer returns. Accepting a return releases the
// returned quantity back into the ledger as new layers priced at the
// latest known unit cost for the SKU; reverting an acceptance removes
// those layers again.
type ReturnService struct {
	repo   repository.ReturnRepository
	engine *costing.Engine
	cache  cache.ReportCache
}

func NewReturnService(repo repository.ReturnRepository, engine *costing.Engine, reportCache cache.ReportCache) *ReturnService {
	return &ReturnService{repo: repo, engine: engine, cache: reportCache}
}

func (s *ReturnService) Create(ctx context.Context, req *domain.CreateReturnRequest) (*domain.Return, error) {
	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	ret := &domain.Return{
		Reference:  req.Reference,
		OrderID:    req.OrderID,
		Status:     domain.ReturnStatusPending,
		ReceivedAt: receivedAt,
	}
	for _, line := range req.Lines {
		ret.Lines = append(ret.Lines, domain.ReturnLine{
			SKU:      line.SKU,
			Quantity: line.Quantity,
		})
	}

	if err := s.repo.CreateReturn(ctx, ret); err != nil {
		return nil, fmt.Errorf("failed to create return: %w", err)
	}

	log.Info().
		Int64("return_id", ret.ID).
		Str("reference", ret.Reference).
		Int("lines", len(ret.Lines)).
		Msg("return created")

	return ret, nil
}

func (s *ReturnService) Get(ctx context.Context, id int64) (*domain.Return, error) {
	return s.repo.GetReturnByID(ctx, id)
}

func (s *ReturnService) List(ctx context.Context) ([]*domain.Return, error) {
	return s.repo.ListReturns(ctx)
}

// UpdateStatus moves a return to the named status and applies the ledger
// side effects of crossing the Accepted boundary in either direction.
func (s *ReturnService) UpdateStatus(ctx context.Context, id int64, statusLabel string) (*domain.Return, error) {
	status, ok := domain.ParseReturnStatus(statusLabel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, statusLabel)
	}

	ret, err := s.repo.GetReturnByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ret.Status == status {
		return ret, nil
	}

	wasAccepted := ret.Status == domain.ReturnStatusAccepted
	nowAccepted := status == domain.ReturnStatusAccepted

	if nowAccepted && !wasAccepted {
		if err := s.releaseStock(ctx, ret); err != nil {
			return nil, err
		}
	}
	if wasAccepted && !nowAccepted {
		if err := s.removeStock(ctx, ret); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateReturnStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ret.Status = status

	if wasAccepted || nowAccepted {
		s.invalidateReports(ctx)
	}

	log.Info().
		Int64("return_id", ret.ID).
		Str("status", domain.ReturnStatusLabel(status)).
		Msg("return status updated")

	return ret, nil
}

// releaseStock books one layer per returned line. When a SKU has no cost
// history the fallback unit cost prices the layer, mirroring shortfall
// costing on the way out.
func (s *ReturnService) releaseStock(ctx context.Context, ret *domain.Return) error {
	for _, line := range ret.Lines {
		unitCost, ok, err := s.engine.LatestUnitCost(ctx, line.SKU)
		if err != nil {
			return fmt.Errorf("failed to look up cost for %s: %w", line.SKU, err)
		}
		if !ok {
			unitCost = s.engine.Policy().FallbackUnitCost
			log.Warn().
				Str("sku", line.SKU).
				Str("unit_cost", unitCost.String()).
				Msg("no cost history for returned SKU, pricing at fallback cost")
		}

		if err := s.engine.Release(ctx, line.SKU, ret.Reference, line.Quantity, unitCost, ret.ReceivedAt); err != nil {
			return fmt.Errorf("failed to release stock for %s: %w", line.SKU, err)
		}
	}

	return nil
}

func (s *ReturnService) removeStock(ctx context.Context, ret *domain.Return) error {
	for _, line := range ret.Lines {
		if _, err := s.engine.RemoveLayersByOrigin(ctx, line.SKU, ret.Reference); err != nil {
			return fmt.Errorf("failed to remove released stock for %s: %w", line.SKU, err)
		}
	}
	return nil
}

func (s *ReturnService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}
