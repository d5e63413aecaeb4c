package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stocklens/backend/internal/cache"
	"github.com/stocklens/backend/internal/costing"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/repository"
)

// ErrAlreadyFulfilled is returned when fulfillment is requested twice for
// the same order.
var ErrAlreadyFulfilled = errors.New("order already fulfilled")

// OrderService records sales orders and fulfills them against the cost
// ledger. Fulfillment is the only operation that consumes layers.
type OrderService struct {
	repo   repository.OrderRepository
	engine *costing.Engine
	cache  cache.ReportCache
}

func NewOrderService(repo repository.OrderRepository, engine *costing.Engine, reportCache cache.ReportCache) *OrderService {
	return &OrderService{repo: repo, engine: engine, cache: reportCache}
}

func (s *OrderService) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Order, error) {
	placedAt := req.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	order := &domain.Order{
		Reference:    req.Reference,
		Customer:     req.Customer,
		TotalAmount:  req.TotalAmount,
		TaxAmount:    req.TaxAmount,
		ShippingCost: req.ShippingCost,
		PlacedAt:     placedAt,
	}
	for _, line := range req.Lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			SKU:        line.SKU,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().
		Int64("order_id", order.ID).
		Str("reference", order.Reference).
		Int("lines", len(order.Lines)).
		Msg("order created")

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

// Fulfill consumes inventory for every order line, oldest layers first,
// and reports the cost attributed at this moment. Under the reject policy
// any line short on stock fails the whole fulfillment with the ledger
// untouched for that line; lines already consumed are not rolled back, so
// reject-mode callers should treat the error as requiring review.
func (s *OrderService) Fulfill(ctx context.Context, id int64) (*domain.FulfillmentResult, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Fulfilled {
		return nil, ErrAlreadyFulfilled
	}

	result := &domain.FulfillmentResult{
		OrderID:   order.ID,
		TotalCost: decimal.Zero,
	}

	for _, line := range order.Lines {
		consumed, err := s.engine.Consume(ctx, line.SKU, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to consume %s: %w", line.SKU, err)
		}

		result.TotalCost = result.TotalCost.Add(consumed.Cost)
		result.Lines = append(result.Lines, domain.LineFulfillmentResult{
			SKU:       line.SKU,
			Quantity:  line.Quantity,
			Cost:      consumed.Cost,
			Shortfall: consumed.Shortfall,
		})
	}

	if err := s.repo.MarkFulfilled(ctx, id); err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)

	evt := log.Info()
	if result.HasShortfall() {
		evt = log.Warn()
	}
	evt.
		Int64("order_id", order.ID).
		Str("total_cost", result.TotalCost.String()).
		Bool("shortfall", result.HasShortfall()).
		Msg("order fulfilled")

	return result, nil
}

func (s *OrderService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}
