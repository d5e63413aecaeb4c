// Package costing implements FIFO inventory costing: an ordered ledger of
// cost layers per SKU, a consumption engine that attributes cost oldest-first,
// and pure read-side valuation and profit reporting.
package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/stocklens/backend/internal/domain"
)

// LayerTake is one layer decrement inside a consumption. A repository must
// apply all takes of a call atomically and reject any take that would drive
// a layer quantity negative.
type LayerTake struct {
	LayerID  int64
	Quantity int
}

// LayerRepository is the persistence contract the engine operates against.
// The memory implementation backs tests and dev mode; the postgres one backs
// production. LayersBySKU must order by acquired_at ascending with insertion
// order breaking ties.
type LayerRepository interface {
	LayersBySKU(ctx context.Context, sku string) ([]domain.CostLayer, error)
	InsertLayer(ctx context.Context, layer *domain.CostLayer) error
	ApplyTakes(ctx context.Context, sku string, takes []LayerTake) error
	DeleteByOrigin(ctx context.Context, sku, originID string) (removedQty int, err error)
	SKUs(ctx context.Context) ([]string, error)
}

// Engine owns all mutations of the cost layer ledger. All writes for a SKU
// are serialized through a per-SKU lock, and multi-layer decrements are
// committed through a single repository call so they apply fully or not at
// all.
type Engine struct {
	repo   LayerRepository
	policy ShortfallPolicy
	locks  *skuLocks
}

// NewEngine builds an engine over the given repository and shortfall policy.
func NewEngine(repo LayerRepository, policy ShortfallPolicy) *Engine {
	if policy.FallbackUnitCost.IsZero() && policy.Mode == "" {
		policy = DefaultShortfallPolicy()
	}
	return &Engine{
		repo:   repo,
		policy: policy,
		locks:  newSKULocks(),
	}
}

// Policy returns the shortfall policy the engine was built with.
func (e *Engine) Policy() ShortfallPolicy {
	return e.policy
}

// AddLayer appends a new cost layer for the SKU. A zero unit cost is valid
// (manual and legacy adjustments may carry no cost); a non-positive quantity
// is not.
func (e *Engine) AddLayer(ctx context.Context, sku, originID string, quantity int, unitCost decimal.Decimal, acquiredAt time.Time) error {
	if sku == "" {
		return ErrInvalidSKU
	}
	if quantity <= 0 {
		return fmt.Errorf("add layer for %s: %w", sku, ErrInvalidQuantity)
	}

	unlock := e.locks.lock(sku)
	defer unlock()

	layer := &domain.CostLayer{
		SKU:        sku,
		OriginID:   originID,
		Quantity:   quantity,
		UnitCost:   unitCost,
		AcquiredAt: acquiredAt,
	}
	if err := e.repo.InsertLayer(ctx, layer); err != nil {
		return fmt.Errorf("insert layer for %s: %w", sku, err)
	}

	return nil
}

// Release puts quantity back on the books. It is the add-back half of the
// demand model, used for accepted returns and manual restocks.
func (e *Engine) Release(ctx context.Context, sku, originID string, quantity int, unitCost decimal.Decimal, acquiredAt time.Time) error {
	return e.AddLayer(ctx, sku, originID, quantity, unitCost, acquiredAt)
}

// RemoveLayersByOrigin deletes every layer tied to an origin, returning the
// quantity actually removed. When some of that origin's quantity was already
// consumed, only the remainder disappears and the consumed history is gone
// for good; this is logged as a data-quality warning because it skews
// valuation against what was actually sold.
func (e *Engine) RemoveLayersByOrigin(ctx context.Context, sku, originID string) (int, error) {
	if sku == "" {
		return 0, ErrInvalidSKU
	}

	unlock := e.locks.lock(sku)
	defer unlock()

	layers, err := e.repo.LayersBySKU(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("load layers for %s: %w", sku, err)
	}

	consumed := 0
	for _, layer := range layers {
		if layer.OriginID == originID && layer.Exhausted() {
			consumed++
		}
	}

	removed, err := e.repo.DeleteByOrigin(ctx, sku, originID)
	if err != nil {
		return 0, fmt.Errorf("remove layers for %s origin %s: %w", sku, originID, err)
	}

	if consumed > 0 {
		log.Warn().
			Str("sku", sku).
			Str("origin_id", originID).
			Int("removed_qty", removed).
			Int("exhausted_layers", consumed).
			Msg("removing origin with consumed quantity; sold cost history is lost")
	}

	return removed, nil
}

// LayersFor returns the SKU's layers oldest-first. The slice reflects the
// ledger at call time, not a live view.
func (e *Engine) LayersFor(ctx context.Context, sku string) ([]domain.CostLayer, error) {
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	return e.repo.LayersBySKU(ctx, sku)
}

// TotalQuantity sums remaining quantity across the SKU's layers.
func (e *Engine) TotalQuantity(ctx context.Context, sku string) (int, error) {
	layers, err := e.repo.LayersBySKU(ctx, sku)
	if err != nil {
		return 0, fmt.Errorf("load layers for %s: %w", sku, err)
	}

	total := 0
	for _, layer := range layers {
		total += layer.Quantity
	}
	return total, nil
}

// LatestUnitCost returns the unit cost of the most recently acquired layer.
// This is the "last cost wins" display figure, not a FIFO-weighted average.
// ok is false when the SKU has no layers.
func (e *Engine) LatestUnitCost(ctx context.Context, sku string) (cost decimal.Decimal, ok bool, err error) {
	layers, err := e.repo.LayersBySKU(ctx, sku)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("load layers for %s: %w", sku, err)
	}
	if len(layers) == 0 {
		return decimal.Zero, false, nil
	}

	// Layers are ordered acquired_at asc, so the latest is last.
	return layers[len(layers)-1].UnitCost, true, nil
}

// SKUs lists every SKU with recorded layers, exhausted ones included.
func (e *Engine) SKUs(ctx context.Context) ([]string, error) {
	return e.repo.SKUs(ctx)
}
