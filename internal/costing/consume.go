package costing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ConsumptionResult carries the cost attributed to a demand and the
// quantity, if any, that recorded layers could not back.
type ConsumptionResult struct {
	Cost      decimal.Decimal `json:"cost"`
	Shortfall int             `json:"shortfall"`
}

// Consume attributes cost to a sale of quantity units, walking the SKU's
// layers oldest-first and decrementing them. Under the degrade policy a
// shortfall never fails: the missing units are costed at the fallback unit
// cost and reported via the result so callers can alert on under-provisioned
// inventory. Under the reject policy the ledger is left untouched and
// ErrInsufficientStock is returned.
func (e *Engine) Consume(ctx context.Context, sku string, quantity int) (ConsumptionResult, error) {
	if err := validateDemand(sku, quantity); err != nil {
		return ConsumptionResult{}, err
	}

	unlock := e.locks.lock(sku)
	defer unlock()

	result, takes, err := e.walk(ctx, sku, quantity)
	if err != nil {
		return ConsumptionResult{}, err
	}

	if result.Shortfall > 0 {
		if e.policy.Mode == ShortfallReject {
			return ConsumptionResult{}, fmt.Errorf("consume %d of %s: %w (missing %d)",
				quantity, sku, ErrInsufficientStock, result.Shortfall)
		}
		result.Cost = result.Cost.Add(e.policy.CostFor(result.Shortfall))
		log.Warn().
			Str("sku", sku).
			Int("requested", quantity).
			Int("shortfall", result.Shortfall).
			Str("fallback_unit_cost", e.policy.FallbackUnitCost.String()).
			Msg("consumption exceeded recorded layers; applied fallback cost")
	}

	// All decrements of this walk commit through one repository call, so an
	// interrupted consume never leaves the ledger half-applied.
	if len(takes) > 0 {
		if err := e.repo.ApplyTakes(ctx, sku, takes); err != nil {
			return ConsumptionResult{}, fmt.Errorf("apply consumption for %s: %w", sku, err)
		}
	}

	return result, nil
}

// CostLookup runs the same oldest-first attribution as Consume without
// touching the ledger. The profit reporter uses this on its read path.
func (e *Engine) CostLookup(ctx context.Context, sku string, quantity int) (ConsumptionResult, error) {
	if err := validateDemand(sku, quantity); err != nil {
		return ConsumptionResult{}, err
	}

	unlock := e.locks.lock(sku)
	defer unlock()

	result, _, err := e.walk(ctx, sku, quantity)
	if err != nil {
		return ConsumptionResult{}, err
	}

	if result.Shortfall > 0 {
		result.Cost = result.Cost.Add(e.policy.CostFor(result.Shortfall))
	}

	return result, nil
}

// walk computes the FIFO attribution for quantity units: the cost of the
// backed portion, the shortfall, and the layer decrements a mutating caller
// should commit.
func (e *Engine) walk(ctx context.Context, sku string, quantity int) (ConsumptionResult, []LayerTake, error) {
	layers, err := e.repo.LayersBySKU(ctx, sku)
	if err != nil {
		return ConsumptionResult{}, nil, fmt.Errorf("load layers for %s: %w", sku, err)
	}
	if len(layers) == 0 {
		return ConsumptionResult{}, nil, fmt.Errorf("consume %s: %w", sku, ErrUnknownSKU)
	}

	remaining := quantity
	cost := decimal.Zero
	var takes []LayerTake

	for _, layer := range layers {
		if remaining == 0 {
			break
		}
		if layer.Quantity <= 0 {
			continue
		}

		take := layer.Quantity
		if remaining < take {
			take = remaining
		}

		cost = cost.Add(layer.UnitCost.Mul(decimal.NewFromInt(int64(take))))
		takes = append(takes, LayerTake{LayerID: layer.ID, Quantity: take})
		remaining -= take
	}

	return ConsumptionResult{Cost: cost, Shortfall: remaining}, takes, nil
}

func validateDemand(sku string, quantity int) error {
	if sku == "" {
		return ErrInvalidSKU
	}
	if quantity <= 0 {
		return fmt.Errorf("demand for %s: %w", sku, ErrInvalidQuantity)
	}
	return nil
}
