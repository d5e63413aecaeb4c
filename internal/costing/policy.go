package costing

import "github.com/shopspring/decimal"

// ShortfallMode selects what Consume does when recorded layers cannot back
// the requested quantity.
type ShortfallMode string

const (
	// ShortfallDegrade costs the missing quantity at the fallback unit cost
	// and reports it, favoring availability of profit figures over strict
	// correctness.
	ShortfallDegrade ShortfallMode = "degrade"

	// ShortfallReject fails the consumption outright.
	ShortfallReject ShortfallMode = "reject"
)

// defaultFallbackUnitCost is the historical placeholder cost applied to
// unbacked units under the degrade policy.
var defaultFallbackUnitCost = decimal.NewFromInt(50)

// ShortfallPolicy is injected into the Engine so callers (and tests) can
// choose between degrade and fail-fast behavior instead of relying on a
// hardcoded constant.
type ShortfallPolicy struct {
	Mode             ShortfallMode
	FallbackUnitCost decimal.Decimal
}

// DefaultShortfallPolicy degrades with the historical fallback cost.
func DefaultShortfallPolicy() ShortfallPolicy {
	return ShortfallPolicy{
		Mode:             ShortfallDegrade,
		FallbackUnitCost: defaultFallbackUnitCost,
	}
}

// ParseShortfallMode maps a config string to a mode, defaulting to degrade.
func ParseShortfallMode(s string) ShortfallMode {
	if ShortfallMode(s) == ShortfallReject {
		return ShortfallReject
	}
	return ShortfallDegrade
}

// CostFor prices a shortfall quantity under this policy.
func (p ShortfallPolicy) CostFor(quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return p.FallbackUnitCost.Mul(decimal.NewFromInt(int64(quantity)))
}
