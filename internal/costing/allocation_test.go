package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCostPerUnit(t *testing.T) {
	perUnit := DeliveryCostPerUnit(decimal.NewFromInt(250), 175)
	require.Equal(t, "1.43", perUnit.String())

	// Rounded per-unit share times quantity will not equal the raw
	// delivery cost; that discrepancy is accepted.
	total := perUnit.Mul(decimal.NewFromInt(175))
	require.Equal(t, "250.25", total.String())
}

func TestDeliveryCostPerUnitDegenerate(t *testing.T) {
	require.True(t, DeliveryCostPerUnit(decimal.NewFromInt(250), 0).IsZero())
	require.True(t, DeliveryCostPerUnit(decimal.NewFromInt(250), -5).IsZero())
	require.True(t, DeliveryCostPerUnit(decimal.Zero, 100).IsZero())
}

func TestLoadedUnitCost(t *testing.T) {
	loaded := LoadedUnitCost(decimal.RequireFromString("9.50"), decimal.RequireFromString("1.43"))
	require.Equal(t, "10.93", loaded.String())
}
