package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAverageCostFromHistory(t *testing.T) {
	totals := Totals{Qty: dec("15"), Value: dec("1600")}

	cost, fellBack := AverageCost(totals, decimal.Zero)
	require.False(t, fellBack)
	require.True(t, cost.Equal(dec("106.666667")), "got %s", cost)
}

func TestAverageCostRoundsToCostScale(t *testing.T) {
	totals := Totals{Qty: dec("3"), Value: dec("100")}

	cost, fellBack := AverageCost(totals, decimal.Zero)
	require.False(t, fellBack)
	require.Equal(t, "33.333333", cost.String())
}

func TestAverageCostDeterministic(t *testing.T) {
	totals := Totals{Qty: dec("7"), Value: dec("123.456789")}

	first, _ := AverageCost(totals, decimal.Zero)
	second, _ := AverageCost(totals, decimal.Zero)
	require.True(t, first.Equal(second))
}

func TestAverageCostFallsBackToStandardCost(t *testing.T) {
	totals := Totals{Qty: decimal.Zero, Value: decimal.Zero}

	cost, fellBack := AverageCost(totals, dec("12.5"))
	require.True(t, fellBack)
	require.True(t, cost.Equal(dec("12.5")))
}

func TestAverageCostFallsBackToZero(t *testing.T) {
	totals := Totals{Qty: dec("-2"), Value: dec("-40")}

	cost, fellBack := AverageCost(totals, decimal.Zero)
	require.True(t, fellBack)
	require.True(t, cost.IsZero())
}

func TestEnsureAvailable(t *testing.T) {
	require.NoError(t, EnsureAvailable(1, dec("10"), dec("10")))

	err := EnsureAvailable(7, dec("4"), dec("10"))
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(7), stockErr.ProductID)
	require.True(t, stockErr.OnHand.Equal(dec("4")))
	require.True(t, stockErr.Requested.Equal(dec("10")))
}
