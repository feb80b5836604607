package taxlot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(value, units float64) Rate {
	return NewRate(decimal.NewFromFloat(value), decimal.NewFromFloat(units))
}

func TestRateToHome(t *testing.T) {
	tests := []struct {
		name   string
		rate   Rate
		amount float64
		want   float64
	}{
		{name: "per unit", rate: rate(4.3947, 1), amount: 100, want: 439.47},
		{name: "per hundred", rate: rate(3.2560, 100), amount: 10000, want: 325.60},
		{name: "rounded to 4 places", rate: rate(4.3947, 1), amount: 0.333, want: 1.4634},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rate.ToHome(decimal.NewFromFloat(tt.amount))
			assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)), "got %s want %v", got, tt.want)
		})
	}
}

func TestRateToForeign(t *testing.T) {
	// 10000 PLN at 4.3947 PLN per USD buys 2275.4682 USD.
	got := rate(4.3947, 1).ToForeign(decimal.NewFromInt(10000))
	assert.True(t, got.Equal(decimal.NewFromFloat(2275.4682)), "got %s", got)
}

func TestRateRoundTrip(t *testing.T) {
	rates := []Rate{rate(4.3947, 1), rate(3.2560, 100), rate(0.9812, 1)}
	amounts := []float64{1, 10.5, 333.33, 10000}

	for _, r := range rates {
		// both conversions round to 4 places, and the second error grows
		// by the inverse of the per-unit rate
		step := decimal.NewFromFloat(0.0001)
		tolerance := step.Add(step.Mul(r.Units.DivRound(r.Value, 8)))
		for _, a := range amounts {
			x := decimal.NewFromFloat(a)
			back := r.ToForeign(r.ToHome(x))
			diff := back.Sub(x).Abs()
			assert.True(t, diff.LessThanOrEqual(tolerance),
				"round trip of %s through %s/%s drifted by %s", x, r.Value, r.Units, diff)
		}
	}
}

func TestRateConvert(t *testing.T) {
	m := rate(3.2560, 100).Convert(JPY(10000), "PLN")
	require.Equal(t, "PLN", m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(325.6)))
}
