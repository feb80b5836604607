package taxlot

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxlot/taxlot/date"
)

func table2023() *Table {
	units := map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"JPY": decimal.NewFromInt(100),
	}
	return NewTable(2023, units, []Row{
		row("2023-01-02", map[string]float64{"USD": 4.3947, "JPY": 3.2560}),
		row("2023-01-03", map[string]float64{"USD": 4.4000}),
		row("2023-01-09", map[string]float64{"USD": 4.5000, "JPY": 3.3000}),
	})
}

func repo2023() *Repository {
	return NewRepository("PLN", TableSourceFunc(func(year int) (*Table, error) {
		if year == 2023 {
			return table2023(), nil
		}
		return nil, nil
	}))
}

func TestTableRate_ExactMatchWins(t *testing.T) {
	r, err := table2023().Rate(date.MustParse("2023-01-03"), "USD")
	require.NoError(t, err)
	assert.True(t, r.Value.Equal(decimal.NewFromFloat(4.4)))
}

func TestTableRate_CarriesBackOverNonTradingDays(t *testing.T) {
	// January 7th and 8th 2023 are a weekend: the 3rd is the latest
	// quotation at or before them.
	for _, day := range []string{"2023-01-07", "2023-01-08"} {
		r, err := table2023().Rate(date.MustParse(day), "USD")
		require.NoError(t, err, day)
		assert.True(t, r.Value.Equal(decimal.NewFromFloat(4.4)), day)
	}
}

func TestTableRate_CurrencyQuotedSparsely(t *testing.T) {
	// JPY was not quoted on the 3rd; the 2nd's quotation carries forward.
	r, err := table2023().Rate(date.MustParse("2023-01-05"), "JPY")
	require.NoError(t, err)
	assert.True(t, r.Value.Equal(decimal.NewFromFloat(3.2560)))
	assert.True(t, r.Units.Equal(decimal.NewFromInt(100)))
}

func TestTableRate_BeforeFirstRowFails(t *testing.T) {
	_, err := table2023().Rate(date.MustParse("2023-01-01"), "USD")

	var oor *RateDateOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, date.MustParse("2023-01-01"), oor.Date)
}

func TestTableRate_UnknownCurrencyFails(t *testing.T) {
	_, err := table2023().Rate(date.MustParse("2023-01-05"), "CHF")

	var nf *RateNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "CHF", nf.Currency)
}

func TestRepository_MissingYearFails(t *testing.T) {
	_, err := repo2023().Rate(date.MustParse("2024-03-01"), "USD")

	var missing *RateTableMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 2024, missing.Year)
}

func TestRepository_ConvertToHome(t *testing.T) {
	// 10000 JPY at 3.2560 per 100 is 325.60 PLN.
	m, err := repo2023().ConvertToHome(date.MustParse("2023-01-02"), JPY(10000))
	require.NoError(t, err)
	assert.Equal(t, "PLN", m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(325.6)), "got %s", m)
}

func TestRepository_HomeCurrencyPassesThrough(t *testing.T) {
	// no table is needed when the amount is already in the home currency
	r := NewRepository("PLN", TableSourceFunc(func(int) (*Table, error) {
		return nil, nil
	}))

	m, err := r.ConvertToHome(date.MustParse("2023-01-02"), PLN(123.45))
	require.NoError(t, err)
	assert.Equal(t, PLN(123.45), m)
}

func TestRepository_CachesTables(t *testing.T) {
	loads := 0
	r := NewRepository("PLN", TableSourceFunc(func(year int) (*Table, error) {
		loads++
		return table2023(), nil
	}))

	for range 3 {
		_, err := r.Rate(date.MustParse("2023-01-02"), "USD")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loads)

	require.NoError(t, r.Close())
	_, err := r.Rate(date.MustParse("2023-01-02"), "USD")
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "Close must drop the cache")
}

func TestRepository_SourceErrorPropagates(t *testing.T) {
	boom := errors.New("storage gone")
	r := NewRepository("PLN", TableSourceFunc(func(int) (*Table, error) {
		return nil, boom
	}))

	_, err := r.Rate(date.MustParse("2023-01-02"), "USD")
	assert.ErrorIs(t, err, boom)
}
