package taxlot

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxlot/taxlot/date"
)

func dividend(id string, gross float64, sourcePercent float64) DividendEvent {
	return DividendEvent{
		TransactionID:    id,
		PayDate:          date.MustParse("2023-05-02"),
		Gross:            USD(gross),
		SourceTaxPercent: P(sourcePercent),
	}
}

func rollback(id, parent string) DividendEvent {
	return DividendEvent{
		TransactionID: id,
		PayDate:       date.MustParse("2023-05-02"),
		Gross:         USD(0),
		RollbackOf:    parent,
	}
}

func TestDividends_UnderWithheldOwesTheGap(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	// 100 USD at 4 PLN/USD is 400 PLN; 15% withheld at source.
	decl, results, err := calc.Aggregate([]DividendEvent{dividend("d1", 100, 15)})
	require.NoError(t, err)

	require.Len(t, results, 1)
	r := results[0]
	assert.True(t, r.DividendHome.Amount().Equal(decimal.NewFromInt(400)), "dividend %s", r.DividendHome)
	assert.True(t, r.StatutoryTax.Amount().Equal(decimal.NewFromInt(76)), "statutory %s", r.StatutoryTax)
	assert.True(t, r.RealSourceTaxPaid.Amount().Equal(decimal.NewFromInt(60)), "real %s", r.RealSourceTaxPaid)
	assert.True(t, r.DeclaredSourceTaxPaid.Amount().Equal(decimal.NewFromInt(60)), "declared %s", r.DeclaredSourceTaxPaid)
	assert.True(t, r.TaxPercentToPay.Equal(P(4)))
	assert.True(t, r.TaxStillOwed.Amount().Equal(decimal.NewFromInt(16)), "owed %s", r.TaxStillOwed)

	assert.True(t, decl.Difference().Amount().Equal(decimal.NewFromInt(16)))
	assert.True(t, decl.TaxToPay().Amount().Equal(decimal.NewFromInt(16)))
}

func TestDividends_OverWithheldIsCappedAtStatutory(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	decl, results, err := calc.Aggregate([]DividendEvent{dividend("d1", 100, 25)})
	require.NoError(t, err)

	r := results[0]
	assert.True(t, r.RealSourceTaxPaid.Amount().Equal(decimal.NewFromInt(100)), "real %s", r.RealSourceTaxPaid)
	// the credit never exceeds the statutory amount
	assert.True(t, r.DeclaredSourceTaxPaid.Amount().Equal(decimal.NewFromInt(76)), "declared %s", r.DeclaredSourceTaxPaid)
	assert.True(t, r.TaxStillOwed.IsZero())
	assert.True(t, r.TaxPercentToPay.IsZero())

	assert.True(t, decl.Difference().IsZero())
	assert.True(t, decl.TaxToPay().IsZero())
}

func TestDividends_ExactStatutoryWithholding(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	_, results, err := calc.Aggregate([]DividendEvent{dividend("d1", 100, 19)})
	require.NoError(t, err)

	r := results[0]
	assert.True(t, r.TaxStillOwed.IsZero())
	assert.True(t, r.DeclaredSourceTaxPaid.Amount().Equal(decimal.NewFromInt(76)))
}

func TestDividends_TotalsAcrossEvents(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	decl, _, err := calc.Aggregate([]DividendEvent{
		dividend("d1", 100, 15),
		dividend("d2", 100, 25),
	})
	require.NoError(t, err)

	assert.True(t, decl.TotalDividendIncome.Amount().Equal(decimal.NewFromInt(800)))
	assert.True(t, decl.TotalStatutoryTax.Amount().Equal(decimal.NewFromInt(152)))
	assert.True(t, decl.TotalRealSourceTaxPaid.Amount().Equal(decimal.NewFromInt(160)))
	assert.True(t, decl.TotalDeclaredSourceTaxPaid.Amount().Equal(decimal.NewFromInt(136)))
	// 152 - 136, the d1 gap
	assert.True(t, decl.TaxToPay().Amount().Equal(decimal.NewFromInt(16)))
}

func TestFilterRollbacks(t *testing.T) {
	d1 := dividend("d1", 100, 15)
	d2 := dividend("d2", 50, 15)

	tests := []struct {
		name   string
		events []DividendEvent
	}{
		{name: "rollback after parent", events: []DividendEvent{d1, rollback("r1", "d1"), d2}},
		{name: "rollback before parent", events: []DividendEvent{rollback("r1", "d1"), d1, d2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := FilterRollbacks(tt.events)
			require.Len(t, kept, 1)
			assert.Equal(t, "d2", kept[0].TransactionID)
		})
	}
}

func TestDividends_RollbacksExcludedFromTotals(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	decl, results, err := calc.Aggregate([]DividendEvent{
		dividend("d1", 100, 15),
		rollback("r1", "d1"),
		dividend("d2", 50, 15),
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "d2", results[0].Event.TransactionID)
	assert.True(t, decl.TotalDividendIncome.Amount().Equal(decimal.NewFromInt(200)))
}

func TestDividends_DefaultStatutoryRate(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), ZeroPercent, nil)

	_, results, err := calc.Aggregate([]DividendEvent{dividend("d1", 100, 15)})
	require.NoError(t, err)
	assert.True(t, results[0].StatutoryTax.Amount().Equal(decimal.NewFromInt(76)), "falls back to 19%%")
}

func TestDividends_MissingRateFails(t *testing.T) {
	calc := NewDividendCalculator(flatRates(2023), P(19), nil)

	e := dividend("d1", 100, 15)
	e.PayDate = date.MustParse("2024-05-02")
	_, _, err := calc.Aggregate([]DividendEvent{e})

	var missing *RateTableMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 2024, missing.Year)
}
