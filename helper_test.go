package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/taxlot/taxlot/date"
)

// USD is a helper for test to create us dollar money from const
func USD(v float64) Money { return M(v, "USD") }

// PLN is a helper for test to create zloty money from const
func PLN(v float64) Money { return M(v, "PLN") }

// JPY is a helper for test to create yen money from const
func JPY(v float64) Money { return M(v, "JPY") }

// row builds one rate table row from a day string and quotations.
func row(day string, values map[string]float64) Row {
	vs := make(map[string]decimal.Decimal, len(values))
	for cur, v := range values {
		vs[cur] = decimal.NewFromFloat(v)
	}
	return Row{Date: date.MustParse(day), Values: vs}
}

// flatRates quotes USD at 4 (per 1) and JPY at 3 (per 100) from January 1st
// of every requested year, into PLN. Flat rates keep the expected figures
// easy to follow.
func flatRates(years ...int) *Repository {
	tables := make(map[int]*Table, len(years))
	for _, y := range years {
		units := map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"JPY": decimal.NewFromInt(100),
		}
		rows := []Row{row(fmt.Sprintf("%d-01-01", y), map[string]float64{"USD": 4, "JPY": 3})}
		tables[y] = NewTable(y, units, rows)
	}
	return NewRepository("PLN", TableSourceFunc(func(year int) (*Table, error) {
		return tables[year], nil
	}))
}

// tx builds a USD stock transaction on the NYSE for matching tests.
func tx(side Side, stamp string, qty, price float64) Transaction {
	ts, err := time.Parse(TimeLayout, stamp)
	if err != nil {
		panic(err.Error())
	}
	return Transaction{
		Side:       side,
		Time:       ts,
		SymbolID:   "VALE.NYSE",
		ISIN:       "US91912E1055",
		Price:      USD(price),
		Quantity:   Q(qty),
		Fee:        USD(0),
		ReportedPL: USD(0),
	}
}

func buyAt(stamp string, qty, price float64) Transaction  { return tx(Buy, stamp, qty, price) }
func sellAt(stamp string, qty, price float64) Transaction { return tx(Sell, stamp, qty, price) }
