package taxlot

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/taxlot/taxlot/date"
)

// RateTableMissingError reports that no rate table is registered for the
// year of the requested date.
type RateTableMissingError struct {
	Year int
}

func (e *RateTableMissingError) Error() string {
	return fmt.Sprintf("no rate table for year %d", e.Year)
}

// RateNotFoundError reports that the year's table has no column for the
// requested currency.
type RateNotFoundError struct {
	Date     date.Date
	Currency string
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no %s rate quoted on %s", e.Currency, e.Date)
}

// RateDateOutOfRangeError reports that the table holds no row at or before
// the requested date, so even carry-back cannot resolve a quotation.
type RateDateOutOfRangeError struct {
	Date date.Date
}

func (e *RateDateOutOfRangeError) Error() string {
	return fmt.Sprintf("no rate row at or before %s", e.Date)
}

// Row is one dated line of a rate table: the quotation of every currency
// on one trading day.
type Row struct {
	Date   date.Date
	Values map[string]decimal.Decimal
}

// Table holds one calendar year of quotations: per-currency dated series
// plus the units-per-quote scale of each currency column.
type Table struct {
	year   int
	units  map[string]decimal.Decimal
	series map[string]*date.History[decimal.Decimal]
}

// NewTable builds a year table from already-parsed rows. The units map
// gives the units-per-quote of every currency column; a currency missing
// from it is quoted per single unit.
func NewTable(year int, units map[string]decimal.Decimal, rows []Row) *Table {
	t := &Table{
		year:   year,
		units:  make(map[string]decimal.Decimal, len(units)),
		series: make(map[string]*date.History[decimal.Decimal]),
	}
	for cur, u := range units {
		t.units[cur] = u
	}
	for _, row := range rows {
		for cur, value := range row.Values {
			h, ok := t.series[cur]
			if !ok {
				h = new(date.History[decimal.Decimal])
				t.series[cur] = h
			}
			h.Append(row.Date, value)
		}
	}
	return t
}

// Year returns the calendar year the table covers.
func (t *Table) Year() int { return t.year }

// Rate resolves the quotation of a currency on a day. An exact date match
// wins; otherwise the latest row strictly before the day is used
// (carry-back across weekends and holidays).
func (t *Table) Rate(on date.Date, currency string) (Rate, error) {
	h, ok := t.series[currency]
	if !ok {
		return Rate{}, &RateNotFoundError{Date: on, Currency: currency}
	}
	value, ok := h.ValueAsOf(on)
	if !ok {
		return Rate{}, &RateDateOutOfRangeError{Date: on}
	}
	units, ok := t.units[currency]
	if !ok {
		units = decimal.NewFromInt(1)
	}
	return Rate{Value: value, Units: units}, nil
}

// TableSource supplies parsed year tables on demand. Implementations own
// the file or resource access; the repository never touches files itself.
type TableSource interface {
	LoadTable(year int) (*Table, error)
}

// TableSourceFunc adapts a function to the TableSource interface.
type TableSourceFunc func(year int) (*Table, error)

func (f TableSourceFunc) LoadTable(year int) (*Table, error) { return f(year) }

// Repository resolves historical conversion rates into one fixed home
// currency. Year tables are loaded lazily on first use and cached for the
// repository's lifetime. One logical caller per run; not safe for
// concurrent use.
type Repository struct {
	home   string
	source TableSource
	tables map[int]*Table
}

// NewRepository returns a repository converting into the given home
// currency, loading year tables from source.
func NewRepository(home string, source TableSource) *Repository {
	return &Repository{
		home:   home,
		source: source,
		tables: make(map[int]*Table),
	}
}

// HomeCurrency returns the fixed home currency code.
func (r *Repository) HomeCurrency() string { return r.home }

// table returns the cached table for a year, loading it on first use.
func (r *Repository) table(year int) (*Table, error) {
	if t, ok := r.tables[year]; ok {
		return t, nil
	}
	t, err := r.source.LoadTable(year)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &RateTableMissingError{Year: year}
	}
	r.tables[year] = t
	return t, nil
}

// Rate resolves the conversion rate for (date, currency). The date of the
// resolved quotation is never later than the requested date.
func (r *Repository) Rate(on date.Date, currency string) (Rate, error) {
	t, err := r.table(on.Year())
	if err != nil {
		return Rate{}, err
	}
	return t.Rate(on, currency)
}

// ConvertToHome converts a foreign amount into the home currency at the
// rate valid on the given date. Home-currency amounts pass through.
func (r *Repository) ConvertToHome(on date.Date, m Money) (Money, error) {
	if m.Currency() == r.home {
		return m, nil
	}
	rate, err := r.Rate(on, m.Currency())
	if err != nil {
		return Money{}, err
	}
	return rate.Convert(m, r.home), nil
}

// Close drops the cached tables and closes the source when it owns
// closeable resources.
func (r *Repository) Close() error {
	r.tables = make(map[int]*Table)
	if c, ok := r.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
