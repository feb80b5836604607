package taxlot

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a single currency. Arithmetic between two
// Money values requires identical currencies and fails with
// *CurrencyMismatchError otherwise.
type Money struct {
	amount decimal.Decimal
	cur    string
}

// CurrencyMismatchError reports arithmetic between incompatible currencies.
type CurrencyMismatchError struct {
	Op       string
	Expected string
	Actual   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s requires money in the same currency, have %s and %s", e.Op, e.Expected, e.Actual)
}

// M returns a Money from a numeric constant. For tests and fixtures.
func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{amount: newDecimal(value), cur: currency}
}

// NewMoney returns a Money holding the exact decimal amount.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, cur: currency}
}

// ParseMoney parses a decimal string into a Money.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d, cur: currency}, nil
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money { return Money{amount: decimal.Zero, cur: currency} }

// Amount returns the underlying decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() string { return m.cur }

// currency resolves the full currency metadata, defaulting to a bare code
// for currencies go-money does not know.
func (m Money) currency() *money.Currency {
	// the money constructor never returns a nil currency
	return money.New(0, m.cur).Currency()
}

// String renders the amount with its currency code, e.g. "325.6000 PLN".
func (m Money) String() string { return m.amount.String() + " " + m.currency().Code }

// IsZero reports whether the amount is zero, regardless of representation.
func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// same verifies n shares m's currency before an arithmetic operation.
func (m Money) same(op string, n Money) error {
	if m.cur != n.cur {
		return &CurrencyMismatchError{Op: op, Expected: m.cur, Actual: n.cur}
	}
	return nil
}

// Add returns m+n, failing when the currencies differ.
func (m Money) Add(n Money) (Money, error) {
	if err := m.same("add", n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(n.amount), cur: m.cur}, nil
}

// Sub returns m-n, failing when the currencies differ.
func (m Money) Sub(n Money) (Money, error) {
	if err := m.same("subtract", n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(n.amount), cur: m.cur}, nil
}

// Cmp compares two amounts in the same currency: -1, 0 or 1.
func (m Money) Cmp(n Money) (int, error) {
	if err := m.same("compare", n); err != nil {
		return 0, err
	}
	return m.amount.Cmp(n.amount), nil
}

// Mul scales the amount by a quantity.
func (m Money) Mul(q Quantity) Money {
	return Money{amount: m.amount.Mul(q.value), cur: m.cur}
}

// Percent returns the given percentage of the amount. The factor p/100 is
// rounded to 2 decimal places half-up before multiplying; that is how the
// source withholding figures are computed and it must stay that way.
func (m Money) Percent(p Percent) Money {
	factor := p.value.DivRound(decimal.NewFromInt(100), 2)
	return Money{amount: m.amount.Mul(factor), cur: m.cur}
}

// EqualInScale reports whether two amounts are equal once both are
// truncated (not rounded) to the given number of decimal places. The
// currency is not checked; callers compare figures of one instrument.
func (m Money) EqualInScale(n Money, scale int32) bool {
	return m.amount.Truncate(scale).Equal(n.amount.Truncate(scale))
}
