package taxlot

import "github.com/shopspring/decimal"

// conversionScale is the number of decimal places of every converted
// amount, rounded half away from zero.
const conversionScale = 4

// Rate is a historical conversion quotation: Value home-currency units per
// Units foreign-currency units. Low-value currencies are commonly quoted
// per 100 units, e.g. Rate{3.256, 100} for JPY.
type Rate struct {
	Value decimal.Decimal
	Units decimal.Decimal
}

// NewRate returns a Rate quoted per the given number of units.
func NewRate[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value, units T) Rate {
	return Rate{Value: newDecimal(value), Units: newDecimal(units)}
}

// ToHome converts a foreign amount to the home currency:
// value * amount / units, rounded to 4 decimal places.
func (r Rate) ToHome(amount decimal.Decimal) decimal.Decimal {
	return r.Value.Mul(amount).DivRound(r.Units, conversionScale)
}

// ToForeign converts a home amount back to the foreign currency:
// amount / (value/units), rounded to 4 decimal places.
func (r Rate) ToForeign(amount decimal.Decimal) decimal.Decimal {
	return amount.DivRound(r.Value.Div(r.Units), conversionScale)
}

// Convert converts a foreign Money into the given home currency.
func (r Rate) Convert(m Money, home string) Money {
	return Money{amount: r.ToHome(m.amount), cur: home}
}
