package taxlot

import "github.com/shopspring/decimal"

// Percent is a percentage expressed on the 0-100 scale, e.g. P(19) for 19%.
// Withholding rates are money-bearing figures, so they are decimals too.
type Percent struct {
	value decimal.Decimal
}

// ZeroPercent is the 0% rate.
var ZeroPercent = Percent{}

// P returns a Percent from a numeric constant.
func P[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Percent {
	return Percent{value: newDecimal(value)}
}

// ParsePercent parses a decimal string (without the % sign) into a Percent.
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, err
	}
	return Percent{value: d}, nil
}

func (p Percent) Equal(q Percent) bool    { return p.value.Equal(q.value) }
func (p Percent) LessThan(q Percent) bool { return p.value.LessThan(q.value) }
func (p Percent) Sub(q Percent) Percent   { return Percent{value: p.value.Sub(q.value)} }
func (p Percent) IsZero() bool            { return p.value.IsZero() }
func (p Percent) String() string          { return p.value.String() + "%" }
