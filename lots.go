package taxlot

import (
	"time"

	"github.com/taxlot/taxlot/date"
)

// RealizedLot is a matched (open, close) pair with a settled quantity: one
// taxable gain/loss event. Produced only by matching and immutable once
// created.
type RealizedLot struct {
	OpenTime   time.Time
	OpenPrice  Money
	CloseTime  time.Time
	ClosePrice Money
	Quantity   Quantity
	// Side is the closing transaction's side: Sell closes a long position,
	// Buy covers a short one.
	Side       Side
	OrderID    string
	OrderState int
}

// OpenDate returns the day the position was opened.
func (l RealizedLot) OpenDate() date.Date { return date.FromTime(l.OpenTime) }

// CloseDate returns the day the position was closed.
func (l RealizedLot) CloseDate() date.Date { return date.FromTime(l.CloseTime) }

// ProfitLoss computes the lot's gain or loss in its native currency. A lot
// closed by a buy realizes open minus close (a short covered); a lot
// closed by a sell realizes close minus open.
func (l RealizedLot) ProfitLoss() (Money, error) {
	open := l.OpenPrice.Mul(l.Quantity)
	close := l.ClosePrice.Mul(l.Quantity)
	if l.Side == Buy {
		return open.Sub(close)
	}
	return close.Sub(open)
}

// ProfitLossHome computes the lot's gain or loss in the home currency,
// converting each leg at the rate valid on its own date.
func (l RealizedLot) ProfitLossHome(rates *Repository) (Money, error) {
	open, err := rates.ConvertToHome(l.OpenDate(), l.OpenPrice)
	if err != nil {
		return Money{}, err
	}
	close, err := rates.ConvertToHome(l.CloseDate(), l.ClosePrice)
	if err != nil {
		return Money{}, err
	}
	if l.Side == Buy {
		return open.Mul(l.Quantity).Sub(close.Mul(l.Quantity))
	}
	return close.Mul(l.Quantity).Sub(open.Mul(l.Quantity))
}
