package taxlot

import (
	"sort"
	"time"
)

// Side is the direction of a transaction.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide recognizes a broker-report side string.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", &MalformedTransactionError{Reason: "unrecognized transaction side " + s}
}

// Transaction is one equity trade from the broker's report. Immutable;
// matching works on copies.
type Transaction struct {
	Side     Side
	Time     time.Time
	SymbolID string
	ISIN     string
	Price    Money
	Quantity Quantity
	Fee      Money
	// ReportedPL is the profit/loss the broker attributes to this
	// transaction, in the price currency. Zero on opening trades.
	ReportedPL Money
	OrderID    string
	// OrderState disambiguates same-timestamp partial fills of one order;
	// it is the secondary chronological sort key.
	OrderState int
}

// SortChronological orders transactions by timestamp, then order state.
// The sort is stable so equal keys keep their report order.
func SortChronological(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Time.Equal(txs[j].Time) {
			return txs[i].OrderState < txs[j].OrderState
		}
		return txs[i].Time.Before(txs[j].Time)
	})
}

// Grouping is an order-preserving grouping of transactions by ISIN:
// instruments appear in first-seen order for reproducible output.
type Grouping struct {
	order []string
	byID  map[string][]Transaction
}

// GroupByISIN groups transactions per instrument. Rows without an ISIN are
// skipped.
func GroupByISIN(txs []Transaction) *Grouping {
	g := &Grouping{byID: make(map[string][]Transaction)}
	for _, tx := range txs {
		if tx.ISIN == "" {
			continue
		}
		if _, ok := g.byID[tx.ISIN]; !ok {
			g.order = append(g.order, tx.ISIN)
		}
		g.byID[tx.ISIN] = append(g.byID[tx.ISIN], tx)
	}
	return g
}

// ISINs returns the instrument ids in first-seen order.
func (g *Grouping) ISINs() []string { return g.order }

// Get returns the transactions of one instrument.
func (g *Grouping) Get(isin string) []Transaction { return g.byID[isin] }

// openQueue is the FIFO queue of unmatched open legs of one instrument.
// It is an index-based deque over a contiguous buffer: popping moves the
// head, and pushing back a partially consumed leg is a constant-size
// record replace at the head, never a shift.
type openQueue struct {
	legs []Transaction
	head int
}

func (q *openQueue) empty() bool            { return q.head >= len(q.legs) }
func (q *openQueue) front() *Transaction    { return &q.legs[q.head] }
func (q *openQueue) push(tx Transaction)    { q.legs = append(q.legs, tx) }
func (q *openQueue) pop() Transaction       { tx := q.legs[q.head]; q.head++; return tx }
func (q *openQueue) pushFront(tx Transaction) {
	q.head--
	q.legs[q.head] = tx
}
func (q *openQueue) remainder() []Transaction {
	if q.empty() {
		return nil
	}
	out := make([]Transaction, len(q.legs)-q.head)
	copy(out, q.legs[q.head:])
	return out
}

// MatchInstrument runs the FIFO matching pass over one instrument's
// transactions, already sorted chronologically. It returns the realized
// lots in emission order (oldest open leg first for each closing
// transaction) and the leftover open legs, all sharing one side.
//
// It is a pure function: the input slice is not modified.
func MatchInstrument(txs []Transaction) (lots []RealizedLot, open []Transaction) {
	q := &openQueue{}
	for _, tx := range txs {
		if q.empty() || q.front().Side == tx.Side {
			// Same-direction exposure accumulates.
			q.push(tx)
			continue
		}
		lots = reduce(q, tx, lots)
	}
	return lots, q.remainder()
}

// reduce closes exposure against the queue with one opposing transaction,
// emitting a lot per consumed open leg.
func reduce(q *openQueue, tx Transaction, lots []RealizedLot) []RealizedLot {
	remaining := tx.Quantity
	for !q.empty() && !remaining.IsZero() {
		leg := q.pop()
		switch {
		case leg.Quantity.Equal(remaining):
			lots = append(lots, newLot(leg, tx, leg.Quantity))
			remaining = remaining.Sub(leg.Quantity)
		case leg.Quantity.GreaterThan(remaining):
			lots = append(lots, newLot(leg, tx, remaining))
			leg.Quantity = leg.Quantity.Sub(remaining)
			q.pushFront(leg)
			remaining = Q(0)
		default: // leg.Quantity < remaining
			lots = append(lots, newLot(leg, tx, leg.Quantity))
			remaining = remaining.Sub(leg.Quantity)
			if q.empty() && !remaining.IsZero() {
				// Over-closed: the direction flips to the incoming side.
				flipped := tx
				flipped.Quantity = remaining
				q.push(flipped)
				return lots
			}
		}
	}
	return lots
}

func newLot(open, close Transaction, quantity Quantity) RealizedLot {
	return RealizedLot{
		OpenTime:   open.Time,
		OpenPrice:  open.Price,
		CloseTime:  close.Time,
		ClosePrice: close.Price,
		Quantity:   quantity,
		Side:       close.Side,
		OrderID:    close.OrderID,
		OrderState: close.OrderState,
	}
}
