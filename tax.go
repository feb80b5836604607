package taxlot

import (
	"slices"

	"github.com/taxlot/taxlot/date"
	"go.uber.org/zap"
)

// CountryAggregate is the per-country sub-declaration bucket: foreign
// income and cost attributed to one listing country.
type CountryAggregate struct {
	Country
	Income Money
	Cost   Money
}

// Profit returns the country's income minus cost, floored at zero: only
// positive foreign income counts toward the sub-declaration.
func (c *CountryAggregate) Profit() Money {
	p, err := c.Income.Sub(c.Cost)
	if err != nil || p.IsNegative() {
		return Zero(c.Income.Currency())
	}
	return p
}

// TaxDeclaration is the yearly total of realized trading results in the
// home currency.
type TaxDeclaration struct {
	Income       Money
	CostOfIncome Money
	OtherCosts   Money

	countries    map[string]*CountryAggregate
	countryOrder []string
}

// NewTaxDeclaration returns an empty declaration in the given currency.
func NewTaxDeclaration(home string) *TaxDeclaration {
	return &TaxDeclaration{
		Income:       Zero(home),
		CostOfIncome: Zero(home),
		OtherCosts:   Zero(home),
		countries:    make(map[string]*CountryAggregate),
	}
}

// Profit returns income minus all costs. It may be negative.
func (d *TaxDeclaration) Profit() Money {
	costs, err := d.CostOfIncome.Add(d.OtherCosts)
	if err != nil {
		return Zero(d.Income.Currency())
	}
	p, err := d.Income.Sub(costs)
	if err != nil {
		return Zero(d.Income.Currency())
	}
	return p
}

// Countries returns the per-country aggregates in first-attribution order.
func (d *TaxDeclaration) Countries() []*CountryAggregate {
	out := make([]*CountryAggregate, 0, len(d.countryOrder))
	for _, code := range d.countryOrder {
		out = append(out, d.countries[code])
	}
	return out
}

// addProfitLoss folds one home-currency (cost, income) pair into the
// totals and the country bucket.
func (d *TaxDeclaration) addProfitLoss(c Country, cost, income Money) error {
	var err error
	if d.CostOfIncome, err = d.CostOfIncome.Add(cost); err != nil {
		return err
	}
	if d.Income, err = d.Income.Add(income); err != nil {
		return err
	}
	agg, ok := d.countries[c.Code]
	if !ok {
		agg = &CountryAggregate{
			Country: c,
			Income:  Zero(income.Currency()),
			Cost:    Zero(cost.Currency()),
		}
		d.countries[c.Code] = agg
		d.countryOrder = append(d.countryOrder, c.Code)
	}
	if agg.Cost, err = agg.Cost.Add(cost); err != nil {
		return err
	}
	agg.Income, err = agg.Income.Add(income)
	return err
}

func (d *TaxDeclaration) addOtherCosts(costs Money) error {
	var err error
	d.OtherCosts, err = d.OtherCosts.Add(costs)
	return err
}

// TransactionResult carries the computed fields appended to one broker
// report row. Pointer fields are nil when the row produced no figure.
type TransactionResult struct {
	OrderID    string
	OrderState int
	ISIN       string
	// ComputedPL is the sum of the row's matched lots, native currency.
	ComputedPL *Money
	// ComputedPLHome is the home-currency equivalent; on a reconciliation
	// fallback it holds the broker figure converted at the close date.
	ComputedPLHome *Money
	// ReportedPLHome is the broker-reported figure converted at the row's
	// date, set only when the reported figure is nonzero.
	ReportedPLHome *Money
}

// Aggregator folds realized lots and fees of one fiscal year into a
// TaxDeclaration, reconciling computed results against broker-reported
// ones per closing order.
type Aggregator struct {
	rates     *Repository
	countries CountryTable
	log       *zap.SugaredLogger
}

// NewAggregator returns an aggregator converting into the repository's
// home currency and resolving listing countries through the given table.
func NewAggregator(rates *Repository, countries CountryTable, log *zap.SugaredLogger) *Aggregator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Aggregator{rates: rates, countries: countries, log: log}
}

// CalculateTrades runs the whole trade pipeline for one fiscal year:
// grouping per instrument, chronological sort, FIFO matching, filtering
// lots to the year they were closed, and aggregation.
func (a *Aggregator) CalculateTrades(txs []Transaction, year int) (*TaxDeclaration, []TransactionResult, error) {
	grouping := GroupByISIN(txs)
	lotsByISIN := make(map[string][]RealizedLot)
	for _, isin := range grouping.ISINs() {
		instrument := slices.Clone(grouping.Get(isin))
		SortChronological(instrument)
		lots, open := MatchInstrument(instrument)
		if len(open) > 0 {
			a.log.Debugw("open position carried past matching",
				"isin", isin, "legs", len(open), "side", open[0].Side)
		}
		for _, lot := range lots {
			if lot.CloseDate().Year() == year {
				lotsByISIN[isin] = append(lotsByISIN[isin], lot)
			}
		}
	}
	return a.AggregateYear(txs, lotsByISIN, year)
}

// AggregateYear converts and sums realized lots into the yearly
// declaration. lotsByISIN holds each instrument's lots already filtered to
// closings within the fiscal year; txs is the full report, in report
// order, used for fee costs and for the per-row reconciliation.
func (a *Aggregator) AggregateYear(txs []Transaction, lotsByISIN map[string][]RealizedLot, year int) (*TaxDeclaration, []TransactionResult, error) {
	decl := NewTaxDeclaration(a.rates.HomeCurrency())

	// Every fee dated in the fiscal year is a cost, matched or not.
	if err := a.addFees(decl, txs, year); err != nil {
		return nil, nil, err
	}

	results := make([]TransactionResult, 0, len(txs))
	for _, tx := range txs {
		result, err := a.reconcileRow(decl, tx, lotsByISIN[tx.ISIN])
		if err != nil {
			return nil, nil, err
		}
		results = append(results, result)
	}
	return decl, results, nil
}

func (a *Aggregator) addFees(decl *TaxDeclaration, txs []Transaction, year int) error {
	for _, tx := range txs {
		if tx.Time.Year() != year {
			continue
		}
		fee, err := a.rates.ConvertToHome(date.FromTime(tx.Time), tx.Fee)
		if err != nil {
			return err
		}
		if err := decl.addOtherCosts(fee); err != nil {
			return err
		}
	}
	return nil
}

// reconcileRow attributes one report row's lots to the declaration and
// produces its computed columns. Rows that close nothing only get their
// reported figure converted.
func (a *Aggregator) reconcileRow(decl *TaxDeclaration, tx Transaction, lots []RealizedLot) (TransactionResult, error) {
	result := TransactionResult{OrderID: tx.OrderID, OrderState: tx.OrderState, ISIN: tx.ISIN}
	on := date.FromTime(tx.Time)

	if !tx.ReportedPL.IsZero() {
		reported, err := a.rates.ConvertToHome(on, tx.ReportedPL)
		if err != nil {
			return TransactionResult{}, err
		}
		result.ReportedPLHome = &reported
	}

	group := lotsForOrder(lots, tx)
	if len(group) == 0 {
		return result, nil
	}

	computed, computedHome, err := sumProfitLoss(group, a.rates)
	if err != nil {
		return TransactionResult{}, err
	}
	result.ComputedPL = &computed

	symbol, err := ParseSymbolID(tx.SymbolID)
	if err != nil {
		return TransactionResult{}, err
	}
	country, err := a.countries.Country(symbol)
	if err != nil {
		return TransactionResult{}, err
	}

	if !tx.ReportedPL.EqualInScale(computed, 0) {
		// Broker and lot math disagree (splits, fractional adjustments).
		// Discard the per-lot attribution: convert the broker figure at
		// the close date only, and derive the implied cost from it.
		a.log.Warnw("computed profit/loss diverges from broker report, using close-date rate fallback",
			"isin", tx.ISIN,
			"orderID", tx.OrderID,
			"orderState", tx.OrderState,
			"reported", tx.ReportedPL.String(),
			"computed", computed.String(),
		)
		fallbackHome, err := a.rates.ConvertToHome(on, tx.ReportedPL)
		if err != nil {
			return TransactionResult{}, err
		}
		result.ComputedPLHome = &fallbackHome

		income := tx.Price.Mul(tx.Quantity)
		cost, err := income.Sub(tx.ReportedPL)
		if err != nil {
			return TransactionResult{}, err
		}
		rate, err := a.rates.Rate(on, income.Currency())
		if err != nil {
			return TransactionResult{}, err
		}
		home := a.rates.HomeCurrency()
		if err := decl.addProfitLoss(country, rate.Convert(cost, home), rate.Convert(income, home)); err != nil {
			return TransactionResult{}, err
		}
		return result, nil
	}

	result.ComputedPLHome = &computedHome
	for _, lot := range group {
		cost, err := a.rates.ConvertToHome(lot.OpenDate(), lot.OpenPrice.Mul(lot.Quantity))
		if err != nil {
			return TransactionResult{}, err
		}
		income, err := a.rates.ConvertToHome(lot.CloseDate(), lot.ClosePrice.Mul(lot.Quantity))
		if err != nil {
			return TransactionResult{}, err
		}
		if err := decl.addProfitLoss(country, cost, income); err != nil {
			return TransactionResult{}, err
		}
	}
	return result, nil
}

// lotsForOrder selects the lots closed by one report row. A lot belongs
// to the row matching its closing order id, state and side; the side
// check keeps an opening row that shares ids with its close (brokers
// leave both blank on manual fills) from re-attributing the group.
func lotsForOrder(lots []RealizedLot, tx Transaction) []RealizedLot {
	var group []RealizedLot
	for _, lot := range lots {
		if lot.Side == tx.Side && lot.OrderID == tx.OrderID && lot.OrderState == tx.OrderState {
			group = append(group, lot)
		}
	}
	return group
}

// sumProfitLoss totals a lot group's profit/loss in native and home
// currency, each lot's legs converted at their own dates.
func sumProfitLoss(lots []RealizedLot, rates *Repository) (native, home Money, err error) {
	for i, lot := range lots {
		pl, err := lot.ProfitLoss()
		if err != nil {
			return Money{}, Money{}, err
		}
		plHome, err := lot.ProfitLossHome(rates)
		if err != nil {
			return Money{}, Money{}, err
		}
		if i == 0 {
			native, home = pl, plHome
			continue
		}
		if native, err = native.Add(pl); err != nil {
			return Money{}, Money{}, err
		}
		if home, err = home.Add(plHome); err != nil {
			return Money{}, Money{}, err
		}
	}
	return native, home, nil
}
