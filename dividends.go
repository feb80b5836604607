package taxlot

import (
	"github.com/taxlot/taxlot/date"
	"go.uber.org/zap"
)

// DividendEvent is one dividend payment from the broker's report.
type DividendEvent struct {
	TransactionID string
	PayDate       date.Date
	// Gross is the dividend before source withholding, in the paying
	// currency.
	Gross Money
	// SourceTaxPercent is the withholding rate applied at the source.
	SourceTaxPercent Percent
	// RollbackOf holds the cancelled parent's transaction id when this
	// event is a cancellation, empty otherwise.
	RollbackOf string
}

// IsRollback reports whether the event cancels another one.
func (e DividendEvent) IsRollback() bool { return e.RollbackOf != "" }

// FilterRollbacks drops cancellation events and the events they cancel.
// Two passes, so a rollback may appear before or after its parent in the
// report.
func FilterRollbacks(events []DividendEvent) []DividendEvent {
	cancelled := make(map[string]bool)
	for _, e := range events {
		if e.IsRollback() {
			cancelled[e.RollbackOf] = true
		}
	}
	kept := make([]DividendEvent, 0, len(events))
	for _, e := range events {
		if e.IsRollback() || cancelled[e.TransactionID] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// DividendResult is the withholding reconciliation of one dividend event.
// All Money fields are in the home currency.
type DividendResult struct {
	Event        DividendEvent
	DividendHome Money
	// StatutoryTax is the home statutory rate applied to the dividend.
	StatutoryTax Money
	// RealSourceTaxPaid is what was actually withheld at the source.
	RealSourceTaxPaid Money
	// DeclaredSourceTaxPaid is the withheld amount creditable against the
	// statutory tax, capped at the statutory amount.
	DeclaredSourceTaxPaid Money
	// TaxPercentToPay is the rate gap still owed at home, zero when the
	// source withheld at or above the statutory rate.
	TaxPercentToPay Percent
	TaxStillOwed    Money
}

// DividendDeclaration is the yearly dividend withholding reconciliation,
// summed over all non-cancelled events, in the home currency.
type DividendDeclaration struct {
	TotalDividendIncome        Money
	TotalStatutoryTax          Money
	TotalRealSourceTaxPaid     Money
	TotalDeclaredSourceTaxPaid Money
}

// Difference returns statutory tax minus the declared source tax credit.
func (d *DividendDeclaration) Difference() Money {
	diff, err := d.TotalStatutoryTax.Sub(d.TotalDeclaredSourceTaxPaid)
	if err != nil {
		return Zero(d.TotalStatutoryTax.Currency())
	}
	return diff
}

// TaxToPay returns the remaining dividend tax due, floored at zero.
func (d *DividendDeclaration) TaxToPay() Money {
	diff := d.Difference()
	if diff.IsNegative() {
		return Zero(diff.Currency())
	}
	return diff
}

// DefaultStatutoryRate is the home statutory dividend tax rate applied
// when no rate is configured.
var DefaultStatutoryRate = P(19)

// DividendCalculator reconciles source withholding against the home
// statutory dividend tax, event by event.
type DividendCalculator struct {
	rates     *Repository
	statutory Percent
	log       *zap.SugaredLogger
}

// NewDividendCalculator returns a calculator converting into the
// repository's home currency. A zero statutory rate falls back to
// DefaultStatutoryRate.
func NewDividendCalculator(rates *Repository, statutory Percent, log *zap.SugaredLogger) *DividendCalculator {
	if statutory.IsZero() {
		statutory = DefaultStatutoryRate
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DividendCalculator{rates: rates, statutory: statutory, log: log}
}

// Aggregate reconciles all events into a declaration. Cancellations and
// their parents are dropped first; the rest are converted at their own pay
// dates and summed.
func (c *DividendCalculator) Aggregate(events []DividendEvent) (*DividendDeclaration, []DividendResult, error) {
	home := c.rates.HomeCurrency()
	decl := &DividendDeclaration{
		TotalDividendIncome:        Zero(home),
		TotalStatutoryTax:          Zero(home),
		TotalRealSourceTaxPaid:     Zero(home),
		TotalDeclaredSourceTaxPaid: Zero(home),
	}

	kept := FilterRollbacks(events)
	if n := len(events) - len(kept); n > 0 {
		c.log.Debugw("dropped cancelled dividend events", "count", n)
	}

	results := make([]DividendResult, 0, len(kept))
	for _, e := range kept {
		result, err := c.reconcile(e)
		if err != nil {
			return nil, nil, err
		}
		if err := decl.add(result); err != nil {
			return nil, nil, err
		}
		results = append(results, result)
	}
	return decl, results, nil
}

// reconcile computes one event's withholding figures in home currency.
func (c *DividendCalculator) reconcile(e DividendEvent) (DividendResult, error) {
	dividendHome, err := c.rates.ConvertToHome(e.PayDate, e.Gross)
	if err != nil {
		return DividendResult{}, err
	}
	result := DividendResult{
		Event:             e,
		DividendHome:      dividendHome,
		StatutoryTax:      dividendHome.Percent(c.statutory),
		RealSourceTaxPaid: dividendHome.Percent(e.SourceTaxPercent),
		TaxStillOwed:      Zero(dividendHome.Currency()),
	}
	if e.SourceTaxPercent.LessThan(c.statutory) {
		// Under-withheld at the source: the gap is owed at home, and the
		// full source withholding counts as the credit.
		result.TaxPercentToPay = c.statutory.Sub(e.SourceTaxPercent)
		result.TaxStillOwed = dividendHome.Percent(result.TaxPercentToPay)
		result.DeclaredSourceTaxPaid = result.RealSourceTaxPaid
		return result, nil
	}
	// Withheld at or above the statutory rate: nothing more is owed, but
	// the creditable amount is capped at the statutory tax.
	result.DeclaredSourceTaxPaid = result.StatutoryTax
	return result, nil
}

func (d *DividendDeclaration) add(r DividendResult) error {
	var err error
	if d.TotalDividendIncome, err = d.TotalDividendIncome.Add(r.DividendHome); err != nil {
		return err
	}
	if d.TotalStatutoryTax, err = d.TotalStatutoryTax.Add(r.StatutoryTax); err != nil {
		return err
	}
	if d.TotalRealSourceTaxPaid, err = d.TotalRealSourceTaxPaid.Add(r.RealSourceTaxPaid); err != nil {
		return err
	}
	d.TotalDeclaredSourceTaxPaid, err = d.TotalDeclaredSourceTaxPaid.Add(r.DeclaredSourceTaxPaid)
	return err
}
