package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/taxlot/taxlot"
)

func DividendsMarkdown(d *taxlot.DividendDeclaration, results []taxlot.DividendResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Dividend Declaration")
	doc.PlainText(fmt.Sprintf("Dividend income: %s", d.TotalDividendIncome))
	doc.PlainText(fmt.Sprintf("Statutory tax: %s", d.TotalStatutoryTax))
	doc.PlainText(fmt.Sprintf("Source tax paid: %s", d.TotalRealSourceTaxPaid))
	doc.PlainText(fmt.Sprintf("Source tax declared: %s", d.TotalDeclaredSourceTaxPaid))
	doc.PlainText(fmt.Sprintf("Tax to pay: %s", d.TaxToPay()))

	if len(results) > 0 {
		doc.H2("Events")
		table := md.TableSet{
			Header: []string{"Date", "Gross", "Dividend", "Source %", "Source Tax", "Declared", "Still Owed"},
			Rows:   make([][]string, 0, len(results)),
		}
		for _, r := range results {
			table.Rows = append(table.Rows, []string{
				r.Event.PayDate.String(),
				r.Event.Gross.String(),
				r.DividendHome.String(),
				r.Event.SourceTaxPercent.String(),
				r.RealSourceTaxPaid.String(),
				r.DeclaredSourceTaxPaid.String(),
				r.TaxStillOwed.String(),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
