// Package renderer turns declarations into markdown. It is pure string
// building; printing and styling belong to the caller.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"
	"github.com/taxlot/taxlot"
)

func TradesMarkdown(d *taxlot.TaxDeclaration, year int) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Trade Declaration %d", year))
	doc.PlainText(fmt.Sprintf("Income: %s", d.Income))
	doc.PlainText(fmt.Sprintf("Cost of income: %s", d.CostOfIncome))
	doc.PlainText(fmt.Sprintf("Other costs: %s", d.OtherCosts))
	doc.PlainText(fmt.Sprintf("Profit: %s", d.Profit()))

	countries := d.Countries()
	if len(countries) > 0 {
		doc.H2("Per Country")
		table := md.TableSet{
			Header: []string{"Country", "Code", "Income", "Cost", "Profit"},
			Rows:   make([][]string, 0, len(countries)),
		}
		for _, c := range countries {
			table.Rows = append(table.Rows, []string{
				c.Name, c.Code, c.Income.String(), c.Cost.String(), c.Profit().String(),
			})
		}
		doc.Table(table)
	}

	return doc.String()
}
