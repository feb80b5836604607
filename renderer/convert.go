package renderer

import (
	"bytes"

	md "github.com/nao1215/markdown"
	"github.com/taxlot/taxlot"
)

func ConvertMarkdown(home string, list []taxlot.DatedMoney) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Converted to " + home)
	table := md.TableSet{
		Header: []string{"Date", "Amount"},
		Rows:   make([][]string, 0, len(list)),
	}
	for _, dm := range list {
		table.Rows = append(table.Rows, []string{dm.Date.String(), dm.Money.String()})
	}
	doc.Table(table)

	return doc.String()
}
