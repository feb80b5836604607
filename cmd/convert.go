package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot"
	"github.com/taxlot/taxlot/renderer"
)

// convertCmd holds the flags for the 'convert' subcommand.
type convertCmd struct {
	list     string
	rates    string
	currency string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert a dated money list to the home currency" }
func (*convertCmd) Usage() string {
	return `tlx convert -list <list.csv> [-rates <dir>] [-c <currency>]

  Converts a headerless CSV of (date, currency, amount) rows to the home
  currency at each row's own date. Home-currency rows pass through.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.list, "list", "", "Money list (CSV: date,currency,amount)")
	f.StringVar(&c.rates, "rates", "", "Directory holding rates_<year>.csv tables")
	f.StringVar(&c.currency, "c", "", "Home currency code")
}

func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list == "" {
		fmt.Fprintln(os.Stderr, "the -list flag is required")
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.list)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening list %q: %v\n", c.list, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	list, err := taxlot.ReadMoneyList(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading list %q: %v\n", c.list, err)
		return subcommands.ExitFailure
	}

	rates := openRates(c.currency, c.rates)
	defer rates.Close()

	converted, err := taxlot.ConvertMoneyList(rates, list)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting list: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ConvertMarkdown(rates.HomeCurrency(), converted))
	return subcommands.ExitSuccess
}
