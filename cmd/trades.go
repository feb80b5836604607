package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot"
	"github.com/taxlot/taxlot/renderer"
)

// tradesCmd holds the flags for the 'trades' subcommand.
type tradesCmd struct {
	report   string
	rates    string
	currency string
	year     int
	out      string
	verbose  bool
}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "compute the yearly trade declaration" }
func (*tradesCmd) Usage() string {
	return `tlx trades -report <report.csv> [-rates <dir>] [-year <year>] [-c <currency>] [-o <results.csv>]

  Matches the report's buy/sell transactions first-in-first-out, converts
  the realized lots to the home currency, and prints the yearly trade
  declaration with its per-country breakdown.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.report, "report", "", "Broker transaction report (CSV)")
	f.StringVar(&c.rates, "rates", "", "Directory holding rates_<year>.csv tables")
	f.StringVar(&c.currency, "c", "", "Home currency code")
	f.IntVar(&c.year, "year", time.Now().Year()-1, "Fiscal year to declare")
	f.StringVar(&c.out, "o", "", "Write the per-transaction computed columns to this CSV file")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.report == "" {
		fmt.Fprintln(os.Stderr, "the -report flag is required")
		return subcommands.ExitUsageError
	}

	log, err := newLogger(c.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		return subcommands.ExitFailure
	}
	defer log.Sync()

	in, err := os.Open(c.report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening report %q: %v\n", c.report, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	txs, err := taxlot.ReadTransactions(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading report %q: %v\n", c.report, err)
		return subcommands.ExitFailure
	}

	rates := openRates(c.currency, c.rates)
	defer rates.Close()

	agg := taxlot.NewAggregator(rates, taxlot.DefaultCountries, log)
	decl, results, err := agg.CalculateTrades(txs, c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing declaration: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.out != "" {
		out, err := os.Create(c.out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		if err := taxlot.WriteTransactionResults(out, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.TradesMarkdown(decl, c.year))
	return subcommands.ExitSuccess
}
