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

// dividendsCmd holds the flags for the 'dividends' subcommand.
type dividendsCmd struct {
	report    string
	rates     string
	currency  string
	statutory string
	verbose   bool
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "reconcile dividend withholding tax" }
func (*dividendsCmd) Usage() string {
	return `tlx dividends -report <dividends.csv> [-rates <dir>] [-c <currency>] [-statutory-rate <percent>]

  Converts every dividend at its payment date, reconciles the source
  withholding against the statutory rate, and prints the dividend
  declaration. Cancelled events are dropped.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.report, "report", "", "Broker dividend report (CSV)")
	f.StringVar(&c.rates, "rates", "", "Directory holding rates_<year>.csv tables")
	f.StringVar(&c.currency, "c", "", "Home currency code")
	f.StringVar(&c.statutory, "statutory-rate", "", "Statutory dividend tax rate in percent (default 19)")
	f.BoolVar(&c.verbose, "v", false, "Verbose logging")
}

func (c *dividendsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.report == "" {
		fmt.Fprintln(os.Stderr, "the -report flag is required")
		return subcommands.ExitUsageError
	}

	rate := c.statutory
	if rate == "" {
		rate = envOr(EnvStatutoryRate, "")
	}
	statutory := taxlot.ZeroPercent
	if rate != "" {
		var err error
		if statutory, err = taxlot.ParsePercent(rate); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing statutory rate %q: %v\n", rate, err)
			return subcommands.ExitUsageError
		}
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

	events, err := taxlot.ReadDividends(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading report %q: %v\n", c.report, err)
		return subcommands.ExitFailure
	}

	rates := openRates(c.currency, c.rates)
	defer rates.Close()

	calc := taxlot.NewDividendCalculator(rates, statutory, log)
	decl, results, err := calc.Aggregate(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing declaration: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.DividendsMarkdown(decl, results))
	return subcommands.ExitSuccess
}
