// Package cmd implements the CLI application to compute yearly tax
// declarations from broker reports.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/taxlot/taxlot"
	"go.uber.org/zap"
)

// Commands lists the subcommands in help order.
// A main package registers them on its commander and executes the
// user-selected one.
var Commands = []subcommands.Command{
	&tradesCmd{},
	&dividendsCmd{},
	&convertCmd{},
	&topicCmd{},
	&assistCmd{},
}

// Environment variables shared by the subcommands; flags take precedence.
const (
	EnvHomeCurrency  = "TLX_HOME_CURRENCY"
	EnvRatesDir      = "TLX_RATES_DIR"
	EnvStatutoryRate = "TLX_STATUTORY_RATE"
)

const defaultHomeCurrency = "PLN"

// envOr returns the environment value, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the CLI logger. Non-verbose runs only surface
// warnings, which keeps the reconciliation divergences visible.
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

// openRates builds the rate repository for the given flags.
func openRates(currency, dir string) *taxlot.Repository {
	if currency == "" {
		currency = envOr(EnvHomeCurrency, defaultHomeCurrency)
	}
	if dir == "" {
		dir = envOr(EnvRatesDir, ".")
	}
	return taxlot.NewRepository(currency, taxlot.DirSource(dir))
}

// printMarkdown renders markdown to the terminal, falling back to the
// raw text when the terminal renderer is unavailable.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
