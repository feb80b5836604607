package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/taxlot/taxlot"
	"github.com/taxlot/taxlot/renderer"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	report   string
	rates    string
	currency string
	year     int
	model    string
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "Start an interactive session with the AI assistant." }
func (*assistCmd) Usage() string {
	return `tlx assist [-report <report.csv>] [question]

  Start an interactive session with the AI assistant. When a report is
  given, the computed declaration is shared with the assistant so it can
  answer questions about the figures.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.report, "report", "", "Broker transaction report (CSV) to discuss")
	f.StringVar(&c.rates, "rates", "", "Directory holding rates_<year>.csv tables")
	f.StringVar(&c.currency, "c", "", "Home currency code")
	f.IntVar(&c.year, "year", time.Now().Year()-1, "Fiscal year to declare")
	f.StringVar(&c.model, "model", "gemini-2.5-flash", "Model to chat with")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	instruction := "You are a careful assistant for a personal tax-declaration tool. " +
		"You explain FIFO lot matching, exchange-rate conversion, and withholding " +
		"reconciliation. You never give binding tax advice."
	if c.report != "" {
		md, status := c.declarationMarkdown()
		if status != subcommands.ExitSuccess {
			return status
		}
		instruction += "\n\nThe user's computed declaration:\n\n" + md
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
	}
	chat, err := client.Chats.Create(ctx, c.model, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting chat:", err)
		return subcommands.ExitFailure
	}

	if f.NArg() > 0 {
		if status := ask(ctx, chat, strings.Join(f.Args(), " ")); status != subcommands.ExitSuccess {
			return status
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "exit" || line == "quit" {
			break
		}
		if status := ask(ctx, chat, line); status != subcommands.ExitSuccess {
			return status
		}
		fmt.Print("> ")
	}
	return subcommands.ExitSuccess
}

func ask(ctx context.Context, chat *genai.Chat, question string) subcommands.ExitStatus {
	resp, err := chat.Send(ctx, &genai.Part{Text: question})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error asking the assistant:", err)
		return subcommands.ExitFailure
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		fmt.Fprintln(os.Stderr, "No response from the assistant")
		return subcommands.ExitFailure
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			printMarkdown(part.Text)
		}
	}
	return subcommands.ExitSuccess
}

// declarationMarkdown computes the trade declaration to share with the
// assistant.
func (c *assistCmd) declarationMarkdown() (string, subcommands.ExitStatus) {
	log, err := newLogger(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		return "", subcommands.ExitFailure
	}
	defer log.Sync()

	in, err := os.Open(c.report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening report %q: %v\n", c.report, err)
		return "", subcommands.ExitFailure
	}
	defer in.Close()

	txs, err := taxlot.ReadTransactions(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading report %q: %v\n", c.report, err)
		return "", subcommands.ExitFailure
	}

	rates := openRates(c.currency, c.rates)
	defer rates.Close()

	agg := taxlot.NewAggregator(rates, taxlot.DefaultCountries, log)
	decl, _, err := agg.CalculateTrades(txs, c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing declaration: %v\n", err)
		return "", subcommands.ExitFailure
	}
	return renderer.TradesMarkdown(decl, c.year), subcommands.ExitSuccess
}
