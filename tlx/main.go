package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/taxlot/taxlot/cmd"
)

func main() {
	if env := os.Getenv("TLX_ENV_FILE"); env != "" {
		if err := godotenv.Load(env); err != nil {
			log.Printf("warning, cannot load env file %q: %v", env, err)
		}
	} else {
		// best effort on the default .env
		godotenv.Load()
	}

	// shell completion, a no-op outside of completion mode
	completion().Complete("tlx")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func completion() *complete.Command {
	files := predict.Files("*")
	dirs := predict.Dirs("*")
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"trades": {Flags: map[string]complete.Predictor{
				"report": files, "rates": dirs, "c": predict.Nothing, "year": predict.Nothing, "o": files, "v": predict.Nothing,
			}},
			"dividends": {Flags: map[string]complete.Predictor{
				"report": files, "rates": dirs, "c": predict.Nothing, "statutory-rate": predict.Nothing, "v": predict.Nothing,
			}},
			"convert": {Flags: map[string]complete.Predictor{
				"list": files, "rates": dirs, "c": predict.Nothing,
			}},
			"topic": {Args: predict.Set{"readme", "trades", "dividends", "rates"}},
			"assist": {Flags: map[string]complete.Predictor{
				"report": files, "rates": dirs, "c": predict.Nothing, "year": predict.Nothing, "model": predict.Nothing,
			}},
		},
	}
}
