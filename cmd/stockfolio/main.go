// Package main is the stockfolio command line tool. It works directly on the
// portfolio database configured for the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/aristath/stockfolio/internal/cli"
	"github.com/aristath/stockfolio/internal/config"
	"github.com/aristath/stockfolio/internal/di"
	"github.com/aristath/stockfolio/pkg/logger"
)

var format = flag.String("format", cli.FormatPretty, "Output format: pretty, markdown or json")

func main() {
	os.Exit(run())
}

func run() int {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	app := &cli.App{Out: os.Stdout, Err: os.Stderr}
	cli.Register(commander, app)

	flag.Parse()
	app.Format = *format

	// Help needs no database
	if flag.NArg() == 0 || flag.Arg(0) == "help" || flag.Arg(0) == "flags" || flag.Arg(0) == "commands" {
		return int(commander.Execute(context.Background()))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: os.Stderr,
		App:    "stockfolio",
	})

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}
	defer container.Close()

	app.Portfolios = container.PortfolioService
	app.Valuation = container.ValuationService
	app.Assets = container.AssetService
	app.Maintenance = jobs.DailyMaintenance

	return int(commander.Execute(context.Background()))
}
