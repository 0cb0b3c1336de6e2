package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type valueCmd struct {
	app       *App
	portfolio string
	interval  string
	rng       rangeFlags
}

func (*valueCmd) Name() string     { return "value" }
func (*valueCmd) Synopsis() string { return "show a portfolio's value over time" }
func (*valueCmd) Usage() string {
	return `stockfolio value -p <portfolio> [-range 1Y] [-from <date>] [-to <date>] [-interval day]

  Prints the daily value of the portfolio. Days without a trade carry the
  previous close forward.
`
}

func (c *valueCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
	f.StringVar(&c.interval, "interval", "day", "Keep one point per day, week or month")
	c.rng.set(f)
}

func (c *valueCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.rng.parse(c.app.Valuation.Today())
	if err != nil {
		return c.app.fail(err)
	}
	val, err := c.app.Valuation.ComputePortfolioValue(ctx, c.portfolio, r)
	if err != nil {
		return c.app.fail(err)
	}
	if err := val.Downsample(c.interval); err != nil {
		return c.app.fail(err)
	}
	return c.app.output(valuationMarkdown(c.portfolio, r, val), val)
}

type benchmarkCmd struct {
	app       *App
	portfolio string
	benchmark string
	interval  string
	rng       rangeFlags
}

func (*benchmarkCmd) Name() string     { return "benchmark" }
func (*benchmarkCmd) Synopsis() string { return "compare a portfolio with a benchmark index" }
func (*benchmarkCmd) Usage() string {
	return `stockfolio benchmark -p <portfolio> [-b <ticker>] [-range 1Y] [-from <date>] [-to <date>] [-interval day]

  Prints the portfolio and benchmark growth, both rebased to 100.
`
}

func (c *benchmarkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
	f.StringVar(&c.benchmark, "b", "", "Benchmark ticker, defaults to the configured benchmark")
	f.StringVar(&c.interval, "interval", "day", "Keep one point per day, week or month")
	c.rng.set(f)
}

func (c *benchmarkCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.rng.parse(c.app.Valuation.Today())
	if err != nil {
		return c.app.fail(err)
	}
	cmp, err := c.app.Valuation.ComputeBenchmarkComparison(ctx, c.portfolio, c.benchmark, r)
	if err != nil {
		return c.app.fail(err)
	}
	if err := cmp.Downsample(c.interval); err != nil {
		return c.app.fail(err)
	}
	return c.app.output(comparisonMarkdown(c.portfolio, r, cmp), cmp)
}

type sectorsCmd struct {
	app       *App
	portfolio string
	asOf      string
}

func (*sectorsCmd) Name() string     { return "sectors" }
func (*sectorsCmd) Synopsis() string { return "show a portfolio's sector distribution" }
func (*sectorsCmd) Usage() string {
	return `stockfolio sectors -p <portfolio> [-d <date>]

  Prints the share of portfolio value in each sector on date (default today).
`
}

func (c *sectorsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
	f.StringVar(&c.asOf, "d", "", "Valuation date (YYYY-MM-DD), defaults to today")
}

func (c *sectorsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dist, err := c.app.Valuation.ComputeSectorDistribution(ctx, c.portfolio, c.asOf)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(sectorsMarkdown(c.portfolio, dist), dist)
}

type summaryCmd struct {
	app       *App
	portfolio string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a portfolio summary" }
func (*summaryCmd) Usage() string {
	return `stockfolio summary -p <portfolio>

  Displays current holding values, weights and the change over the last year.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	summary, err := c.app.Valuation.ComputePortfolioSummary(ctx, c.portfolio)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(summaryMarkdown(summary), summary)
}

type analyticsCmd struct {
	app    *App
	ticker string
	window int
	k      float64
	rng    rangeFlags
}

func (*analyticsCmd) Name() string     { return "analytics" }
func (*analyticsCmd) Synopsis() string { return "show an asset's closes with Bollinger Bands" }
func (*analyticsCmd) Usage() string {
	return `stockfolio analytics -t <ticker> [-window 20] [-k 2] [-range 1Y] [-from <date>] [-to <date>]

  Prints daily closes with Bollinger Bands, the period change and the
  annualized volatility.
`
}

func (c *analyticsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
	f.IntVar(&c.window, "window", 0, "Bollinger window in trading days, defaults to the configured window")
	f.Float64Var(&c.k, "k", 0, "Band width in standard deviations, defaults to the configured width")
	c.rng.set(f)
}

func (c *analyticsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		return c.app.fail(usageError("-t is required"))
	}
	r, err := c.rng.parse(c.app.Valuation.Today())
	if err != nil {
		return c.app.fail(err)
	}
	result, err := c.app.Valuation.ComputeAssetAnalytics(ctx, c.ticker, r, c.window, c.k)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(assetAnalyticsMarkdown(result), result)
}

type fundamentalsCmd struct {
	app    *App
	ticker string
}

func (*fundamentalsCmd) Name() string     { return "fundamentals" }
func (*fundamentalsCmd) Synopsis() string { return "show an asset's fundamentals" }
func (*fundamentalsCmd) Usage() string {
	return `stockfolio fundamentals -t <ticker>

  Prints name, sector and valuation ratios as reported by the quote provider.
`
}

func (c *fundamentalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker symbol")
}

func (c *fundamentalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		return c.app.fail(usageError("-t is required"))
	}
	f, err := c.app.Assets.GetFundamentals(ctx, c.ticker)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(fundamentalsMarkdown(f), f)
}

type maintenanceCmd struct {
	app *App
}

func (*maintenanceCmd) Name() string     { return "maintenance" }
func (*maintenanceCmd) Synopsis() string { return "check, checkpoint and back up the database now" }
func (*maintenanceCmd) Usage() string {
	return `stockfolio maintenance

  Runs the scheduled daily maintenance immediately: integrity check, WAL
  checkpoint, disk space check and backup.
`
}

func (*maintenanceCmd) SetFlags(*flag.FlagSet) {}

func (c *maintenanceCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.app.Maintenance == nil {
		return c.app.fail(usageError("maintenance is not available"))
	}
	if err := c.app.Maintenance.Run(); err != nil {
		return c.app.fail(err)
	}
	return c.app.output("Maintenance completed\n", map[string]string{"status": "completed"})
}
