package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type listCmd struct {
	app *App
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list portfolios" }
func (*listCmd) Usage() string {
	return `stockfolio list

  Lists every portfolio with its id.
`
}

func (*listCmd) SetFlags(*flag.FlagSet) {}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	portfolios, err := c.app.Portfolios.ListPortfolios(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(portfolioListMarkdown(portfolios), portfolios)
}

type createCmd struct {
	app  *App
	name string
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "create an empty portfolio" }
func (*createCmd) Usage() string {
	return `stockfolio create -name <name>

  Creates an empty portfolio and prints its id.
`
}

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Portfolio name")
}

func (c *createCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := c.app.Portfolios.CreatePortfolio(ctx, c.name)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(portfolioMarkdown(p), p)
}

type showCmd struct {
	app       *App
	portfolio string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "show a portfolio's holdings" }
func (*showCmd) Usage() string {
	return `stockfolio show -p <portfolio>

  Shows the holdings of a portfolio in display order.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := c.app.Portfolios.GetPortfolio(ctx, c.portfolio)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(portfolioMarkdown(p), p)
}

type deleteCmd struct {
	app       *App
	portfolio string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a portfolio and its holdings" }
func (*deleteCmd) Usage() string {
	return `stockfolio delete -p <portfolio>

  Deletes a portfolio with all of its holdings.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio id")
}

func (c *deleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Portfolios.DeletePortfolio(ctx, c.portfolio); err != nil {
		return c.app.fail(err)
	}
	return c.app.output("Deleted `"+c.portfolio+"`\n", map[string]string{"deleted": c.portfolio})
}

// holdingFlags are shared by add, sell and remove
type holdingFlags struct {
	portfolio string
	ticker    string
	quantity  string
}

func (h *holdingFlags) set(f *flag.FlagSet, withQuantity bool) {
	f.StringVar(&h.portfolio, "p", "", "Portfolio id")
	f.StringVar(&h.ticker, "t", "", "Ticker symbol")
	if withQuantity {
		f.StringVar(&h.quantity, "q", "", "Quantity (decimal)")
	}
}

func (h *holdingFlags) parseQuantity() (decimal.Decimal, error) {
	if h.quantity == "" {
		return decimal.Zero, usageError("-q is required")
	}
	q, err := decimal.NewFromString(h.quantity)
	if err != nil {
		return decimal.Zero, usageError("bad quantity %q", h.quantity)
	}
	return q, nil
}

type addCmd struct {
	app        *App
	flags      holdingFlags
	acquiredOn string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding to a portfolio" }
func (*addCmd) Usage() string {
	return `stockfolio add -p <portfolio> -t <ticker> -q <quantity> [-d <date>]

  Adds quantity of ticker acquired on date (default today). Each purchase is
  kept as its own lot; buying again on the same date tops that lot up.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	c.flags.set(f, true)
	f.StringVar(&c.acquiredOn, "d", "", "Acquisition date (YYYY-MM-DD), defaults to today")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	qty, err := c.flags.parseQuantity()
	if err != nil {
		return c.app.fail(err)
	}
	h, err := c.app.Portfolios.AddHolding(ctx, c.flags.portfolio, c.flags.ticker, qty, c.acquiredOn)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(holdingMarkdown("Added", h), h)
}

type sellCmd struct {
	app   *App
	flags holdingFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "reduce a holding" }
func (*sellCmd) Usage() string {
	return `stockfolio sell -p <portfolio> -t <ticker> -q <quantity>

  Reduces a holding by quantity, most recent lot first. Selling everything
  removes the holding.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	c.flags.set(f, true)
}

func (c *sellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	qty, err := c.flags.parseQuantity()
	if err != nil {
		return c.app.fail(err)
	}
	h, err := c.app.Portfolios.SellHolding(ctx, c.flags.portfolio, c.flags.ticker, qty)
	if err != nil {
		return c.app.fail(err)
	}
	return c.app.output(holdingMarkdown("Sold", h), h)
}

type removeCmd struct {
	app   *App
	flags holdingFlags
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a holding" }
func (*removeCmd) Usage() string {
	return `stockfolio remove -p <portfolio> -t <ticker>

  Removes every lot of a holding regardless of quantity.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	c.flags.set(f, false)
}

func (c *removeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Portfolios.RemoveHolding(ctx, c.flags.portfolio, c.flags.ticker); err != nil {
		return c.app.fail(err)
	}
	return c.app.output("Removed **"+c.flags.ticker+"**\n", map[string]string{"removed": c.flags.ticker})
}
