// Package cli implements the stockfolio command line subcommands.
package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/analytics"
	"github.com/aristath/stockfolio/internal/modules/assets"
	"github.com/aristath/stockfolio/internal/modules/charts"
	"github.com/aristath/stockfolio/internal/modules/portfolio"
	"github.com/aristath/stockfolio/internal/modules/valuation"
	"github.com/aristath/stockfolio/internal/scheduler"
)

// Output formats selectable with -format
const (
	FormatPretty   = "pretty"   // glamour-rendered markdown
	FormatMarkdown = "markdown" // raw markdown
	FormatJSON     = "json"
)

// App holds what the subcommands operate on
type App struct {
	Portfolios  *portfolio.Service
	Valuation   *valuation.Service
	Assets      *assets.Service
	Maintenance scheduler.Job // nil disables the maintenance command

	Out    io.Writer
	Err    io.Writer
	Format string
}

// Register adds every subcommand to the commander
func Register(c *subcommands.Commander, app *App) {
	c.Register(&listCmd{app: app}, "portfolios")
	c.Register(&createCmd{app: app}, "portfolios")
	c.Register(&showCmd{app: app}, "portfolios")
	c.Register(&deleteCmd{app: app}, "portfolios")

	c.Register(&addCmd{app: app}, "holdings")
	c.Register(&sellCmd{app: app}, "holdings")
	c.Register(&removeCmd{app: app}, "holdings")

	c.Register(&valueCmd{app: app}, "reports")
	c.Register(&benchmarkCmd{app: app}, "reports")
	c.Register(&sectorsCmd{app: app}, "reports")
	c.Register(&summaryCmd{app: app}, "reports")
	c.Register(&analyticsCmd{app: app}, "assets")
	c.Register(&fundamentalsCmd{app: app}, "assets")

	c.Register(&maintenanceCmd{app: app}, "admin")
}

// render writes md (or v as JSON) in the configured format
func (a *App) render(md string, v interface{}) error {
	switch a.Format {
	case FormatJSON:
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatMarkdown:
		_, err := io.WriteString(a.Out, md)
		return err
	default:
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(120),
		)
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		out, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		_, err = io.WriteString(a.Out, out)
		return err
	}
}

// fail reports err and maps it to an exit status. Bad input is a usage error.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "Error: %v\n", err)
	switch {
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, analytics.ErrInvalidArgument), errors.Is(err, charts.ErrUnknownInterval),
		errors.Is(err, errUsage):
		return subcommands.ExitUsageError
	default:
		return subcommands.ExitFailure
	}
}

// output renders and converts a write failure into an exit status
func (a *App) output(md string, v interface{}) subcommands.ExitStatus {
	if err := a.render(md, v); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}

var errUsage = errors.New("usage")

func usageError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// rangeFlags are the date range flags shared by the report commands
type rangeFlags struct {
	from   string
	to     string
	period string
}

func (r *rangeFlags) set(f *flag.FlagSet) {
	f.StringVar(&r.from, "from", "", "Start date (YYYY-MM-DD). Defaults to -range before -to.")
	f.StringVar(&r.to, "to", "", "End date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&r.period, "range", "1Y", "Period ending on -to when -from is empty: 1M, 3M, 6M, 1Y, 5Y, 10Y")
}

func (r *rangeFlags) parse(today string) (domain.DateRange, error) {
	return domain.ParseDateRange(r.from, r.to, r.period, today)
}
