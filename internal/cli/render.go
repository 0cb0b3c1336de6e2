package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/aristath/stockfolio/internal/domain"
	"github.com/aristath/stockfolio/internal/modules/analytics"
	"github.com/aristath/stockfolio/internal/modules/valuation"
)

// The renderers below produce GitHub-flavored markdown; glamour turns it
// into terminal output.

func portfolioListMarkdown(portfolios []domain.Portfolio) string {
	var b strings.Builder
	b.WriteString("# Portfolios\n\n")
	if len(portfolios) == 0 {
		b.WriteString("_No portfolios yet._\n")
		return b.String()
	}

	b.WriteString("| ID | Name | Created |\n|---|---|---|\n")
	for _, p := range portfolios {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", p.ID, escape(p.Name), domain.FormatDate(p.CreatedAt))
	}
	return b.String()
}

func portfolioMarkdown(p *domain.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n`%s`\n\n", escape(p.Name), p.ID)
	if len(p.Holdings) == 0 {
		b.WriteString("_No holdings._\n")
		return b.String()
	}

	b.WriteString("| Ticker | Name | Sector | Quantity | Acquired |\n|---|---|---|---:|---|\n")
	for _, h := range p.Holdings {
		name := h.Ticker
		if h.Asset != nil && h.Asset.Name != "" {
			name = h.Asset.Name
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", h.Ticker, escape(name), h.Sector(), h.Quantity, h.AcquiredOn)
	}
	return b.String()
}

func holdingMarkdown(action string, h *domain.Holding) string {
	return fmt.Sprintf("%s **%s**: %s held since %s\n", action, h.Ticker, h.Quantity, h.AcquiredOn)
}

func valuationMarkdown(portfolioID string, r domain.DateRange, val *valuation.Valuation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Value of `%s`\n\n%s to %s\n\n", portfolioID, r.Start, r.End)

	if len(val.Series) > 0 {
		change := analytics.PeriodChange(val.Series)
		fmt.Fprintf(&b, "**%s** on %s (%s)\n\n", domain.FormatUSD(change.End), change.To, formatChange(change, true))
	}

	b.WriteString("| Date | Value |\n|---|---:|\n")
	for _, p := range val.Series {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date, domain.FormatUSD(p.Value))
	}
	writeCoverage(&b, val.Coverage)
	return b.String()
}

func comparisonMarkdown(portfolioID string, r domain.DateRange, cmp *valuation.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# `%s` vs %s\n\n%s to %s, rebased to %g\n\n", portfolioID, cmp.Benchmark, r.Start, r.End, valuation.DefaultBase)

	if n := len(cmp.Portfolio); n > 0 && len(cmp.Index) == n {
		fmt.Fprintf(&b, "Portfolio **%.2f**, %s **%.2f** on %s\n\n", cmp.Portfolio[n-1].Value, cmp.Benchmark, cmp.Index[n-1].Value, cmp.Portfolio[n-1].Date)
	}

	fmt.Fprintf(&b, "| Date | Portfolio | %s |\n|---|---:|---:|\n", cmp.Benchmark)
	for i, p := range cmp.Portfolio {
		index := 0.0
		if i < len(cmp.Index) {
			index = cmp.Index[i].Value
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.2f |\n", p.Date, p.Value, index)
	}
	writeCoverage(&b, cmp.Coverage)
	return b.String()
}

func assetAnalyticsMarkdown(a *valuation.AssetAnalytics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s to %s, Bollinger(%d, %g)\n\n", a.Ticker, a.Range.Start, a.Range.End, a.Window, a.StdDev)

	if a.Change != nil {
		fmt.Fprintf(&b, "- Close: **%.2f** on %s\n", a.Change.End, a.Change.To)
		fmt.Fprintf(&b, "- Change: %s\n", formatChange(a.Change, false))
		fmt.Fprintf(&b, "- Annualized volatility: %.1f%%\n\n", a.Volatility*100)
	}

	bands := make(map[string]domain.BandPoint, len(a.Bands))
	for _, bp := range a.Bands {
		bands[bp.Date] = bp
	}

	b.WriteString("| Date | Close | Upper | Middle | Lower |\n|---|---:|---:|---:|---:|\n")
	for _, p := range a.Series {
		bp, ok := bands[p.Date]
		if !ok {
			fmt.Fprintf(&b, "| %s | %.2f | | | |\n", p.Date, p.Value)
			continue
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f |\n", p.Date, p.Value, bp.Upper, bp.Middle, bp.Lower)
	}
	writeCoverage(&b, a.Coverage)
	return b.String()
}

func sectorsMarkdown(portfolioID string, d *analytics.SectorDistribution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sectors of `%s`\n\nAs of %s, total %s\n\n", portfolioID, d.AsOf, domain.FormatUSD(d.Total))

	sectors := d.SortedSectors()
	if len(sectors) == 0 {
		b.WriteString("_Nothing held on this date._\n")
	} else {
		b.WriteString("| Sector | Value | Weight |\n|---|---:|---:|\n")
		for _, s := range sectors {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", s, domain.FormatUSD(d.Values[s]), d.Weights[s]*100)
		}
	}
	writeCoverage(&b, d.Coverage)
	return b.String()
}

func summaryMarkdown(s *valuation.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nAs of %s\n\n", escape(s.Name), s.AsOf)
	fmt.Fprintf(&b, "**%s**, %s over the last year\n\n", s.TotalDisplay, s.YearChangeDisplay)

	if len(s.Holdings) > 0 {
		b.WriteString("| Ticker | Name | Sector | Quantity | Price | Value | Weight | 1Y |\n")
		b.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
		for _, h := range s.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f | %s | %.1f%% | %s |\n",
				h.Ticker, escape(h.Name), h.Sector, h.Quantity, h.Price, h.ValueDisplay, h.Weight*100, h.YearChangeDisplay)
		}
	}
	writeCoverage(&b, s.Coverage)
	return b.String()
}

func fundamentalsMarkdown(f *domain.Fundamentals) string {
	var b strings.Builder
	title := f.Ticker
	if f.Name != nil {
		title = fmt.Sprintf("%s (%s)", *f.Name, f.Ticker)
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	field := func(label, value string) {
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	field("Sector", strOrNA(f.Sector))
	field("Industry", strOrNA(f.Industry))
	field("P/E", floatOrNA(f.PERatio, "%.2f"))
	field("Forward P/E", floatOrNA(f.ForwardPE, "%.2f"))
	field("Beta", floatOrNA(f.Beta, "%.2f"))
	field("Dividend yield", floatOrNA(f.DividendYield, "%.2f"))
	if f.MarketCap != nil {
		field("Market cap", domain.FormatUSD(float64(*f.MarketCap)))
	} else {
		field("Market cap", "n/a")
	}
	if f.Summary != nil {
		fmt.Fprintf(&b, "\n%s\n", *f.Summary)
	}
	return b.String()
}

func writeCoverage(b *strings.Builder, notes []domain.CoverageNote) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n> Missing prices, valued at 0:\n")
	for _, n := range notes {
		fmt.Fprintf(b, "> - %s (%s)\n", n.Ticker, n.Reason)
	}
}

func formatChange(c *analytics.Change, dollars bool) string {
	abs := fmt.Sprintf("%+.2f", c.Absolute)
	if dollars {
		sign := "+"
		if c.Absolute < 0 {
			sign = "-"
		}
		abs = sign + domain.FormatUSD(math.Abs(c.Absolute))
	}
	if c.Percent == nil {
		return abs
	}
	return fmt.Sprintf("%s, %+.2f%%", abs, *c.Percent)
}

func strOrNA(s *string) string {
	if s == nil || *s == "" {
		return "n/a"
	}
	return *s
}

func floatOrNA(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

// escape keeps user text from breaking table cells
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
