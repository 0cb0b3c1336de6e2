package analytics

import (
	"sort"

	"github.com/aristath/stockfolio/internal/domain"
)

// DefaultSectorLookbackDays bounds how far back a close is forward-filled
// when valuing a holding as of a date
const DefaultSectorLookbackDays = 10

// SectorDistribution is the split of portfolio value by sector on one date
type SectorDistribution struct {
	AsOf     string                `json:"as_of"`
	Weights  map[string]float64    `json:"weights"` // fractions summing to 1
	Values   map[string]float64    `json:"values"`
	Total    float64               `json:"total"`
	Coverage []domain.CoverageNote `json:"partial_coverage"`
}

// SectorLookupRange returns the range whose bars SectorWeights needs for asOf
func SectorLookupRange(asOf string, lookbackDays int) (domain.DateRange, error) {
	end, err := domain.ParseDate(asOf)
	if err != nil {
		return domain.DateRange{}, err
	}
	if lookbackDays < 0 {
		lookbackDays = DefaultSectorLookbackDays
	}
	return domain.DateRange{Start: domain.FormatDate(end.AddDate(0, 0, -lookbackDays)), End: asOf}, nil
}

// SectorWeights values every holding active on asOf at its latest close on or
// before asOf (and on or after its acquisition) and groups the values by
// sector. prices is keyed by normalized ticker. A zero total yields empty maps.
func SectorWeights(holdings []domain.Holding, asOf string, prices map[string]domain.PriceSeries) SectorDistribution {
	dist := SectorDistribution{
		AsOf:     asOf,
		Weights:  map[string]float64{},
		Values:   map[string]float64{},
		Coverage: []domain.CoverageNote{},
	}

	for _, h := range holdings {
		if !h.ActiveOn(asOf) {
			continue
		}
		price, ok := latestClose(prices[domain.NormalizeTicker(h.Ticker)], h.AcquiredOn, asOf)
		if !ok {
			continue
		}
		value := h.Quantity.InexactFloat64() * price
		if value == 0 {
			continue
		}
		dist.Values[h.Sector()] += value
		dist.Total += value
	}

	if dist.Total == 0 {
		dist.Values = map[string]float64{}
		return dist
	}

	for sector, value := range dist.Values {
		dist.Weights[sector] = value / dist.Total
	}
	return dist
}

// SortedSectors returns the distribution's sectors by weight, largest first
func (d SectorDistribution) SortedSectors() []string {
	sectors := make([]string, 0, len(d.Weights))
	for s := range d.Weights {
		sectors = append(sectors, s)
	}
	sort.Slice(sectors, func(i, j int) bool {
		if d.Weights[sectors[i]] == d.Weights[sectors[j]] {
			return sectors[i] < sectors[j]
		}
		return d.Weights[sectors[i]] > d.Weights[sectors[j]]
	})
	return sectors
}

// latestClose returns the close of the last bar dated within [from, to]
func latestClose(series domain.PriceSeries, from, to string) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		date := series[i].Date
		if date > to {
			continue
		}
		if date < from {
			break
		}
		return series[i].Close, true
	}
	return 0, false
}
