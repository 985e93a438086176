package synth

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

const DefaultTableSeed = 42

type TableOptions struct {
	// Seed for the shared table generator; zero means DefaultTableSeed.
	Seed int64
	// Timestamp stamped on every entry; zero means now (UTC).
	Timestamp time.Time
}

// ScoreTable is the current-score snapshot over commodities x regions.
// It is read-only once built and safe to share between goroutines.
type ScoreTable struct {
	entries     []contracts.CurrentScoreEntry
	index       map[string]int
	commodities []string
	regions     []contracts.Region
}

// BuildScoreTable draws every entry from one generator, commodities in the
// outer loop and regions in the inner loop. The draw order is part of the
// output: reordering either list changes which values land on which pair.
func BuildScoreTable(commodities []string, regions []contracts.Region, opts TableOptions) (*ScoreTable, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultTableSeed
	}
	rng, err := NewPRNG(seed)
	if err != nil {
		return nil, err
	}
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	t := &ScoreTable{
		entries:     make([]contracts.CurrentScoreEntry, 0, len(commodities)*len(regions)),
		index:       make(map[string]int, len(commodities)*len(regions)),
		commodities: append([]string(nil), commodities...),
		regions:     append([]contracts.Region(nil), regions...),
	}
	for _, commodity := range commodities {
		for _, region := range regions {
			combined := rng.IntBetween(5, 95)
			supply := rng.IntBetween(5, 95)
			price := rng.IntBetween(5, 95)
			trend := contracts.Trends[rng.IntBetween(0, len(contracts.Trends)-1)]
			significant := rng.Next() > 0.8

			entry := contracts.CurrentScoreEntry{
				Commodity:         commodity,
				RegionCode:        region.Code,
				RegionName:        region.Name,
				CombinedScore:     combined,
				SupplyStressScore: supply,
				PriceShockScore:   price,
				RiskLevel:         contracts.LevelOf(combined),
				Trend:             trend,
				SignificantChange: significant,
				Timestamp:         ts,
			}
			t.index[entry.Key()] = len(t.entries)
			t.entries = append(t.entries, entry)
		}
	}
	return t, nil
}

func (t *ScoreTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table in generation order.
func (t *ScoreTable) Entries() []contracts.CurrentScoreEntry {
	return append([]contracts.CurrentScoreEntry(nil), t.entries...)
}

func (t *ScoreTable) Commodities() []string {
	return append([]string(nil), t.commodities...)
}

func (t *ScoreTable) Regions() []contracts.Region {
	return append([]contracts.Region(nil), t.regions...)
}

func (t *ScoreTable) Lookup(commodity, regionCode string) (contracts.CurrentScoreEntry, bool) {
	i, ok := t.index[commodity+"|"+regionCode]
	if !ok {
		return contracts.CurrentScoreEntry{}, false
	}
	return t.entries[i], true
}

// TableFilter narrows Filter results. Empty fields match everything.
type TableFilter struct {
	Commodity  string
	RegionCode string
	Level      contracts.RiskLevel
	Trend      contracts.Trend
	// SortByScore orders results by combined score, highest first.
	SortByScore bool
}

func (t *ScoreTable) Filter(f TableFilter) []contracts.CurrentScoreEntry {
	out := make([]contracts.CurrentScoreEntry, 0, len(t.entries))
	for _, e := range t.entries {
		if f.Commodity != "" && e.Commodity != f.Commodity {
			continue
		}
		if f.RegionCode != "" && e.RegionCode != f.RegionCode {
			continue
		}
		if f.Level != "" && e.RiskLevel != f.Level {
			continue
		}
		if f.Trend != "" && e.Trend != f.Trend {
			continue
		}
		out = append(out, e)
	}
	if f.SortByScore {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CombinedScore > out[j].CombinedScore
		})
	}
	return out
}

func (t *ScoreTable) Summary() contracts.OverviewSummary {
	summary := contracts.OverviewSummary{PairsMonitored: len(t.entries)}
	scores := make(stats.Float64Data, 0, len(t.entries))
	for _, e := range t.entries {
		switch e.RiskLevel {
		case contracts.LevelCritical:
			summary.Critical++
		case contracts.LevelHigh:
			summary.High++
		}
		if e.Trend == contracts.TrendRising {
			summary.Rising++
		}
		if e.SignificantChange {
			summary.SignificantChanges++
		}
		scores = append(scores, float64(e.CombinedScore))
	}
	if mean, err := scores.Mean(); err == nil {
		summary.AvgCombinedScore = int(math.Round(mean))
	}
	if median, err := scores.Median(); err == nil {
		summary.MedianCombined = int(math.Round(median))
	}
	return summary
}

// RegionHeat averages combined scores per region, in region order. A
// non-empty commodity restricts the average to that commodity.
func (t *ScoreTable) RegionHeat(commodity string) []contracts.RegionHeat {
	heat := make([]contracts.RegionHeat, 0, len(t.regions))
	for _, region := range t.regions {
		var scores stats.Float64Data
		for _, e := range t.entries {
			if e.RegionCode != region.Code {
				continue
			}
			if commodity != "" && e.Commodity != commodity {
				continue
			}
			scores = append(scores, float64(e.CombinedScore))
		}

		h := contracts.RegionHeat{RegionCode: region.Code, RegionName: region.Name, Pairs: len(scores)}
		if mean, err := stats.Mean(scores); err == nil {
			h.AvgCombinedScore = int(math.Round(mean))
			h.RiskLevel = contracts.LevelOf(h.AvgCombinedScore)
		}
		heat = append(heat, h)
	}
	return heat
}
