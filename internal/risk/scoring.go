package risk

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

var ErrNotFound = errors.New("pair not found")

// Engine serves generated data for one immutable score table. Every call
// seeds its own generators, so an Engine is safe for concurrent use.
type Engine struct {
	table *synth.ScoreTable
	days  int
	now   func() time.Time
}

type Option func(*Engine)

func WithDays(days int) Option {
	return func(e *Engine) { e.days = days }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(table *synth.ScoreTable, opts ...Option) *Engine {
	e := &Engine{
		table: table,
		days:  synth.DefaultDays,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Table() *synth.ScoreTable {
	return e.table
}

func (e *Engine) Current(commodity, regionCode string) (contracts.CurrentScoreEntry, error) {
	entry, ok := e.table.Lookup(commodity, regionCode)
	if !ok {
		return contracts.CurrentScoreEntry{}, fmt.Errorf("%s/%s: %w", commodity, regionCode, ErrNotFound)
	}
	return entry, nil
}

// History returns the risk history ending today. Zero days uses the engine
// default; negative counts fail with synth.ErrInvalidArgument.
func (e *Engine) History(commodity, regionCode string, days int) ([]contracts.RiskScorePoint, error) {
	return synth.RiskHistory(commodity, regionCode, e.options(days))
}

func (e *Engine) Signals(commodity, regionCode string, signal contracts.SignalType, days int) ([]contracts.SignalPoint, error) {
	return synth.SignalSeries(commodity, regionCode, signal, e.options(days))
}

func (e *Engine) options(days int) synth.HistoryOptions {
	if days == 0 {
		days = e.days
	}
	return synth.HistoryOptions{Days: days, End: e.now()}
}

// Explain attributes a pair's current score to the signals whose latest
// observation sits above baseline.
func (e *Engine) Explain(commodity, regionCode string) (contracts.Explanation, error) {
	entry, err := e.Current(commodity, regionCode)
	if err != nil {
		return contracts.Explanation{}, err
	}

	latest := make([]contracts.RiskContributor, 0, len(synth.SignalTypes()))
	for _, signal := range synth.SignalTypes() {
		points, err := e.Signals(commodity, regionCode, signal, 0)
		if err != nil {
			return contracts.Explanation{}, fmt.Errorf("signal %s: %w", signal, err)
		}
		p := points[len(points)-1]
		latest = append(latest, contracts.RiskContributor{
			SignalType: signal,
			Observed:   p.Observed,
			Baseline:   p.Baseline,
			Deviation:  p.Deviation,
		})
	}

	contributors := aggregate(latest)
	return contracts.Explanation{
		Commodity:            entry.Commodity,
		RegionCode:           entry.RegionCode,
		CombinedScore:        entry.CombinedScore,
		RiskLevel:            entry.RiskLevel,
		Summary:              summary(entry, contributors),
		Contributors:         contributors,
		StructuralAssessment: assessment(len(contributors)),
		RecommendedAction:    recommendation(entry.RiskLevel),
	}, nil
}

// aggregate keeps positive deviations and splits 100% between them by size.
func aggregate(signals []contracts.RiskContributor) []contracts.RiskContributor {
	stressed := make([]contracts.RiskContributor, 0, len(signals))
	total := 0.0
	for _, s := range signals {
		if s.Deviation <= 0 {
			continue
		}
		total += s.Deviation
		stressed = append(stressed, s)
	}
	if len(stressed) == 0 {
		return stressed
	}

	for i := range stressed {
		stressed[i].ContributionPct = round1(stressed[i].Deviation / total * 100)
	}
	sort.SliceStable(stressed, func(i, j int) bool {
		return stressed[i].Deviation > stressed[j].Deviation
	})
	return stressed
}

func summary(entry contracts.CurrentScoreEntry, contributors []contracts.RiskContributor) string {
	if len(contributors) == 0 {
		return fmt.Sprintf("%s in %s scores %d (%s) with every signal at or below baseline.",
			entry.Commodity, entry.RegionName, entry.CombinedScore, entry.RiskLevel)
	}
	return fmt.Sprintf("%s in %s scores %d (%s), led by %s signals %.1f above baseline.",
		entry.Commodity, entry.RegionName, entry.CombinedScore, entry.RiskLevel,
		contributors[0].SignalType, contributors[0].Deviation)
}

func assessment(stressed int) string {
	switch {
	case stressed >= 4:
		return "Structural risk: most signals are above baseline at once."
	case stressed >= 2:
		return "Semi-structural risk: several correlated signals above baseline."
	case stressed == 1:
		return "Transient risk: a single signal above baseline."
	default:
		return "No signal stress detected."
	}
}

func recommendation(level contracts.RiskLevel) string {
	switch level {
	case contracts.LevelCritical:
		return "Immediate intervention: release buffer stock and activate alternative transport routes."
	case contracts.LevelHigh:
		return "High risk: coordinate with wholesalers and monitor retail markets daily."
	case contracts.LevelModerate:
		return "Moderate risk: monitor mandi prices and prepare route alternatives."
	default:
		return "Low risk: continue monitoring with standard cadence."
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
