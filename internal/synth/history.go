package synth

import (
	"fmt"
	"math"
	"time"
	"unicode/utf16"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

const (
	DefaultDays = 91
	dateLayout  = "2006-01-02"
)

// HistoryOptions controls the length and end date of a generated series.
type HistoryOptions struct {
	// Days is the number of daily points. Zero is the unset value and
	// selects DefaultDays; negative counts are rejected with
	// ErrInvalidArgument. Every positive count is emitted exactly.
	Days int
	// End is the last emitted day; zero means today (UTC).
	End time.Time
}

func (o HistoryOptions) resolve() (int, time.Time, error) {
	days := o.Days
	if days == 0 {
		days = DefaultDays
	}
	if days < 0 {
		return 0, time.Time{}, fmt.Errorf("days %d: %w", o.Days, ErrInvalidArgument)
	}
	end := o.End
	if end.IsZero() {
		end = time.Now()
	}
	end = end.UTC()
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return days, end, nil
}

// RiskHistorySeed derives the history seed for a pair. Only the commodity
// name length and the first region character take part, so pairs can share
// a seed.
func RiskHistorySeed(commodity, regionCode string) (int64, error) {
	first, err := firstUnit(regionCode)
	if err != nil {
		return 0, err
	}
	return int64(unitLen(commodity))*100 + first, nil
}

// RiskHistory generates a daily composite risk series for one pair as a
// bounded random walk with a slight downward drift.
func RiskHistory(commodity, regionCode string, opts HistoryOptions) ([]contracts.RiskScorePoint, error) {
	days, end, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	seed, err := RiskHistorySeed(commodity, regionCode)
	if err != nil {
		return nil, err
	}
	rng, err := NewPRNG(seed)
	if err != nil {
		return nil, err
	}

	points := make([]contracts.RiskScorePoint, 0, days)
	base := 30 + int(math.Floor(rng.Next()*40))
	for offset := days - 1; offset >= 0; offset-- {
		base = clampInt(base+int(math.Floor((rng.Next()-0.48)*12)), 5, 95)
		supply := clampInt(base+int(math.Floor((rng.Next()-0.5)*20)), 5, 95)
		price := clampInt(base+int(math.Floor((rng.Next()-0.5)*20)), 5, 95)
		points = append(points, contracts.RiskScorePoint{
			Date:              end.AddDate(0, 0, -offset).Format(dateLayout),
			CombinedScore:     base,
			SupplyStressScore: supply,
			PriceShockScore:   price,
			RiskLevel:         contracts.LevelOf(base),
		})
	}
	return points, nil
}

// unitLen counts UTF-16 code units so seeds match the dashboard's string lengths.
func unitLen(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func firstUnit(s string) (int64, error) {
	units := utf16.Encode([]rune(s))
	if len(units) == 0 {
		return 0, fmt.Errorf("empty region code: %w", ErrInvalidArgument)
	}
	return int64(units[0]), nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 rounds half away from zero at one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
