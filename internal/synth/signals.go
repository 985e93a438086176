package synth

import (
	"fmt"
	"math"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

// SignalSeed derives the signal series seed for a (commodity, region, signal) triple.
func SignalSeed(commodity, regionCode string, signal contracts.SignalType) (int64, error) {
	if signal == "" {
		return 0, fmt.Errorf("empty signal type: %w", ErrInvalidArgument)
	}
	first, err := firstUnit(regionCode)
	if err != nil {
		return 0, err
	}
	return int64(unitLen(commodity))*7 + first*3 + int64(unitLen(string(signal)))*11, nil
}

// SignalSeries generates a daily observed/baseline series. The baseline
// follows a slow sinusoid (period ~94 days) plus noise; observed skews
// above it.
func SignalSeries(commodity, regionCode string, signal contracts.SignalType, opts HistoryOptions) ([]contracts.SignalPoint, error) {
	days, end, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	seed, err := SignalSeed(commodity, regionCode, signal)
	if err != nil {
		return nil, err
	}
	rng, err := NewPRNG(seed)
	if err != nil {
		return nil, err
	}

	points := make([]contracts.SignalPoint, 0, days)
	baseline := 40 + rng.Next()*30
	for offset := days - 1; offset >= 0; offset-- {
		baseline += math.Sin(float64(offset)/15)*2 + (rng.Next() - 0.5)
		baseline = clamp(baseline, 10, 90)
		observed := clamp(baseline+(rng.Next()-0.4)*15, 5, 100)

		points = append(points, contracts.SignalPoint{
			Date:        end.AddDate(0, 0, -offset).Format(dateLayout),
			Observed:    round1(observed),
			Baseline:    round1(baseline),
			BaselineMin: round1(math.Max(0, baseline-8)),
			BaselineMax: round1(math.Min(100, baseline+8)),
			Deviation:   round1(observed - baseline),
		})
	}
	return points, nil
}
