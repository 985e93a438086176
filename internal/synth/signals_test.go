package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

func TestSignalSeriesGolden(t *testing.T) {
	points, err := SignalSeries("Tomato", "KA", contracts.SignalClimate, HistoryOptions{Days: 3, End: refDay})
	require.NoError(t, err)
	require.Len(t, points, 3)

	want := []contracts.SignalPoint{
		{Date: "2026-02-27", Observed: 48.0, Baseline: 40.1, BaselineMin: 32.1, BaselineMax: 48.1, Deviation: 7.9},
		{Date: "2026-02-28", Observed: 38.6, Baseline: 40.5, BaselineMin: 32.5, BaselineMax: 48.5, Deviation: -1.9},
		{Date: "2026-03-01", Observed: 37.1, Baseline: 40.3, BaselineMin: 32.3, BaselineMax: 48.3, Deviation: -3.2},
	}
	for i := range want {
		assert.Equal(t, want[i].Date, points[i].Date)
		assert.InDelta(t, want[i].Observed, points[i].Observed, 1e-9)
		assert.InDelta(t, want[i].Baseline, points[i].Baseline, 1e-9)
		assert.InDelta(t, want[i].BaselineMin, points[i].BaselineMin, 1e-9)
		assert.InDelta(t, want[i].BaselineMax, points[i].BaselineMax, 1e-9)
		assert.InDelta(t, want[i].Deviation, points[i].Deviation, 1e-9)
		// deviation comes from unrounded values, so it may differ from the
		// rounded difference by one rounding step
		assert.InDelta(t, points[i].Observed-points[i].Baseline, points[i].Deviation, 0.1+1e-9)
	}
}

func TestSignalSeed(t *testing.T) {
	seed, err := SignalSeed("Tomato", "KA", contracts.SignalClimate)
	require.NoError(t, err)
	assert.Equal(t, int64(344), seed)

	_, err = SignalSeed("Tomato", "KA", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSignalSeriesInvariants(t *testing.T) {
	for _, commodity := range DefaultCommodities() {
		for _, region := range DefaultRegions() {
			for _, signal := range SignalTypes() {
				points, err := SignalSeries(commodity, region.Code, signal, HistoryOptions{Days: 180, End: refDay})
				require.NoError(t, err)
				require.Len(t, points, 180)

				for _, p := range points {
					require.LessOrEqual(t, p.BaselineMin, p.Baseline)
					require.LessOrEqual(t, p.Baseline, p.BaselineMax)
					require.GreaterOrEqual(t, p.Observed, 5.0)
					require.LessOrEqual(t, p.Observed, 100.0)
					require.GreaterOrEqual(t, p.Baseline, 10.0)
					require.LessOrEqual(t, p.Baseline, 90.0)
					require.Equal(t, p.Observed, math.Round(p.Observed*10)/10)
				}
			}
		}
	}
}

func TestSignalSeriesRestartable(t *testing.T) {
	a, err := SignalSeries("Rice", "WB", contracts.SignalLogistics, HistoryOptions{End: refDay})
	require.NoError(t, err)
	b, err := SignalSeries("Rice", "WB", contracts.SignalLogistics, HistoryOptions{End: refDay})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDays)
}

func TestRound1HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.3, round1(0.25))
	assert.Equal(t, -0.3, round1(-0.25))
	assert.Equal(t, 1.0, round1(0.96))
	assert.Equal(t, -1.0, round1(-0.96))
}

func TestParseSignalType(t *testing.T) {
	for _, s := range SignalTypes() {
		got, err := ParseSignalType(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSignalType("weather")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
