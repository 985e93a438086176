package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

var refDay = time.Date(2026, time.March, 1, 15, 30, 0, 0, time.UTC)

func TestRiskHistoryGolden(t *testing.T) {
	points, err := RiskHistory("Onion", "MH", HistoryOptions{Days: 5, End: refDay})
	require.NoError(t, err)

	want := []contracts.RiskScorePoint{
		{Date: "2026-02-25", CombinedScore: 35, SupplyStressScore: 44, PriceShockScore: 37, RiskLevel: contracts.LevelModerate},
		{Date: "2026-02-26", CombinedScore: 34, SupplyStressScore: 30, PriceShockScore: 26, RiskLevel: contracts.LevelModerate},
		{Date: "2026-02-27", CombinedScore: 36, SupplyStressScore: 45, PriceShockScore: 32, RiskLevel: contracts.LevelModerate},
		{Date: "2026-02-28", CombinedScore: 33, SupplyStressScore: 37, PriceShockScore: 32, RiskLevel: contracts.LevelModerate},
		{Date: "2026-03-01", CombinedScore: 38, SupplyStressScore: 44, PriceShockScore: 40, RiskLevel: contracts.LevelModerate},
	}
	assert.Equal(t, want, points)
}

func TestRiskHistoryDefaultLength(t *testing.T) {
	points, err := RiskHistory("Onion", "MH", HistoryOptions{End: refDay})
	require.NoError(t, err)
	require.Len(t, points, DefaultDays)

	assert.Equal(t, "2025-12-01", points[0].Date)
	assert.Equal(t, "2026-03-01", points[len(points)-1].Date)
	assert.Equal(t, contracts.RiskScorePoint{
		Date: "2026-03-01", CombinedScore: 84, SupplyStressScore: 92, PriceShockScore: 80, RiskLevel: contracts.LevelCritical,
	}, points[len(points)-1])
}

func TestRiskHistoryInvariants(t *testing.T) {
	for _, commodity := range DefaultCommodities() {
		for _, region := range DefaultRegions() {
			points, err := RiskHistory(commodity, region.Code, HistoryOptions{End: refDay})
			require.NoError(t, err)

			for i, p := range points {
				for _, s := range []int{p.CombinedScore, p.SupplyStressScore, p.PriceShockScore} {
					require.GreaterOrEqual(t, s, 5)
					require.LessOrEqual(t, s, 95)
				}
				require.Equal(t, contracts.LevelOf(p.CombinedScore), p.RiskLevel)
				if i > 0 {
					require.Less(t, points[i-1].Date, p.Date)
				}
			}
		}
	}
}

func TestRiskHistoryRestartable(t *testing.T) {
	a, err := RiskHistory("Mustard Oil", "RJ", HistoryOptions{End: refDay})
	require.NoError(t, err)
	b, err := RiskHistory("Mustard Oil", "RJ", HistoryOptions{End: refDay})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRiskHistorySeedCollision(t *testing.T) {
	// Equal name length and equal first region letter share a seed.
	onion, err := RiskHistory("Onion", "MH", HistoryOptions{Days: 30, End: refDay})
	require.NoError(t, err)
	wheat, err := RiskHistory("Wheat", "MP", HistoryOptions{Days: 30, End: refDay})
	require.NoError(t, err)
	assert.Equal(t, onion, wheat)

	seed, err := RiskHistorySeed("Onion", "MH")
	require.NoError(t, err)
	assert.Equal(t, int64(577), seed)
}

func TestRiskHistoryEndsToday(t *testing.T) {
	points, err := RiskHistory("Onion", "MH", HistoryOptions{Days: 5})
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), points[4].Date)
}

func TestHistoryOptionsDayCount(t *testing.T) {
	cases := []struct {
		days    int
		want    int
		wantErr bool
	}{
		{days: 0, want: DefaultDays},
		{days: 1, want: 1},
		{days: 365, want: 365},
		{days: -1, wantErr: true},
	}
	for _, tc := range cases {
		got, _, err := HistoryOptions{Days: tc.days, End: refDay}.resolve()
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, tc.days)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.days)
	}
}

func TestRiskHistoryRejectsBadInput(t *testing.T) {
	_, err := RiskHistory("Onion", "", HistoryOptions{Days: 5})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RiskHistory("Onion", "MH", HistoryOptions{Days: -1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLevelOfThresholds(t *testing.T) {
	cases := map[int]contracts.RiskLevel{
		5:  contracts.LevelLow,
		25: contracts.LevelLow,
		26: contracts.LevelModerate,
		50: contracts.LevelModerate,
		51: contracts.LevelHigh,
		75: contracts.LevelHigh,
		76: contracts.LevelCritical,
		95: contracts.LevelCritical,
	}
	for score, want := range cases {
		assert.Equal(t, want, contracts.LevelOf(score), "score %d", score)
	}

	rank := map[contracts.RiskLevel]int{
		contracts.LevelLow: 0, contracts.LevelModerate: 1, contracts.LevelHigh: 2, contracts.LevelCritical: 3,
	}
	for s := 0; s < 100; s++ {
		assert.LessOrEqual(t, rank[contracts.LevelOf(s)], rank[contracts.LevelOf(s+1)])
	}
}
