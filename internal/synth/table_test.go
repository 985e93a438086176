package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

func defaultTable(t *testing.T) *ScoreTable {
	t.Helper()
	table, err := BuildScoreTable(DefaultCommodities(), DefaultRegions(), TableOptions{Timestamp: refDay})
	require.NoError(t, err)
	return table
}

func TestBuildScoreTableSinglePair(t *testing.T) {
	regions := []contracts.Region{{Code: "MH", Name: "Maharashtra"}}
	for run := 0; run < 3; run++ {
		table, err := BuildScoreTable([]string{"Onion"}, regions, TableOptions{Seed: 42, Timestamp: refDay})
		require.NoError(t, err)
		require.Equal(t, 1, table.Len())

		assert.Equal(t, contracts.CurrentScoreEntry{
			Commodity:         "Onion",
			RegionCode:        "MH",
			RegionName:        "Maharashtra",
			CombinedScore:     5,
			SupplyStressScore: 52,
			PriceShockScore:   71,
			RiskLevel:         contracts.LevelLow,
			Trend:             contracts.TrendRising,
			SignificantChange: false,
			Timestamp:         refDay,
		}, table.Entries()[0])
	}
}

func TestBuildScoreTableDefaultCatalog(t *testing.T) {
	table := defaultTable(t)
	require.Equal(t, 100, table.Len())

	entries := table.Entries()
	assert.Equal(t, "Onion", entries[0].Commodity)
	assert.Equal(t, "MH", entries[0].RegionCode)
	assert.Equal(t, 22, entries[1].CombinedScore)
	assert.Equal(t, 93, entries[1].SupplyStressScore)
	assert.Equal(t, contracts.TrendStable, entries[1].Trend)

	last := entries[99]
	assert.Equal(t, "Green Chilli", last.Commodity)
	assert.Equal(t, "BR", last.RegionCode)
	assert.Equal(t, 52, last.CombinedScore)
	assert.Equal(t, 67, last.SupplyStressScore)
	assert.Equal(t, 33, last.PriceShockScore)
	assert.Equal(t, contracts.LevelHigh, last.RiskLevel)

	for _, e := range entries {
		assert.Equal(t, contracts.LevelOf(e.CombinedScore), e.RiskLevel)
		assert.Equal(t, refDay, e.Timestamp)
	}
}

func TestScoreTableSeedOverride(t *testing.T) {
	a, err := BuildScoreTable(DefaultCommodities(), DefaultRegions(), TableOptions{Seed: 7, Timestamp: refDay})
	require.NoError(t, err)
	assert.NotEqual(t, defaultTable(t).Entries(), a.Entries())

	_, err = BuildScoreTable(DefaultCommodities(), DefaultRegions(), TableOptions{Seed: lehmerModulus})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScoreTableEntriesIsACopy(t *testing.T) {
	table := defaultTable(t)
	entries := table.Entries()
	entries[0].CombinedScore = 99

	got, ok := table.Lookup("Onion", "MH")
	require.True(t, ok)
	assert.Equal(t, 5, got.CombinedScore)
}

func TestScoreTableLookup(t *testing.T) {
	table := defaultTable(t)

	e, ok := table.Lookup("Onion", "UP")
	require.True(t, ok)
	assert.Equal(t, 27, e.CombinedScore)
	assert.True(t, e.SignificantChange)

	_, ok = table.Lookup("Saffron", "MH")
	assert.False(t, ok)
}

func TestScoreTableFilter(t *testing.T) {
	table := defaultTable(t)

	onion := table.Filter(TableFilter{Commodity: "Onion"})
	assert.Len(t, onion, 10)

	critical := table.Filter(TableFilter{Level: contracts.LevelCritical, SortByScore: true})
	require.Len(t, critical, 19)
	assert.Equal(t, 95, critical[0].CombinedScore)
	assert.Equal(t, "Tomato", critical[0].Commodity)
	assert.Equal(t, "KA", critical[0].RegionCode)
	for i := 1; i < len(critical); i++ {
		assert.GreaterOrEqual(t, critical[i-1].CombinedScore, critical[i].CombinedScore)
	}

	rising := table.Filter(TableFilter{Trend: contracts.TrendRising})
	assert.Len(t, rising, 22)
}

func TestScoreTableSummary(t *testing.T) {
	assert.Equal(t, contracts.OverviewSummary{
		PairsMonitored:     100,
		Critical:           19,
		High:               24,
		Rising:             22,
		SignificantChanges: 20,
		AvgCombinedScore:   45,
		MedianCombined:     41,
	}, defaultTable(t).Summary())
}

func TestScoreTableRegionHeat(t *testing.T) {
	heat := defaultTable(t).RegionHeat("")
	require.Len(t, heat, 10)

	want := map[string]int{
		"MH": 40, "KA": 39, "TN": 41, "UP": 51, "MP": 44,
		"RJ": 46, "GJ": 48, "PB": 35, "WB": 58, "BR": 45,
	}
	for _, h := range heat {
		assert.Equal(t, want[h.RegionCode], h.AvgCombinedScore, h.RegionCode)
		assert.Equal(t, 10, h.Pairs)
		assert.Equal(t, contracts.LevelOf(h.AvgCombinedScore), h.RiskLevel)
	}
	assert.Equal(t, "Maharashtra", heat[0].RegionName)

	onion := defaultTable(t).RegionHeat("Onion")
	assert.Equal(t, 76, onion[7].AvgCombinedScore)
	assert.Equal(t, contracts.LevelCritical, onion[7].RiskLevel)
}

func TestEmptyScoreTable(t *testing.T) {
	table, err := BuildScoreTable(nil, DefaultRegions(), TableOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	summary := table.Summary()
	assert.Equal(t, 0, summary.PairsMonitored)
	assert.Equal(t, 0, summary.AvgCombinedScore)

	for _, h := range table.RegionHeat("") {
		assert.Equal(t, 0, h.Pairs)
		assert.Empty(t, h.RiskLevel)
	}
}
