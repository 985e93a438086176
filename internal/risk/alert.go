package risk

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

// AlertFor builds an open alert when the entry's combined score reaches
// threshold. Cooldown is the caller's concern.
func AlertFor(event contracts.ScoreEvent, threshold int) (contracts.AlertRecord, bool) {
	e := event.Entry
	if e.CombinedScore < threshold {
		return contracts.AlertRecord{}, false
	}

	title := fmt.Sprintf("%s risk of price shock for %s in %s", label(e.RiskLevel), e.Commodity, e.RegionName)
	description := fmt.Sprintf("%s/%s scored %d (supply stress %d, price shock %d, trend %s). %s",
		e.Commodity, e.RegionCode, e.CombinedScore, e.SupplyStressScore, e.PriceShockScore, e.Trend,
		recommendation(e.RiskLevel))
	if e.SignificantChange {
		description += " Significant change since the previous snapshot."
	}

	return contracts.AlertRecord{
		ID:          uuid.NewString(),
		SnapshotID:  event.SnapshotID,
		Commodity:   e.Commodity,
		RegionCode:  e.RegionCode,
		Title:       title,
		Description: description,
		RiskScore:   e.CombinedScore,
		Severity:    e.RiskLevel,
		Status:      contracts.AlertOpen,
	}, true
}

func label(level contracts.RiskLevel) string {
	switch level {
	case contracts.LevelCritical:
		return "Critical"
	case contracts.LevelHigh:
		return "High"
	case contracts.LevelModerate:
		return "Moderate"
	case contracts.LevelLow:
		return "Low"
	default:
		return "Unknown"
	}
}
