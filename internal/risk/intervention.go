package risk

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

// SummarizeInterventions averages the effectiveness of the given records.
// Risk reduction rounds to whole points, the rest to one decimal.
func SummarizeInterventions(records []contracts.InterventionRecord) contracts.InterventionSummary {
	summary := contracts.InterventionSummary{Total: len(records)}
	if len(records) == 0 {
		return summary
	}

	reduction := make(stats.Float64Data, 0, len(records))
	priceStab := make(stats.Float64Data, 0, len(records))
	lead := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		reduction = append(reduction, float64(r.Effectiveness.RiskReduction))
		priceStab = append(priceStab, r.Effectiveness.PriceStabilization)
		lead = append(lead, r.Effectiveness.LeadTimeDays)
	}

	if mean, err := reduction.Mean(); err == nil {
		summary.AvgRiskReduction = int(math.Round(mean))
	}
	if mean, err := priceStab.Mean(); err == nil {
		summary.AvgPriceStabilization = round1(mean)
	}
	if mean, err := lead.Mean(); err == nil {
		summary.AvgLeadTimeDays = round1(mean)
	}
	return summary
}
