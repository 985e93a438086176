package synth

import (
	"fmt"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

func DefaultCommodities() []string {
	return []string{
		"Onion", "Tomato", "Potato", "Rice", "Wheat",
		"Dal (Tur)", "Sugar", "Mustard Oil", "Milk", "Green Chilli",
	}
}

func DefaultRegions() []contracts.Region {
	return []contracts.Region{
		{Code: "MH", Name: "Maharashtra"},
		{Code: "KA", Name: "Karnataka"},
		{Code: "TN", Name: "Tamil Nadu"},
		{Code: "UP", Name: "Uttar Pradesh"},
		{Code: "MP", Name: "Madhya Pradesh"},
		{Code: "RJ", Name: "Rajasthan"},
		{Code: "GJ", Name: "Gujarat"},
		{Code: "PB", Name: "Punjab"},
		{Code: "WB", Name: "West Bengal"},
		{Code: "BR", Name: "Bihar"},
	}
}

func SignalTypes() []contracts.SignalType {
	return []contracts.SignalType{
		contracts.SignalMarket,
		contracts.SignalLogistics,
		contracts.SignalClimate,
		contracts.SignalBehavioral,
		contracts.SignalEvent,
	}
}

func InterventionTypes() []string {
	return []string{
		"Buffer Stock Release",
		"Alternative Transport Route",
		"Retail Monitoring",
		"Wholesale Coordination",
		"Import Facilitation",
		"Public Advisory",
		"Price Cap Recommendation",
		"Cold Storage Activation",
	}
}

func ParseSignalType(raw string) (contracts.SignalType, error) {
	for _, s := range SignalTypes() {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown signal type %q: %w", raw, ErrInvalidArgument)
}

func IsInterventionType(raw string) bool {
	for _, t := range InterventionTypes() {
		if t == raw {
			return true
		}
	}
	return false
}
