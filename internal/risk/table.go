package risk

import (
	"github.com/2020-HelloWorld/masala-models/internal/config"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

// FromConfig builds the default-catalog score table and an engine over it.
// Binaries call this once at startup and pass the engine down.
func FromConfig(cfg config.Config) (*Engine, error) {
	table, err := synth.BuildScoreTable(synth.DefaultCommodities(), synth.DefaultRegions(), synth.TableOptions{Seed: cfg.TableSeed})
	if err != nil {
		return nil, err
	}
	return NewEngine(table, WithDays(cfg.HistoryDays)), nil
}
