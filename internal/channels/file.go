package channels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domainchannels "github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
)

// fileEntry mirrors domainchannels.Config with optional fields so omitted keys
// keep their defaults.
type fileEntry struct {
	OnlyScoringPlays    *bool `yaml:"only_scoring_plays"`
	GameAdvisories      *bool `yaml:"game_advisories"`
	InPlayDelay         *int  `yaml:"in_play_delay"`
	NoPlayDelay         *int  `yaml:"no_play_delay"`
	ShowScoreOnThirdOut *bool `yaml:"show_score_on_out3"`
}

type fileLayout struct {
	Channels map[string]fileEntry `yaml:"channels"`
}

// LoadFile reads a YAML document of the form
//
//	channels:
//	  "1234":
//	    only_scoring_plays: true
//	    in_play_delay: 20
//
// into a Static provider.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channel config %s: %w", path, err)
	}
	var layout fileLayout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse channel config %s: %w", path, err)
	}

	configs := make(map[string]domainchannels.Config, len(layout.Channels))
	for id, entry := range layout.Channels {
		configs[id] = entry.resolve()
	}
	return NewStatic(configs), nil
}

func (e fileEntry) resolve() domainchannels.Config {
	cfg := domainchannels.Defaults()
	if e.OnlyScoringPlays != nil {
		cfg.OnlyScoringPlays = *e.OnlyScoringPlays
	}
	if e.GameAdvisories != nil {
		cfg.GameAdvisories = *e.GameAdvisories
	}
	if e.InPlayDelay != nil {
		cfg.InPlayDelaySeconds = *e.InPlayDelay
	}
	if e.NoPlayDelay != nil {
		cfg.NoPlayDelaySeconds = *e.NoPlayDelay
	}
	if e.ShowScoreOnThirdOut != nil {
		cfg.ShowScoreOnThirdOut = *e.ShowScoreOnThirdOut
	}
	return cfg
}

var _ Provider = (*Static)(nil)
