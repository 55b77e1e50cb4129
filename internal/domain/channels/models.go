package channels

import "time"

const (
	defaultInPlayDelaySeconds = 13
	defaultNoPlayDelaySeconds = 18
)

// Config holds per-channel announcement preferences.
type Config struct {
	OnlyScoringPlays    bool `json:"onlyScoringPlays" yaml:"only_scoring_plays"`
	GameAdvisories      bool `json:"gameAdvisories" yaml:"game_advisories"`
	InPlayDelaySeconds  int  `json:"inPlayDelaySeconds" yaml:"in_play_delay"`
	NoPlayDelaySeconds  int  `json:"noPlayDelaySeconds" yaml:"no_play_delay"`
	ShowScoreOnThirdOut bool `json:"showScoreOnThirdOut" yaml:"show_score_on_out3"`
}

// Defaults returns the configuration used when a channel has none stored.
func Defaults() Config {
	return Config{
		OnlyScoringPlays:    false,
		GameAdvisories:      true,
		InPlayDelaySeconds:  defaultInPlayDelaySeconds,
		NoPlayDelaySeconds:  defaultNoPlayDelaySeconds,
		ShowScoreOnThirdOut: true,
	}
}

// IsDefault reports whether c matches Defaults.
func (c Config) IsDefault() bool {
	return c == Defaults()
}

// InPlayDelay is how long a ball-in-play result is held before announcing.
func (c Config) InPlayDelay() time.Duration {
	return seconds(c.InPlayDelaySeconds)
}

// NoPlayDelay is how long strikeouts, walks and advisories are held.
func (c Config) NoPlayDelay() time.Duration {
	return seconds(c.NoPlayDelaySeconds)
}

func seconds(n int) time.Duration {
	if n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
