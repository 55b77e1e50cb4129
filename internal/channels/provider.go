// Package channels resolves per-channel announcement settings. Channels with
// nothing stored get domain defaults.
package channels

import (
	"context"

	domainchannels "github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
)

// Provider returns the settings for one channel.
type Provider interface {
	Get(ctx context.Context, channelID string) (domainchannels.Config, error)
}

// Static serves a fixed map, falling back to defaults.
type Static struct {
	configs map[string]domainchannels.Config
}

// NewStatic copies configs into a Static provider. A nil map serves defaults only.
func NewStatic(configs map[string]domainchannels.Config) *Static {
	copied := make(map[string]domainchannels.Config, len(configs))
	for id, cfg := range configs {
		copied[id] = cfg
	}
	return &Static{configs: copied}
}

func (s *Static) Get(_ context.Context, channelID string) (domainchannels.Config, error) {
	if cfg, ok := s.configs[channelID]; ok {
		return cfg, nil
	}
	return domainchannels.Defaults(), nil
}
