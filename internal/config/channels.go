package config

import "time"

// ChannelsConfig selects where per-channel announcement settings come from.
type ChannelsConfig struct {
	Source      string // defaults, file or postgres
	File        string
	PostgresDSN string
	CacheTTL    time.Duration
}

func loadChannels() ChannelsConfig {
	return ChannelsConfig{
		Source:      envOrDefault(envChannelSource, defaultChannelSource),
		File:        envOrDefault(envChannelFile, defaultChannelFile),
		PostgresDSN: envOrDefault(envPostgresDSN, ""),
		CacheTTL:    durationEnvOrDefault(envChannelCacheTTL, defaultChannelCacheTTL),
	}
}
