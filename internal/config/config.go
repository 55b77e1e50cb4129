package config

import (
	"fmt"
	"os"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	// AdminToken guards /admin routes; they are not mounted when empty.
	AdminToken string

	Tracking TrackingConfig
	Feed     FeedConfig
	Registry RegistryConfig
	Channels ChannelsConfig
	Dispatch DispatchConfig
	Metrics  MetricsConfig
}

// Load reads configuration from the environment, after applying the dotenv
// file named by ENV_FILE (default .env) when it exists.
func Load() (Config, error) {
	path := os.Getenv(envFile)
	if path == "" {
		path = defaultEnvFile
	}
	if err := loadDotEnv(path); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	cfg := Config{
		Port:       envOrDefault(envPort, defaultPort),
		LogLevel:   envOrDefault(envLogLevel, defaultLogLevel),
		LogFormat:  envOrDefault(envLogFormat, defaultLogFormat),
		AdminToken: envOrDefault(envAdminToken, ""),
		Tracking:   loadTracking(),
		Feed:       loadFeed(),
		Registry:   loadRegistry(),
		Channels:   loadChannels(),
		Dispatch:   loadDispatch(),
		Metrics:    loadMetrics(),
	}
	return cfg, cfg.Validate()
}

// Validate rejects combinations that cannot start.
func (c Config) Validate() error {
	switch c.Registry.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	switch c.Feed.Provider {
	case "statsapi", "fixture":
	default:
		return fmt.Errorf("unknown feed provider %q", c.Feed.Provider)
	}
	switch c.Channels.Source {
	case "defaults", "file":
	case "postgres":
		if c.Channels.PostgresDSN == "" {
			return fmt.Errorf("%s is required when %s=postgres", envPostgresDSN, envChannelSource)
		}
	default:
		return fmt.Errorf("unknown channel config source %q", c.Channels.Source)
	}
	switch c.Dispatch.Kind {
	case "log":
	case "telegram":
		if c.Dispatch.TelegramToken == "" {
			return fmt.Errorf("%s is required when %s=telegram", envTelegramToken, envDispatcher)
		}
	default:
		return fmt.Errorf("unknown dispatcher %q", c.Dispatch.Kind)
	}
	return c.Metrics.validate(c.Port)
}
