package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
)

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg config.RegistryConfig, logger *slog.Logger) (Registry, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return OpenSQLite(ctx, cfg.Path, logger)
	case "redis":
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		}, logger)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Backend)
	}
}
