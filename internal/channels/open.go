package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
)

// Open builds the provider named by cfg.Source. The returned close func
// releases any connection the provider holds.
func Open(ctx context.Context, cfg config.ChannelsConfig, clock clockwork.Clock, logger *slog.Logger) (Provider, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case "", "defaults":
		return NewStatic(nil), noop, nil
	case "file":
		p, err := LoadFile(cfg.File)
		if err != nil {
			return nil, noop, err
		}
		return p, noop, nil
	case "postgres":
		pool, err := ConnectPostgres(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, noop, err
		}
		return NewCache(NewPostgres(pool), cfg.CacheTTL, clock, logger), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown channel config source %q", cfg.Source)
	}
}
