package channels

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	domainchannels "github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

type cacheEntry struct {
	cfg     domainchannels.Config
	expires time.Time
}

// Cache memoises another Provider for ttl. When a refresh fails and a stale
// entry exists, the stale entry is served.
type Cache struct {
	next   Provider
	ttl    time.Duration
	clock  clockwork.Clock
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps next. A nil clock uses the real clock.
func NewCache(next Provider, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		next:    next,
		ttl:     ttl,
		clock:   clock,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, channelID string) (domainchannels.Config, error) {
	now := c.clock.Now()

	c.mu.Lock()
	entry, ok := c.entries[channelID]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.cfg, nil
	}

	cfg, err := c.next.Get(ctx, channelID)
	if err != nil {
		if ok {
			logging.Warn(c.logger, "serving stale channel settings", logging.FieldChannelID, channelID, "err", err)
			return entry.cfg, nil
		}
		return domainchannels.Config{}, err
	}

	c.mu.Lock()
	c.entries[channelID] = cacheEntry{cfg: cfg, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return cfg, nil
}

// Invalidate drops a cached entry so the next Get reloads it.
func (c *Cache) Invalidate(channelID string) {
	c.mu.Lock()
	delete(c.entries, channelID)
	c.mu.Unlock()
}
