package providers

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
)

const (
	defaultRatePerSecond = 5
	defaultBurst         = 5
	limiterName          = "limiter"
)

// rateLimitedProvider shares one token bucket across every poller fetching
// through it, bounding total upstream request rate.
type rateLimitedProvider struct {
	next    FeedProvider
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewRateLimitedProvider returns a FeedProvider that waits for a token before
// each call. Non-positive arguments fall back to 5 requests per second, burst 5.
func NewRateLimitedProvider(next FeedProvider, perSecond float64, burst int, logger *slog.Logger, recorder *metrics.Recorder) FeedProvider {
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &rateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
		metrics: recorder,
	}
}

func (p *rateLimitedProvider) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	if p == nil || p.next == nil {
		return games.Feed{}, ErrProviderUnavailable
	}
	if !p.limiter.Allow() {
		p.metrics.RecordRateLimit(limiterName, 0)
		if err := p.limiter.Wait(ctx); err != nil {
			logWithProvider(ctx, p.logger, slog.LevelWarn, limiterName, "feed fetch throttled", logging.FieldGameID, gameID, "err", err)
			if ctx.Err() != nil {
				return games.Feed{}, ctx.Err()
			}
			return games.Feed{}, fmt.Errorf("%w: %v", ErrThrottled, err)
		}
	}
	return p.next.FetchFeed(ctx, gameID, locale)
}
