package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
)

type instrumentedProvider struct {
	next    FeedProvider
	name    string
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewInstrumentedProvider records attempts, errors, latency and rate limits for
// every upstream call under the given provider name.
func NewInstrumentedProvider(next FeedProvider, name string, recorder *metrics.Recorder, logger *slog.Logger) FeedProvider {
	return &instrumentedProvider{
		next:    next,
		name:    name,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

func (p *instrumentedProvider) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	if p == nil || p.next == nil {
		return games.Feed{}, ErrProviderUnavailable
	}
	start := p.now()
	feed, err := p.next.FetchFeed(ctx, gameID, locale)
	elapsed := p.now().Sub(start)

	p.metrics.RecordProviderAttempt(p.name, elapsed, err)
	if rl, ok := AsRateLimitError(err); ok {
		p.metrics.RecordRateLimit(p.name, rl.RetryAfter)
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "feed rate limited",
			logging.FieldGameID, gameID, "retry_after", rl.RetryAfter)
		return feed, err
	}
	if err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "feed fetch failed",
			logging.FieldGameID, gameID, logging.FieldDurationMS, elapsed.Milliseconds(), "err", err)
		return feed, err
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, p.name, "feed fetched",
		logging.FieldGameID, gameID, logging.FieldCount, len(feed.Plays), logging.FieldDurationMS, elapsed.Milliseconds())
	return feed, nil
}
