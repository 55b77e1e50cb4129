package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerOpen     = 30 * time.Second
	breakerIdle            = time.Hour
	breakerName            = "feed"
)

// breakerProvider fails fast while a game's feed keeps failing so its poller
// backs off without piling requests onto an unhealthy endpoint. Each game has
// its own breaker, so one broken feed never rejects fetches for another game.
type breakerProvider struct {
	next     FeedProvider
	failures uint32
	openFor  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	breakers map[string]*gameBreaker
}

type gameBreaker struct {
	cb       *gobreaker.CircuitBreaker
	lastUsed time.Time
}

// NewCircuitBreakerProvider trips a game's breaker after failures consecutive
// upstream errors for that game and rejects its calls for openFor before
// letting a trial request through.
func NewCircuitBreakerProvider(next FeedProvider, failures int, openFor time.Duration, logger *slog.Logger) FeedProvider {
	if failures <= 0 {
		failures = defaultBreakerFailures
	}
	if openFor <= 0 {
		openFor = defaultBreakerOpen
	}
	return &breakerProvider{
		next:     next,
		failures: uint32(failures),
		openFor:  openFor,
		logger:   logger,
		now:      time.Now,
		breakers: make(map[string]*gameBreaker),
	}
}

// breaker returns gameID's breaker, creating it on first use. Closed breakers
// idle for breakerIdle are dropped so finished games do not accumulate.
func (p *breakerProvider) breaker(gameID string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for id, b := range p.breakers {
		if id != gameID && now.Sub(b.lastUsed) > breakerIdle && b.cb.State() == gobreaker.StateClosed {
			delete(p.breakers, id)
		}
	}
	b, ok := p.breakers[gameID]
	if !ok {
		b = &gameBreaker{cb: p.newBreaker(gameID)}
		p.breakers[gameID] = b
	}
	b.lastUsed = now
	return b.cb
}

func (p *breakerProvider) newBreaker(gameID string) *gobreaker.CircuitBreaker {
	threshold := p.failures
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName + ":" + gameID,
		MaxRequests: 1,
		Timeout:     p.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logWithProvider(context.Background(), p.logger, slog.LevelWarn, breakerName, "feed circuit state changed",
				logging.FieldGameID, gameID, "from", from.String(), "to", to.String())
		},
	})
}

// countsAsHealthy keeps caller-side outcomes from tripping the breaker.
func countsAsHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrThrottled) ||
		errors.Is(err, ErrGameNotFound)
}

func (p *breakerProvider) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	if p == nil || p.next == nil {
		return games.Feed{}, ErrProviderUnavailable
	}
	out, err := p.breaker(gameID).Execute(func() (interface{}, error) {
		return p.next.FetchFeed(ctx, gameID, locale)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return games.Feed{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return games.Feed{}, err
	}
	return out.(games.Feed), nil
}

// State reports gameID's breaker state for diagnostics. A game that has never
// been fetched reads as closed.
func (p *breakerProvider) State(gameID string) string {
	p.mu.Lock()
	b, ok := p.breakers[gameID]
	p.mu.Unlock()
	if !ok {
		return gobreaker.StateClosed.String()
	}
	return b.cb.State().String()
}
