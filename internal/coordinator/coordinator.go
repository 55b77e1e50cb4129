// Package coordinator is the entry point for tracking games. It validates and
// registers games, owns one poller per channel and drains them on shutdown.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/poller"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/registry"
)

const defaultStartWindow = 30 * time.Minute

// Options wires a Coordinator.
type Options struct {
	Registry    registry.Registry
	Feed        providers.FeedProvider
	Channels    poller.ChannelConfigs
	Scheduler   poller.Scheduler
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	Clock       clockwork.Clock
	Poller      poller.Config
	StartWindow time.Duration
}

// Coordinator tracks games per channel. Its zero value is not usable; call New.
type Coordinator struct {
	registry    registry.Registry
	feed        providers.FeedProvider
	deps        poller.Deps
	pollerCfg   poller.Config
	startWindow time.Duration
	logger      *slog.Logger
	clock       clockwork.Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	workers  map[string]*poller.Poller
	failed   map[string]*poller.Poller
	draining bool

	done     chan struct{}
	doneOnce sync.Once
}

// New builds a Coordinator. Pollers run until they finish, are stopped, or
// the coordinator drains.
func New(opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.StartWindow <= 0 {
		opts.StartWindow = defaultStartWindow
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		registry: opts.Registry,
		feed:     opts.Feed,
		deps: poller.Deps{
			Feed:      opts.Feed,
			Channels:  opts.Channels,
			Scheduler: opts.Scheduler,
			Registry:  opts.Registry,
			Logger:    opts.Logger,
			Metrics:   opts.Metrics,
			Clock:     opts.Clock,
		},
		pollerCfg:   opts.Poller,
		startWindow: opts.StartWindow,
		logger:      opts.Logger,
		clock:       opts.Clock,
		ctx:         ctx,
		cancel:      cancel,
		workers:     make(map[string]*poller.Poller),
		failed:      make(map[string]*poller.Poller),
		done:        make(chan struct{}),
	}
}

// AddGame registers game and starts polling it. With announceStart the game is
// first checked against the feed; resume passes false and skips that check.
func (c *Coordinator) AddGame(ctx context.Context, game games.ActiveGame, announceStart bool) error {
	if err := game.Validate(); err != nil {
		return &domain.ValidationError{GameID: game.GameID, Reason: err.Error()}
	}
	if c.Draining() {
		return domain.ErrShuttingDown
	}
	if announceStart {
		if err := c.validate(ctx, game); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining {
		return domain.ErrShuttingDown
	}
	if err := c.registry.Put(ctx, game); err != nil {
		return fmt.Errorf("register game %s: %w", game.GameID, err)
	}
	c.spawnLocked(game, announceStart)
	logging.Info(logging.ForGame(c.logger, game.GameID, game.ChannelID), "game added",
		logging.FieldLocale, game.Locale,
		"announce_start", announceStart,
	)
	return nil
}

func (c *Coordinator) validate(ctx context.Context, game games.ActiveGame) error {
	feed, err := c.feed.FetchFeed(ctx, game.GameID, game.Locale)
	if errors.Is(err, providers.ErrGameNotFound) {
		return &domain.ValidationError{GameID: game.GameID, Reason: "unknown game"}
	}
	if err != nil {
		return fmt.Errorf("check game %s: %w", game.GameID, err)
	}
	if feed.Status.Finished() {
		return &domain.ValidationError{GameID: game.GameID, Reason: "game has already ended"}
	}
	if !feed.StartTime.IsZero() {
		if until := feed.StartTime.Sub(c.clock.Now()); until > c.startWindow {
			return &domain.ValidationError{
				GameID: game.GameID,
				Reason: fmt.Sprintf("game starts in %s, tracking opens %s before first pitch", until.Round(time.Minute), c.startWindow),
			}
		}
	}
	return nil
}

func (c *Coordinator) spawnLocked(game games.ActiveGame, announceStart bool) {
	delete(c.failed, game.ChannelID)
	p := poller.New(game, announceStart, c.deps, c.pollerCfg)
	c.workers[game.ChannelID] = p
	p.Start(c.ctx)
	go c.reap(p)
}

// reap drops p from the worker table once it exits, unless a newer poller
// already took its channel.
func (c *Coordinator) reap(p *poller.Poller) {
	<-p.Done()
	ch := p.Game().ChannelID
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workers[ch] != p {
		return
	}
	delete(c.workers, ch)
	if p.Status().State == poller.StateFailed {
		c.failed[ch] = p
	}
}

// StopGame stops tracking on channelID and returns the game it held.
func (c *Coordinator) StopGame(ctx context.Context, channelID string) (string, error) {
	game, ok, err := c.registry.Get(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("lookup channel %s: %w", channelID, err)
	}
	if !ok {
		return "", &domain.NotFoundError{ChannelID: channelID}
	}
	if _, err := c.registry.Remove(ctx, channelID); err != nil {
		return "", fmt.Errorf("unregister channel %s: %w", channelID, err)
	}

	c.mu.Lock()
	p := c.workers[channelID]
	delete(c.failed, channelID)
	c.mu.Unlock()
	if p != nil && p.Game() == game {
		p.Stop()
	}
	logging.Info(logging.ForGame(c.logger, game.GameID, channelID), "game stopped")
	return game.GameID, nil
}

// ReloadChannel drops any cached settings for channelID so the next poll reads
// them from the source. It reports false when the source does not cache.
func (c *Coordinator) ReloadChannel(channelID string) bool {
	inv, ok := c.deps.Channels.(interface{ Invalidate(channelID string) })
	if !ok {
		return false
	}
	inv.Invalidate(channelID)
	logging.Info(c.logger, "channel settings reloaded", logging.FieldChannelID, channelID)
	return true
}

// CurrentGame returns the game tracked on channelID, if any.
func (c *Coordinator) CurrentGame(ctx context.Context, channelID string) (string, bool, error) {
	game, ok, err := c.registry.Get(ctx, channelID)
	if err != nil || !ok {
		return "", false, err
	}
	return game.GameID, true, nil
}

// ResumeAll starts a silent poller for every registered game that is not
// already being polled. It returns how many pollers were started.
func (c *Coordinator) ResumeAll(ctx context.Context) (int, error) {
	all, err := c.registry.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("list registered games: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draining {
		return 0, domain.ErrShuttingDown
	}
	started := 0
	for _, game := range all {
		if p, ok := c.workers[game.ChannelID]; ok && !p.Status().State.Terminal() {
			continue
		}
		c.spawnLocked(game, false)
		started++
	}
	logging.Info(c.logger, "resumed games", logging.FieldCount, started, "registered", len(all))
	return started, nil
}

// DrainAndShutdown refuses new games and waits up to timeout for every live
// poller to finish on its own. Pollers still running afterwards are aborted
// with their registry entries kept. Done is closed when it returns.
func (c *Coordinator) DrainAndShutdown(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	c.draining = true
	live := make([]*poller.Poller, 0, len(c.workers))
	for _, p := range c.workers {
		live = append(live, p)
	}
	c.mu.Unlock()

	logging.Info(c.logger, "draining", logging.FieldCount, len(live), "timeout_ms", timeout.Milliseconds())
	defer c.doneOnce.Do(func() { close(c.done) })

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := c.clock.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.Chan()
	}

	remaining := unfinished(live)
	if timeout > 0 {
		remaining = waitAll(ctx, remaining, deadline)
	}

	for _, p := range remaining {
		game := p.Game()
		p.Abort()
		logging.Warn(logging.ForGame(c.logger, game.GameID, game.ChannelID), "abandoned game",
			logging.FieldOutcome, metrics.ExitAbandoned,
		)
	}
	for _, p := range remaining {
		<-p.Done()
	}
	c.cancel()

	if len(remaining) > 0 {
		logging.Warn(c.logger, "drain timed out", logging.FieldCount, len(remaining))
	} else {
		logging.Info(c.logger, "drain complete")
	}
	return nil
}

// waitAll blocks until every poller is done, the deadline passes or ctx ends,
// returning the pollers still running.
func waitAll(ctx context.Context, live []*poller.Poller, deadline <-chan time.Time) []*poller.Poller {
	for i, p := range live {
		select {
		case <-p.Done():
		case <-deadline:
			return unfinished(live[i:])
		case <-ctx.Done():
			return unfinished(live[i:])
		}
	}
	return nil
}

func unfinished(list []*poller.Poller) []*poller.Poller {
	var out []*poller.Poller
	for _, p := range list {
		select {
		case <-p.Done():
		default:
			out = append(out, p)
		}
	}
	return out
}

// Live returns the number of pollers still running.
func (c *Coordinator) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.workers)
}

// Draining reports whether DrainAndShutdown has begun.
func (c *Coordinator) Draining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draining
}

// Done is closed once DrainAndShutdown has finished.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}
