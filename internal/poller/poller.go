// Package poller runs one worker per tracked game. A worker fetches the live
// feed on an interval, schedules announcements for newly completed plays and
// removes the game from the registry once the final notice has gone out.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/scheduler"
)

const (
	defaultInterval        = 10 * time.Second
	defaultFetchTimeout    = 10 * time.Second
	defaultDrainTimeout    = 60 * time.Second
	defaultMaxFailures     = 10
	defaultFailureNoticeAt = 5
	defaultInitialBackoff  = 3 * time.Second
	defaultMaxBackoff      = 20 * time.Second
)

// Scheduler is the part of the announcement scheduler a poller uses.
type Scheduler interface {
	Schedule(a scheduler.Announcement, delay time.Duration) scheduler.Handle
	Cancel(h scheduler.Handle) bool
	WaitFor(ctx context.Context, handles []scheduler.Handle) error
}

// Registry is the part of the game registry a poller uses.
type Registry interface {
	RemoveGame(ctx context.Context, game games.ActiveGame) (bool, error)
}

// ChannelConfigs looks up announcement preferences for a channel.
type ChannelConfigs interface {
	Get(ctx context.Context, channelID string) (channels.Config, error)
}

// Config tunes the polling loop.
type Config struct {
	Interval        time.Duration
	FetchTimeout    time.Duration
	DrainTimeout    time.Duration
	MaxFailures     int
	FailureNoticeAt int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = defaultDrainTimeout
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.FailureNoticeAt <= 0 {
		c.FailureNoticeAt = defaultFailureNoticeAt
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = defaultMaxBackoff
	}
	return c
}

// Deps are the collaborators shared by every poller.
type Deps struct {
	Feed      providers.FeedProvider
	Channels  ChannelConfigs
	Scheduler Scheduler
	Registry  Registry
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
	Clock     clockwork.Clock
}

// Poller tracks one ActiveGame.
type Poller struct {
	game          games.ActiveGame
	announceStart bool
	cfg           Config

	feed     providers.FeedProvider
	channels ChannelConfigs
	sched    Scheduler
	registry Registry
	logger   *slog.Logger
	metrics  *metrics.Recorder
	clock    clockwork.Clock

	// Only the run goroutine touches these.
	cursor       int
	advisoryNext int
	inning       games.Inning
	primed       bool
	startSent    bool
	noticeSent   bool
	handles      []scheduler.Handle
	backoff      *backoff.ExponentialBackOff
	lastFeed     games.Feed

	// abortCtx ends everything; runCtx is its child and also ends on Stop.
	abortCtx    context.Context
	abortCancel context.CancelFunc
	runCtx      context.Context
	runCancel   context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	abortOnce sync.Once
	stopped   chan struct{}
	aborted   chan struct{}
	done      chan struct{}

	statusMu sync.RWMutex
	status   Status
}

// New builds a poller for game. announceStart is false when resuming after a
// restart, in which case the first successful poll only primes the cursor.
func New(game games.ActiveGame, announceStart bool, deps Deps, cfg Config) *Poller {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	cfg = cfg.withDefaults()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialBackoff
	b.MaxInterval = cfg.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	abortCtx, abortCancel := context.WithCancel(context.Background())
	runCtx, runCancel := context.WithCancel(abortCtx)
	return &Poller{
		game:          game,
		announceStart: announceStart,
		cfg:           cfg,
		feed:          deps.Feed,
		channels:      deps.Channels,
		sched:         deps.Scheduler,
		registry:      deps.Registry,
		logger:        logging.ForGame(deps.Logger, game.GameID, game.ChannelID),
		metrics:       deps.Metrics,
		clock:         deps.Clock,
		cursor:        -1,
		primed:        announceStart,
		backoff:       b,
		abortCtx:      abortCtx,
		abortCancel:   abortCancel,
		runCtx:        runCtx,
		runCancel:     runCancel,
		stopped:       make(chan struct{}),
		aborted:       make(chan struct{}),
		done:          make(chan struct{}),
		status:        Status{State: StateStarting, Cursor: -1},
	}
}

// Game returns the game this poller tracks.
func (p *Poller) Game() games.ActiveGame { return p.game }

// Done is closed once the poller reaches Stopped or Failed.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Start launches the polling goroutine. Later calls are no-ops. Cancelling
// ctx has the same effect as Abort.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		context.AfterFunc(ctx, p.Abort)
		p.metrics.PollerStarted()
		go p.run()
	})
}

// Stop asks the poller to drain immediately, cancelling announcements that
// have not fired yet. It does not wait and does not touch the registry.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		p.runCancel()
	})
}

// Abort ends the poller without draining or touching the registry, so the
// game is picked up again on the next resume.
func (p *Poller) Abort() {
	p.abortOnce.Do(func() {
		close(p.aborted)
		p.abortCancel()
	})
}

func (p *Poller) isAborted() bool {
	select {
	case <-p.aborted:
		return true
	default:
		return false
	}
}

func (p *Poller) isStopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}

func (p *Poller) run() {
	defer close(p.done)
	defer p.abortCancel()

	p.setState(StatePolling)
	logging.Info(p.logger, "poller started",
		logging.FieldLocale, p.game.Locale,
		"announce_start", p.announceStart,
	)

	var wait time.Duration
	for {
		timer := p.clock.NewTimer(wait)
		select {
		case <-p.abortCtx.Done():
			timer.Stop()
			p.exitAborted()
			return
		case <-p.runCtx.Done():
			timer.Stop()
			p.exitStopped()
			return
		case <-timer.Chan():
		}

		finished, err := p.poll()
		switch {
		case p.isAborted():
			p.exitAborted()
			return
		case p.isStopped():
			p.exitStopped()
			return
		case err != nil:
			failures := p.recordFailure(err)
			if failures >= p.cfg.MaxFailures {
				p.exitFailed(err, failures)
				return
			}
			if failures == p.cfg.FailureNoticeAt && !p.noticeSent {
				p.noticeSent = true
				p.announce(connectionLostText, 0)
			}
			wait = p.backoff.NextBackOff()
			logging.Warn(p.logger, "feed fetch failed",
				"error", err,
				logging.FieldAttempt, failures,
				"retry_in_ms", wait.Milliseconds(),
			)
		case finished:
			p.exitFinished()
			return
		default:
			p.backoff.Reset()
			wait = p.cfg.Interval
		}
	}
}

// poll runs one fetch cycle and reports whether the game has finished.
func (p *Poller) poll() (bool, error) {
	start := p.clock.Now()
	p.recordAttempt(start)

	ctx, cancel := context.WithTimeout(p.runCtx, p.cfg.FetchTimeout)
	feed, err := p.feed.FetchFeed(ctx, p.game.GameID, p.game.Locale)
	cancel()
	p.metrics.RecordPollerCycle(p.clock.Since(start), err)
	if err != nil {
		return false, &domain.TransientFetchError{GameID: p.game.GameID, Err: err}
	}
	if p.isStopped() || p.isAborted() {
		return false, nil
	}
	p.lastFeed = feed

	if p.noticeSent {
		p.noticeSent = false
		p.announce(connectionRestoredText, 0)
	}
	if p.announceStart && !p.startSent {
		p.startSent = true
		p.announce(renderStart(feed), 0)
	}

	if !p.primed {
		p.primed = true
		if last := feed.LastCompleteIndex(); last > p.cursor {
			p.cursor = last
		}
		if n := len(feed.Advisories); n > 0 {
			p.advisoryNext = feed.Advisories[n-1].Index + 1
		}
		logging.Info(p.logger, "caught up without announcing", logging.FieldCursor, p.cursor)
	} else {
		cfg := p.channelConfig()
		planned, next := planPlays(feed, p.cursor, cfg)
		p.schedule(planned, "play scheduled")
		p.cursor = next

		advisories, advNext := planAdvisories(feed, p.advisoryNext, cfg)
		p.schedule(advisories, "advisory scheduled")
		p.advisoryNext = advNext

		if p.inning.State != "" && feed.Inning.State != "" && feed.Inning != p.inning && !feed.Inning.Changeover() {
			p.announce(renderInning(feed.Inning), cfg.NoPlayDelay())
		}
	}
	if feed.Inning.State != "" {
		p.inning = feed.Inning
	}

	p.recordSuccess(p.clock.Now(), p.cursor)
	return feed.Status.Finished(), nil
}

func (p *Poller) schedule(planned []plannedEvent, msg string) {
	for _, pe := range planned {
		p.announce(pe.event.RenderedText, pe.delay)
		logging.Debug(p.logger, msg,
			logging.FieldPlayIndex, pe.event.Index,
			logging.FieldClass, pe.event.Classification.String(),
			logging.FieldDelayMS, pe.delay.Milliseconds(),
		)
	}
}

func (p *Poller) channelConfig() channels.Config {
	if p.channels == nil {
		return channels.Defaults()
	}
	cfg, err := p.channels.Get(p.runCtx, p.game.ChannelID)
	if err != nil {
		logging.Warn(p.logger, "channel config unavailable, using defaults", "error", err)
		return channels.Defaults()
	}
	return cfg
}

func (p *Poller) announce(text string, delay time.Duration) {
	h := p.sched.Schedule(scheduler.Announcement{
		GameID:    p.game.GameID,
		ChannelID: p.game.ChannelID,
		Text:      text,
	}, delay)
	if !h.Valid() {
		return
	}
	p.handles = append(p.handles, h)
}

// cancelPending cancels every announcement that has not fired. Handles that
// are already firing stay tracked so a drain still waits for their send.
func (p *Poller) cancelPending() int {
	kept := p.handles[:0]
	n := 0
	for _, h := range p.handles {
		if p.sched.Cancel(h) {
			n++
			continue
		}
		kept = append(kept, h)
	}
	p.handles = kept
	return n
}

// drain waits for this poller's announcements to settle within the drain
// timeout, cancelling whatever is still pending afterwards.
func (p *Poller) drain(parent context.Context) {
	p.setState(StateDraining)
	ctx, cancel := context.WithTimeout(parent, p.cfg.DrainTimeout)
	defer cancel()
	if err := p.sched.WaitFor(ctx, p.handles); err != nil {
		n := p.cancelPending()
		logging.Warn(p.logger, "drain cut short", "error", err, logging.FieldCount, n)
	}
}

func (p *Poller) exitFinished() {
	away, home := p.lastFeed.Score()
	p.announce(renderFinal(p.lastFeed), 0)
	p.drain(p.runCtx)

	if p.isAborted() {
		p.exitAborted()
		return
	}
	if p.isStopped() {
		// The coordinator owns registry removal on an explicit stop.
		p.exitStopped()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FetchTimeout)
	defer cancel()
	if _, err := p.registry.RemoveGame(ctx, p.game); err != nil {
		logging.Error(p.logger, "registry removal failed", err)
	}
	p.finish(StateStopped, metrics.ExitFinished)
	p.metrics.RecordPollerExit(metrics.ExitFinished)
	logging.Info(p.logger, "game finished",
		logging.FieldOutcome, metrics.ExitFinished,
		logging.FieldState, p.lastFeed.Status.Detailed,
		"away_score", away,
		"home_score", home,
	)
}

func (p *Poller) exitStopped() {
	n := p.cancelPending()
	p.drain(p.abortCtx)
	if p.isAborted() {
		p.exitAborted()
		return
	}
	p.finish(StateStopped, metrics.ExitStopped)
	p.metrics.RecordPollerExit(metrics.ExitStopped)
	logging.Info(p.logger, "poller stopped", logging.FieldOutcome, metrics.ExitStopped, logging.FieldCount, n)
}

func (p *Poller) exitAborted() {
	n := p.cancelPending()
	p.finish(StateStopped, metrics.ExitAbandoned)
	p.metrics.RecordPollerExit(metrics.ExitAbandoned)
	logging.Warn(p.logger, "poller aborted", logging.FieldOutcome, metrics.ExitAbandoned, logging.FieldCount, n)
}

func (p *Poller) exitFailed(err error, failures int) {
	fatal := &domain.FatalPollerError{
		GameID:    p.game.GameID,
		ChannelID: p.game.ChannelID,
		Failures:  failures,
		Err:       unwrapTransient(err),
	}
	p.finish(StateFailed, metrics.ExitFailed)
	p.metrics.RecordPollerExit(metrics.ExitFailed)
	logging.Error(p.logger, "poller gave up, registry entry kept", fatal, logging.FieldOutcome, metrics.ExitFailed)
}

func unwrapTransient(err error) error {
	var te *domain.TransientFetchError
	if errors.As(err, &te) {
		return te.Err
	}
	return err
}
