package coordinator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	chansource "github.com/preston-bernstein/mlb-gamefeed-service/internal/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/poller"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/registry"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/scheduler"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/teststubs"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/testutil"
)

const waitFor = 2 * time.Second

type fixture struct {
	coord      *Coordinator
	registry   *registry.Memory
	feed       *teststubs.StubFeedProvider
	dispatcher *teststubs.RecordingDispatcher
	channels   *teststubs.StubChannelProvider
	metrics    *metrics.Recorder
	logs       *testutil.SafeBuffer
}

func newFixture(t *testing.T, frames ...games.Feed) *fixture {
	t.Helper()
	logger, buf := testutil.NewBufferLogger()
	f := &fixture{
		registry:   registry.NewMemory(),
		feed:       &teststubs.StubFeedProvider{Frames: frames},
		dispatcher: &teststubs.RecordingDispatcher{},
		channels:   &teststubs.StubChannelProvider{},
		metrics:    metrics.NewRecorder(),
		logs:       buf,
	}
	sched := scheduler.New(f.dispatcher, scheduler.Options{Logger: logger, Metrics: f.metrics})
	t.Cleanup(sched.Close)

	f.coord = New(Options{
		Registry:  f.registry,
		Feed:      f.feed,
		Channels:  f.channels,
		Scheduler: sched,
		Logger:    logger,
		Metrics:   f.metrics,
		Poller: poller.Config{
			Interval:       5 * time.Millisecond,
			FetchTimeout:   time.Second,
			DrainTimeout:   200 * time.Millisecond,
			MaxFailures:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
		},
	})
	t.Cleanup(func() { _ = f.coord.DrainAndShutdown(context.Background(), 0) })
	return f
}

func instant() channels.Config {
	return channels.Config{GameAdvisories: true, ShowScoreOnThirdOut: true}
}

func game(id, channel string) games.ActiveGame {
	return games.NewActiveGame(id, channel, "en")
}

func TestAddGameTwiceConflicts(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"))
	ctx := context.Background()

	if err := f.coord.AddGame(ctx, game("1", "c"), true); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := f.coord.AddGame(ctx, game("2", "c"), true)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) || conflict.GameID != "1" {
		t.Fatalf("expected conflict naming game 1, got %v", err)
	}
	if f.coord.Live() != 1 {
		t.Fatalf("expected one live poller, got %d", f.coord.Live())
	}
}

func TestSameGameOnManyChannels(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"))
	ctx := context.Background()
	for _, ch := range []string{"a", "b"} {
		if err := f.coord.AddGame(ctx, game("1", ch), true); err != nil {
			t.Fatalf("add on %s: %v", ch, err)
		}
	}
	if f.coord.Live() != 2 {
		t.Fatalf("expected two pollers, got %d", f.coord.Live())
	}
}

func TestAddGameValidation(t *testing.T) {
	cases := []struct {
		name  string
		frame games.Feed
		err   error
	}{
		{"finished", testutil.FinalFeed("1"), nil},
		{"too far out", testutil.PreviewFeed("1", time.Now().Add(2*time.Hour)), nil},
		{"unknown", games.Feed{}, providers.ErrGameNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.frame)
			f.feed.Err = tc.err
			err := f.coord.AddGame(context.Background(), game("1", "c"), true)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if all, _ := f.registry.All(context.Background()); len(all) != 0 {
				t.Fatalf("validation failure must not register, got %v", all)
			}
		})
	}
}

func TestAddGameAcceptsSoonStartingGame(t *testing.T) {
	f := newFixture(t, testutil.PreviewFeed("1", time.Now().Add(20*time.Minute)))
	if err := f.coord.AddGame(context.Background(), game("1", "c"), true); err != nil {
		t.Fatalf("expected game inside the start window to be accepted: %v", err)
	}
}

func TestAddGameRejectsMissingIDs(t *testing.T) {
	f := newFixture(t)
	err := f.coord.AddGame(context.Background(), game("", "c"), true)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.feed.Calls.Load() != 0 {
		t.Fatalf("expected no feed call for malformed game")
	}
}

func TestAddGameUpstreamErrorIsNotValidation(t *testing.T) {
	f := newFixture(t)
	f.feed.Err = errors.New("503")
	err := f.coord.AddGame(context.Background(), game("1", "c"), true)
	if err == nil || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected a plain upstream error, got %v", err)
	}
}

func TestResumeSkipsValidation(t *testing.T) {
	f := newFixture(t, testutil.FinalFeed("1"))
	if err := f.coord.AddGame(context.Background(), game("1", "c"), false); err != nil {
		t.Fatalf("resume-style add should skip validation: %v", err)
	}
}

func TestStopGameUnknownChannel(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"))
	ctx := context.Background()
	_ = f.coord.AddGame(ctx, game("1", "other"), true)

	_, err := f.coord.StopGame(ctx, "c")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	all, _ := f.registry.All(ctx)
	if len(all) != 1 || all[0].ChannelID != "other" {
		t.Fatalf("registry changed on failed stop: %v", all)
	}
}

func TestStopGameCancelsPendingAndFreesChannel(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1", testutil.Play(0, "single"), testutil.Play(1, "walk")))
	ctx := context.Background()
	if err := f.coord.AddGame(ctx, game("1", "c"), true); err != nil {
		t.Fatalf("add: %v", err)
	}
	testutil.Eventually(t, waitFor, func() bool {
		return f.metrics.Announcements(metrics.AnnouncementScheduled) >= 3
	}, "plays scheduled")

	id, err := f.coord.StopGame(ctx, "c")
	if err != nil || id != "1" {
		t.Fatalf("expected stop of game 1, got %q %v", id, err)
	}
	if _, ok, _ := f.coord.CurrentGame(ctx, "c"); ok {
		t.Fatalf("expected channel free after stop")
	}
	testutil.Eventually(t, waitFor, func() bool { return f.coord.Live() == 0 }, "poller exits")

	for _, text := range f.dispatcher.Texts("c") {
		if strings.HasPrefix(text, "single") || strings.HasPrefix(text, "walk") {
			t.Fatalf("delayed play delivered after stop: %q", text)
		}
	}
	if f.metrics.PollerExits(metrics.ExitStopped) != 1 {
		t.Fatalf("expected stopped exit")
	}

	if err := f.coord.AddGame(ctx, game("2", "c"), true); err != nil {
		t.Fatalf("expected channel reusable after stop: %v", err)
	}
}

func TestCurrentGame(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"))
	ctx := context.Background()
	if _, ok, err := f.coord.CurrentGame(ctx, "c"); ok || err != nil {
		t.Fatalf("expected nothing tracked, got ok=%v err=%v", ok, err)
	}
	_ = f.coord.AddGame(ctx, game("1", "c"), true)
	id, ok, err := f.coord.CurrentGame(ctx, "c")
	if err != nil || !ok || id != "1" {
		t.Fatalf("expected game 1, got %q ok=%v err=%v", id, ok, err)
	}
}

func TestGameFinishesAndLeavesRegistry(t *testing.T) {
	f := newFixture(t,
		testutil.LiveFeed("1", testutil.Play(0, "single")),
		testutil.FinalFeed("1", testutil.Play(0, "single"), testutil.ScoringPlay(1, "home_run", 0, 1)),
	)
	f.channels.Configs = map[string]channels.Config{"c": instant()}
	ctx := context.Background()
	if err := f.coord.AddGame(ctx, game("1", "c"), true); err != nil {
		t.Fatalf("add: %v", err)
	}

	testutil.Eventually(t, waitFor, func() bool { return f.coord.Live() == 0 }, "poller finished")
	if _, ok, _ := f.registry.Get(ctx, "c"); ok {
		t.Fatalf("expected entry removed after final")
	}
	texts := f.dispatcher.Texts("c")
	if len(texts) != 4 {
		t.Fatalf("expected start, two plays and final, got %v", texts)
	}
}

func TestResumeAllCatchesUpSilently(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1", testutil.Play(0, "single"), testutil.Play(1, "double")))
	f.channels.Configs = map[string]channels.Config{"a": instant(), "b": instant()}
	ctx := context.Background()
	for _, g := range []games.ActiveGame{game("1", "a"), game("1", "b")} {
		if err := f.registry.Put(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, err := f.coord.ResumeAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected two resumed, got %d %v", n, err)
	}
	if again, _ := f.coord.ResumeAll(ctx); again != 0 {
		t.Fatalf("expected live pollers to be skipped, got %d", again)
	}

	testutil.Eventually(t, waitFor, func() bool {
		views, _ := f.coord.Games(ctx)
		for _, v := range views {
			if v.Cursor != 1 {
				return false
			}
		}
		return len(views) == 2
	}, "both pollers primed")

	f.feed.AppendFrames(testutil.LiveFeed("1", testutil.Play(0, "single"), testutil.Play(1, "double"), testutil.Play(2, "triple")))
	testutil.Eventually(t, waitFor, func() bool {
		return len(f.dispatcher.Texts("a")) == 1 && len(f.dispatcher.Texts("b")) == 1
	}, "new play delivered to both channels")
	if got := f.dispatcher.Texts("a")[0]; got != "triple #2" {
		t.Fatalf("expected only the post-resume play, got %q", got)
	}
}

func TestDrainWaitsForPollerToStop(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"), testutil.LiveFeed("1"))
	f.channels.Configs = map[string]channels.Config{"c": instant()}
	ctx := context.Background()
	if err := f.coord.AddGame(ctx, game("1", "c"), true); err != nil {
		t.Fatalf("add: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- f.coord.DrainAndShutdown(ctx, waitFor) }()

	testutil.Eventually(t, waitFor, f.coord.Draining, "draining flag")
	if err := f.coord.AddGame(ctx, game("2", "d"), true); !errors.Is(err, domain.ErrShuttingDown) {
		t.Fatalf("expected shutting down, got %v", err)
	}
	select {
	case <-done:
		t.Fatalf("drain returned while the game was still live")
	case <-time.After(30 * time.Millisecond):
	}

	f.feed.AppendFrames(testutil.FinalFeed("1"))
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("drain: %v", err)
		}
	case <-time.After(waitFor):
		t.Fatalf("drain did not return after game ended")
	}
	select {
	case <-f.coord.Done():
	default:
		t.Fatalf("expected Done closed")
	}
	if _, ok, _ := f.registry.Get(ctx, "c"); ok {
		t.Fatalf("expected finished game removed")
	}
}

func TestDrainZeroTimeoutAbandons(t *testing.T) {
	f := newFixture(t, testutil.LiveFeed("1"))
	ctx := context.Background()
	if err := f.coord.AddGame(ctx, game("1", "c"), true); err != nil {
		t.Fatalf("add: %v", err)
	}

	start := time.Now()
	if err := f.coord.DrainAndShutdown(ctx, 0); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if time.Since(start) > waitFor/2 {
		t.Fatalf("zero-timeout drain took too long")
	}
	if !strings.Contains(f.logs.String(), "abandoned game") {
		t.Fatalf("expected abandoned game log, got %q", f.logs.String())
	}
	if _, ok, _ := f.registry.Get(ctx, "c"); !ok {
		t.Fatalf("abandoned game must stay registered for resume")
	}
	if f.coord.Live() != 0 {
		testutil.Eventually(t, waitFor, func() bool { return f.coord.Live() == 0 }, "worker table empty")
	}
	if _, err := f.coord.ResumeAll(ctx); !errors.Is(err, domain.ErrShuttingDown) {
		t.Fatalf("expected resume refused while draining, got %v", err)
	}
}

func TestGamesViewShowsFailedPoller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.registry.Put(ctx, game("1", "c")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	views, err := f.coord.Games(ctx)
	if err != nil || len(views) != 1 || views[0].State != StateIdle {
		t.Fatalf("expected idle view before resume, got %+v %v", views, err)
	}

	f.feed.Err = errors.New("502")
	if _, err := f.coord.ResumeAll(ctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	testutil.Eventually(t, waitFor, func() bool {
		views, _ := f.coord.Games(ctx)
		return len(views) == 1 && views[0].State == poller.StateFailed.String()
	}, "failed state visible")

	views, _ = f.coord.Games(ctx)
	if views[0].ConsecutiveFailures != 3 || views[0].LastError == "" {
		t.Fatalf("expected failure details, got %+v", views[0])
	}
	if f.coord.Live() != 0 {
		t.Fatalf("failed poller should not count as live")
	}
}

func TestReloadChannelInvalidatesCachedSettings(t *testing.T) {
	inner := &teststubs.StubChannelProvider{}
	cache := chansource.NewCache(inner, time.Hour, nil, nil)
	c := New(Options{Registry: registry.NewMemory(), Channels: cache})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cache.Get(ctx, "c1"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if got := inner.Calls.Load(); got != 1 {
		t.Fatalf("expected cached read, got %d upstream calls", got)
	}

	if !c.ReloadChannel("c1") {
		t.Fatalf("expected cached source to reload")
	}
	if _, err := cache.Get(ctx, "c1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := inner.Calls.Load(); got != 2 {
		t.Fatalf("expected reload to hit upstream, got %d calls", got)
	}
}

func TestReloadChannelWithoutCache(t *testing.T) {
	c := New(Options{Registry: registry.NewMemory(), Channels: &teststubs.StubChannelProvider{}})
	if c.ReloadChannel("c1") {
		t.Fatalf("expected uncached source to report false")
	}
}
