package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers/fixture"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers/statsapi"
)

func TestSelectProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.json")
	if err := os.WriteFile(path, []byte(`{"games":{"1":[{"gameId":"1"}]}}`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := selectProvider(config.FeedConfig{Provider: "statsapi"})
	if err != nil {
		t.Fatalf("statsapi: %v", err)
	}
	if _, ok := p.(*statsapi.Client); !ok {
		t.Fatalf("expected statsapi client, got %T", p)
	}

	p, err = selectProvider(config.FeedConfig{Provider: "fixture", FixturePath: path})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if _, ok := p.(*fixture.Provider); !ok {
		t.Fatalf("expected fixture provider, got %T", p)
	}

	if _, err := selectProvider(config.FeedConfig{Provider: "espn"}); err == nil || !strings.Contains(err.Error(), "espn") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestWrapRecordsAndTripsBreaker(t *testing.T) {
	rec := metrics.NewRecorder()
	calls := 0
	base := providers.FeedProviderFunc(func(ctx context.Context, gameID, locale string) (games.Feed, error) {
		calls++
		return games.Feed{}, errors.New("upstream 503")
	})

	cfg := config.FeedConfig{RatePerSecond: 1000, Burst: 10, BreakerFailures: 2, BreakerOpen: time.Minute}
	p := newProviderFactory(nil, rec).wrap(base, providerName(""), cfg)

	for i := 0; i < 4; i++ {
		if _, err := p.FetchFeed(context.Background(), "1", "en"); err == nil {
			t.Fatalf("expected error on call %d", i)
		}
	}
	if calls != 2 {
		t.Fatalf("expected breaker to stop calls after 2 failures, got %d", calls)
	}
	if got := rec.ProviderErrors("statsapi"); got != 2 {
		t.Fatalf("expected 2 recorded errors, got %d", got)
	}
	if _, err := p.FetchFeed(context.Background(), "2", "en"); errors.Is(err, providers.ErrCircuitOpen) {
		t.Fatalf("game 2 must not inherit game 1's open circuit")
	}
	if calls != 3 {
		t.Fatalf("expected game 2 to reach upstream, got %d calls", calls)
	}
}
