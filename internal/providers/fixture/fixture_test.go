package fixture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
)

func TestFetchFeedAdvancesAndRepeatsLastFrame(t *testing.T) {
	p := New(map[string][]games.Feed{
		"1": {
			{Status: games.Status{Abstract: "Live"}},
			{Status: games.Status{Abstract: "Final", Final: true}},
		},
	})
	ctx := context.Background()

	first, err := p.FetchFeed(ctx, "1", "en")
	if err != nil || first.Status.Finished() || first.GameID != "1" {
		t.Fatalf("unexpected first frame %+v err=%v", first, err)
	}
	for i := 0; i < 3; i++ {
		next, err := p.FetchFeed(ctx, "1", "en")
		if err != nil || !next.Status.Finished() {
			t.Fatalf("expected final frame to repeat, got %+v err=%v", next, err)
		}
	}
}

func TestFetchFeedUnknownGame(t *testing.T) {
	p := New(nil)
	if _, err := p.FetchFeed(context.Background(), "missing", "en"); !errors.Is(err, providers.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestLoadReadsJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.json")
	body := `{"games": {"745": [{"status": {"abstractGameState": "Live"}, "awayTeam": "Mets", "plays": [{"index": 0, "isComplete": true, "eventType": "single", "description": "Single."}]}]}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	feed, err := p.FetchFeed(context.Background(), "745", "en")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if feed.AwayTeam != "Mets" || len(feed.Plays) != 1 || feed.Plays[0].EventType != "single" {
		t.Fatalf("unexpected feed %+v", feed)
	}
	if ids := p.Games(); len(ids) != 1 || ids[0] != "745" {
		t.Fatalf("unexpected game list %v", ids)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected missing file error")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("{"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFetchFeedHonoursCanceledContext(t *testing.T) {
	p := New(map[string][]games.Feed{"1": {{}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.FetchFeed(ctx, "1", "en"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestLoadSampleFixture(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "..", "fixtures", "feeds.json"))
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	ctx := context.Background()
	var last games.Feed
	for i := 0; i < 4; i++ {
		last, err = p.FetchFeed(ctx, "745123", "en")
		if err != nil {
			t.Fatalf("fetch frame %d: %v", i, err)
		}
	}
	if !last.Status.Finished() {
		t.Fatalf("expected sample to end final, got %+v", last.Status)
	}
	if last.LastCompleteIndex() != 5 {
		t.Fatalf("expected six complete plays, got last index %d", last.LastCompleteIndex())
	}
}
