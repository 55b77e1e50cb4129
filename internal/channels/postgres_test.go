package channels

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
)

// Requires a reachable database; set POSTGRES_DSN to run.
func TestPostgresProvider(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := ConnectPostgres(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS channels (
		id TEXT PRIMARY KEY,
		only_scoring_plays BOOLEAN,
		game_advisories BOOLEAN,
		in_play_delay INTEGER,
		no_play_delay INTEGER,
		show_score_on_out3 BOOLEAN
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	full := uuid.NewString()
	partial := uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM channels WHERE id = ANY($1)`, []string{full, partial})
	})
	if _, err := pool.Exec(ctx, `INSERT INTO channels VALUES ($1, true, false, 5, 6, false)`, full); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO channels (id, in_play_delay) VALUES ($1, 30)`, partial); err != nil {
		t.Fatalf("insert: %v", err)
	}

	p := NewPostgres(pool)

	got, err := p.Get(ctx, full)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.OnlyScoringPlays || got.GameAdvisories || got.InPlayDelaySeconds != 5 || got.NoPlayDelaySeconds != 6 || got.ShowScoreOnThirdOut {
		t.Fatalf("unexpected settings %+v", got)
	}

	got, err = p.Get(ctx, partial)
	if err != nil || got.InPlayDelaySeconds != 30 || got.NoPlayDelaySeconds != 18 || !got.GameAdvisories {
		t.Fatalf("expected NULL columns to keep defaults, got %+v err=%v", got, err)
	}

	got, err = p.Get(ctx, uuid.NewString())
	if err != nil || !got.IsDefault() {
		t.Fatalf("expected defaults for missing row, got %+v err=%v", got, err)
	}
}

func TestConnectPostgresRejectsBadDSN(t *testing.T) {
	if _, err := ConnectPostgres(context.Background(), "::not a dsn::", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
