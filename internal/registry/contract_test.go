package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// runContract exercises behaviour every backend must share.
func runContract(t *testing.T, newRegistry func(t *testing.T) Registry) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		reg := newRegistry(t)
		game := games.NewActiveGame("745", "chan-a", "es")
		if err := reg.Put(ctx, game); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, ok, err := reg.Get(ctx, "chan-a")
		if err != nil || !ok {
			t.Fatalf("expected entry, ok=%v err=%v", ok, err)
		}
		if got != game {
			t.Fatalf("expected %+v, got %+v", game, got)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		reg := newRegistry(t)
		if _, ok, err := reg.Get(ctx, "nobody"); ok || err != nil {
			t.Fatalf("expected missing entry, ok=%v err=%v", ok, err)
		}
	})

	t.Run("put conflicts on occupied channel", func(t *testing.T) {
		reg := newRegistry(t)
		if err := reg.Put(ctx, games.NewActiveGame("1", "chan-a", "en")); err != nil {
			t.Fatalf("put: %v", err)
		}
		err := reg.Put(ctx, games.NewActiveGame("2", "chan-a", "en"))
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.GameID != "1" {
			t.Fatalf("expected conflict naming game 1, got %v", err)
		}
		got, _, _ := reg.Get(ctx, "chan-a")
		if got.GameID != "1" {
			t.Fatalf("conflicting put must not overwrite, got %+v", got)
		}
	})

	t.Run("same game on many channels", func(t *testing.T) {
		reg := newRegistry(t)
		for _, ch := range []string{"c", "a", "b"} {
			if err := reg.Put(ctx, games.NewActiveGame("99", ch, "en")); err != nil {
				t.Fatalf("put %s: %v", ch, err)
			}
		}
		all, err := reg.All(ctx)
		if err != nil {
			t.Fatalf("all: %v", err)
		}
		if len(all) != 3 || all[0].ChannelID != "a" || all[2].ChannelID != "c" {
			t.Fatalf("expected three sorted entries, got %+v", all)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		reg := newRegistry(t)
		_ = reg.Put(ctx, games.NewActiveGame("1", "chan-a", "en"))
		removed, err := reg.Remove(ctx, "chan-a")
		if err != nil || !removed {
			t.Fatalf("expected removal, removed=%v err=%v", removed, err)
		}
		removed, err = reg.Remove(ctx, "chan-a")
		if err != nil || removed {
			t.Fatalf("expected no-op second removal, removed=%v err=%v", removed, err)
		}
		if err := reg.Put(ctx, games.NewActiveGame("2", "chan-a", "en")); err != nil {
			t.Fatalf("expected channel to be free after remove: %v", err)
		}
	})

	t.Run("remove game only deletes matching value", func(t *testing.T) {
		reg := newRegistry(t)
		old := games.NewActiveGame("1", "chan-a", "en")
		newer := games.NewActiveGame("2", "chan-a", "en")
		_ = reg.Put(ctx, old)
		_, _ = reg.Remove(ctx, "chan-a")
		_ = reg.Put(ctx, newer)

		removed, err := reg.RemoveGame(ctx, old)
		if err != nil || removed {
			t.Fatalf("expected stale remove to be ignored, removed=%v err=%v", removed, err)
		}
		if got, ok, _ := reg.Get(ctx, "chan-a"); !ok || got != newer {
			t.Fatalf("expected newer game to survive, got %+v ok=%v", got, ok)
		}
		removed, err = reg.RemoveGame(ctx, newer)
		if err != nil || !removed {
			t.Fatalf("expected matching remove, removed=%v err=%v", removed, err)
		}
	})

	t.Run("all on empty registry", func(t *testing.T) {
		reg := newRegistry(t)
		all, err := reg.All(ctx)
		if err != nil || len(all) != 0 {
			t.Fatalf("expected empty list, got %+v err=%v", all, err)
		}
	})
}
