// Package registry persists which game each channel is tracking so tracking
// survives restarts. A channel holds at most one game.
package registry

import (
	"context"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// Registry is the durable channelID -> ActiveGame map.
type Registry interface {
	// Put stores game under its channel, failing with *domain.ConflictError
	// when the channel already holds a game.
	Put(ctx context.Context, game games.ActiveGame) error
	// Remove deletes the channel's entry and reports whether one existed.
	Remove(ctx context.Context, channelID string) (bool, error)
	// RemoveGame deletes the channel's entry only when it still equals game.
	RemoveGame(ctx context.Context, game games.ActiveGame) (bool, error)
	Get(ctx context.Context, channelID string) (games.ActiveGame, bool, error)
	// All returns every entry sorted by channel.
	All(ctx context.Context) ([]games.ActiveGame, error)
	Close() error
}
