package providers

import (
	"context"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// FeedProvider fetches a point-in-time snapshot of one game's live feed.
// Locale selects the language of play descriptions; providers may ignore it.
type FeedProvider interface {
	FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error)
}

// FeedProviderFunc adapts a function to FeedProvider.
type FeedProviderFunc func(ctx context.Context, gameID, locale string) (games.Feed, error)

func (f FeedProviderFunc) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	return f(ctx, gameID, locale)
}
