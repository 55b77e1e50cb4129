// Package fixture replays scripted game feeds from a JSON file so the tracker
// can run end to end without the live upstream.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
)

// file is the on-disk layout: each game maps to the frames returned by
// successive fetches.
type file struct {
	Games map[string][]games.Feed `json:"games"`
}

// Provider returns one frame per fetch per game, repeating the last frame
// once the script is exhausted.
type Provider struct {
	mu     sync.Mutex
	frames map[string][]games.Feed
	cursor map[string]int
}

// New creates a provider from in-memory frames.
func New(frames map[string][]games.Feed) *Provider {
	copied := make(map[string][]games.Feed, len(frames))
	for id, list := range frames {
		copied[id] = append([]games.Feed(nil), list...)
	}
	return &Provider{
		frames: copied,
		cursor: make(map[string]int),
	}
}

// Load reads frames from a JSON file.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return New(f.Games), nil
}

// FetchFeed returns the next frame for gameID.
func (p *Provider) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	_ = locale
	if err := ctx.Err(); err != nil {
		return games.Feed{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	list, ok := p.frames[gameID]
	if !ok || len(list) == 0 {
		return games.Feed{}, fmt.Errorf("%w: %s", providers.ErrGameNotFound, gameID)
	}
	idx := p.cursor[gameID]
	if idx >= len(list) {
		idx = len(list) - 1
	} else {
		p.cursor[gameID] = idx + 1
	}
	frame := list[idx]
	if frame.GameID == "" {
		frame.GameID = gameID
	}
	return frame, nil
}

// Games lists the game IDs the fixture can serve.
func (p *Provider) Games() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.frames))
	for id := range p.frames {
		ids = append(ids, id)
	}
	return ids
}
