package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// Memory keeps active games in process memory. Entries do not survive a restart.
type Memory struct {
	mu    sync.RWMutex
	games map[string]games.ActiveGame
}

// NewMemory constructs an empty Memory registry.
func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]games.ActiveGame),
	}
}

func (m *Memory) Put(_ context.Context, game games.ActiveGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.games[game.ChannelID]; ok {
		return &domain.ConflictError{ChannelID: game.ChannelID, GameID: existing.GameID}
	}
	m.games[game.ChannelID] = game
	return nil
}

func (m *Memory) Remove(_ context.Context, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.games[channelID]
	delete(m.games, channelID)
	return ok, nil
}

func (m *Memory) RemoveGame(_ context.Context, game games.ActiveGame) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.games[game.ChannelID]; !ok || existing != game {
		return false, nil
	}
	delete(m.games, game.ChannelID)
	return true, nil
}

func (m *Memory) Get(_ context.Context, channelID string) (games.ActiveGame, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[channelID]
	return g, ok, nil
}

// All returns a sorted copy of the current entries.
func (m *Memory) All(_ context.Context) ([]games.ActiveGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]games.ActiveGame, 0, len(m.games))
	for _, g := range m.games {
		result = append(result, g)
	}
	sortByChannel(result)
	return result, nil
}

func (m *Memory) Close() error { return nil }

func sortByChannel(list []games.ActiveGame) {
	sort.Slice(list, func(i, j int) bool { return list[i].ChannelID < list[j].ChannelID })
}
