package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// GameView joins a registry entry with the live state of its poller.
type GameView struct {
	games.ActiveGame
	State               string    `json:"state"`
	Cursor              int       `json:"cursor"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// StateIdle marks a registered game with no poller, e.g. before resume.
const StateIdle = "idle"

// Games lists every registered game with its poller state, sorted by channel.
func (c *Coordinator) Games(ctx context.Context) ([]GameView, error) {
	all, err := c.registry.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registered games: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	views := make([]GameView, 0, len(all))
	for _, game := range all {
		view := GameView{ActiveGame: game, State: StateIdle, Cursor: -1}
		p, ok := c.workers[game.ChannelID]
		if !ok {
			p, ok = c.failed[game.ChannelID]
		}
		if ok && p.Game() == game {
			st := p.Status()
			view.State = st.State.String()
			view.Cursor = st.Cursor
			view.ConsecutiveFailures = st.ConsecutiveFailures
			view.LastError = st.LastError
			view.LastSuccess = st.LastSuccess
		}
		views = append(views, view)
	}
	return views, nil
}
