// Package dispatch delivers rendered announcements to chat channels.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

// Dispatcher sends one plain-text message to a channel.
type Dispatcher interface {
	Send(ctx context.Context, channelID, text string) error
}

// LogDispatcher writes announcements to the structured log instead of a chat.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher returns a dispatcher that logs at info level.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, channelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logging.Info(logging.FromContext(ctx, d.logger), "announcement", logging.FieldChannelID, channelID, "text", text)
	return nil
}

// Open builds the dispatcher named by cfg.Kind.
func Open(cfg config.DispatchConfig, clock clockwork.Clock, logger *slog.Logger) (Dispatcher, error) {
	switch cfg.Kind {
	case "", "log":
		return NewLogDispatcher(logger), nil
	case "telegram":
		return NewTelegramDispatcher(cfg.TelegramToken, cfg.TelegramMinPeriod, clock, logger)
	default:
		return nil, fmt.Errorf("unknown dispatcher %q", cfg.Kind)
	}
}
