package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
)

// Telegram allows roughly one message per second per chat.
const defaultTelegramInterval = time.Second

type chattableSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type chatGate struct {
	mu   sync.Mutex
	last time.Time
}

// TelegramDispatcher posts announcements through the Bot API. Channel IDs are
// numeric chat IDs. Sends to one chat are serialised and spaced by interval.
type TelegramDispatcher struct {
	bot      chattableSender
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu    sync.Mutex
	gates map[int64]*chatGate
}

// NewTelegramDispatcher authenticates with token and returns a dispatcher.
func NewTelegramDispatcher(token string, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) (*TelegramDispatcher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false
	logging.Info(logger, "telegram dispatcher authorized", "bot", bot.Self.UserName)
	return newTelegramDispatcher(bot, interval, clock, logger), nil
}

func newTelegramDispatcher(bot chattableSender, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *TelegramDispatcher {
	if interval <= 0 {
		interval = defaultTelegramInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TelegramDispatcher{
		bot:      bot,
		interval: interval,
		clock:    clock,
		logger:   logger,
		gates:    make(map[int64]*chatGate),
	}
}

func (d *TelegramDispatcher) Send(ctx context.Context, channelID, text string) error {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", channelID, err)
	}

	gate := d.gate(chatID)
	gate.mu.Lock()
	defer gate.mu.Unlock()

	if !gate.last.IsZero() {
		if wait := d.interval - d.clock.Since(gate.last); wait > 0 {
			select {
			case <-d.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	_, err = d.bot.Send(tgbotapi.NewMessage(chatID, text))
	gate.last = d.clock.Now()
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			logging.Warn(d.logger, "telegram rate limited", logging.FieldChannelID, channelID, "retry_after_s", apiErr.RetryAfter)
		}
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

func (d *TelegramDispatcher) gate(chatID int64) *chatGate {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.gates[chatID]
	if !ok {
		g = &chatGate{}
		d.gates[chatID] = g
	}
	return g
}
