package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
)

// StubFeedProvider is a test double for providers.FeedProvider. Each successful
// fetch returns the next frame; the last frame repeats once the script runs out.
type StubFeedProvider struct {
	mu        sync.Mutex
	Frames    []games.Feed
	Errs      []error // per-call script; a nil entry falls through to Frames
	Err       error   // returned by every call while set
	successes int
	Calls     atomic.Int32
	Notify    chan struct{}
	LastGame  atomic.Value
}

// FetchFeed returns the scripted frame or error while tracking calls.
func (s *StubFeedProvider) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	_ = locale
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	n := int(s.Calls.Add(1)) - 1
	s.LastGame.Store(gameID)

	if err := ctx.Err(); err != nil {
		return games.Feed{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return games.Feed{}, s.Err
	}
	if n < len(s.Errs) && s.Errs[n] != nil {
		return games.Feed{}, s.Errs[n]
	}
	if len(s.Frames) == 0 {
		return games.Feed{GameID: gameID}, nil
	}
	idx := s.successes
	if idx >= len(s.Frames) {
		idx = len(s.Frames) - 1
	}
	s.successes++
	frame := s.Frames[idx]
	if frame.GameID == "" {
		frame.GameID = gameID
	}
	return frame, nil
}

// SetErr swaps the persistent error; nil restores scripted frames.
func (s *StubFeedProvider) SetErr(err error) {
	s.mu.Lock()
	s.Err = err
	s.mu.Unlock()
}

// AppendFrames extends the frame script.
func (s *StubFeedProvider) AppendFrames(frames ...games.Feed) {
	s.mu.Lock()
	s.Frames = append(s.Frames, frames...)
	s.mu.Unlock()
}

// Sent is one message captured by RecordingDispatcher.
type Sent struct {
	ChannelID string
	Text      string
}

// RecordingDispatcher is a test double for dispatch.Dispatcher.
type RecordingDispatcher struct {
	mu    sync.Mutex
	sent  []Sent
	Err   error
	Block chan struct{} // when set, Send waits for it to close or ctx to end
	Calls atomic.Int32
}

// Send records the message, optionally blocking first.
func (d *RecordingDispatcher) Send(ctx context.Context, channelID, text string) error {
	d.Calls.Add(1)
	if d.Block != nil {
		select {
		case <-d.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.sent = append(d.sent, Sent{ChannelID: channelID, Text: text})
	return nil
}

// Sent returns a copy of every delivered message.
func (d *RecordingDispatcher) Sent() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Sent(nil), d.sent...)
}

// Texts returns the delivered texts for one channel, in delivery order.
func (d *RecordingDispatcher) Texts(channelID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, s := range d.sent {
		if s.ChannelID == channelID {
			out = append(out, s.Text)
		}
	}
	return out
}

// StubChannelProvider is a test double for channels.Provider.
type StubChannelProvider struct {
	Configs map[string]channels.Config
	Err     error
	Calls   atomic.Int32
}

// Get returns the configured settings, defaults, or Err.
func (p *StubChannelProvider) Get(ctx context.Context, channelID string) (channels.Config, error) {
	_ = ctx
	p.Calls.Add(1)
	if p.Err != nil {
		return channels.Config{}, p.Err
	}
	if cfg, ok := p.Configs[channelID]; ok {
		return cfg, nil
	}
	return channels.Defaults(), nil
}
