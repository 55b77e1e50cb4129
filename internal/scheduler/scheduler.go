// Package scheduler holds announcements for a delay and hands them to a
// dispatcher when their timer fires. Each announcement has its own timer, so
// two announcements with different delays may be delivered out of submission
// order.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher delivers a message to a channel.
type Dispatcher interface {
	Send(ctx context.Context, channelID, text string) error
}

// Announcement is one message bound for a channel.
type Announcement struct {
	GameID    string
	ChannelID string
	Text      string
}

// Handle identifies a scheduled announcement. The zero Handle was never scheduled.
type Handle struct {
	ID        uuid.UUID
	GameID    string
	ChannelID string
}

// Valid reports whether the handle refers to an accepted announcement.
func (h Handle) Valid() bool { return h.ID != uuid.Nil }

type entry struct {
	handle Handle
	text   string
	timer  clockwork.Timer
}

// Options configures a Scheduler.
type Options struct {
	Clock       clockwork.Clock
	SendTimeout time.Duration
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Scheduler owns every pending announcement in the process.
type Scheduler struct {
	dispatcher  Dispatcher
	clock       clockwork.Clock
	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[uuid.UUID]*entry
	sending map[uuid.UUID]struct{}
	changed chan struct{}
	closed  bool
}

// New builds a Scheduler that delivers through d.
func New(d Dispatcher, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		dispatcher:  d,
		clock:       opts.Clock,
		sendTimeout: opts.SendTimeout,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		ctx:         ctx,
		cancel:      cancel,
		pending:     make(map[uuid.UUID]*entry),
		sending:     make(map[uuid.UUID]struct{}),
		changed:     make(chan struct{}),
	}
}

// Schedule queues a for delivery after delay and returns at once. A closed
// scheduler drops the announcement and returns the zero Handle.
func (s *Scheduler) Schedule(a Announcement, delay time.Duration) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		logging.Warn(s.logger, "announcement dropped after close",
			logging.FieldGameID, a.GameID,
			logging.FieldChannelID, a.ChannelID,
		)
		return Handle{}
	}

	h := Handle{ID: uuid.New(), GameID: a.GameID, ChannelID: a.ChannelID}
	e := &entry{handle: h, text: a.Text}
	s.pending[h.ID] = e
	if delay <= 0 {
		go s.fire(h.ID)
	} else {
		e.timer = s.clock.AfterFunc(delay, func() { s.fire(h.ID) })
	}

	s.metrics.RecordAnnouncement(metrics.AnnouncementScheduled)
	logging.Debug(s.logger, "announcement scheduled",
		logging.FieldHandle, h.ID.String(),
		logging.FieldGameID, a.GameID,
		logging.FieldChannelID, a.ChannelID,
		logging.FieldDelayMS, delay.Milliseconds(),
	)
	return h
}

// Cancel prevents delivery of h. It returns false when h already fired,
// is firing, or was cancelled before.
func (s *Scheduler) Cancel(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[h.ID]
	if !ok {
		return false
	}
	s.cancelLocked(e)
	s.notifyLocked()
	return true
}

// CancelChannel cancels every pending announcement for channelID.
func (s *Scheduler) CancelChannel(channelID string) int {
	return s.cancelWhere(func(h Handle) bool { return h.ChannelID == channelID })
}

// CancelGame cancels every pending announcement for gameID across all channels.
func (s *Scheduler) CancelGame(gameID string) int {
	return s.cancelWhere(func(h Handle) bool { return h.GameID == gameID })
}

func (s *Scheduler) cancelWhere(match func(Handle) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.pending {
		if match(e.handle) {
			s.cancelLocked(e)
			n++
		}
	}
	if n > 0 {
		s.notifyLocked()
	}
	return n
}

func (s *Scheduler) cancelLocked(e *entry) {
	delete(s.pending, e.handle.ID)
	if e.timer != nil {
		e.timer.Stop()
	}
	s.metrics.RecordAnnouncement(metrics.AnnouncementCancelled)
}

// Pending counts announcements for channelID still waiting on their timer.
func (s *Scheduler) Pending(channelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.pending {
		if e.handle.ChannelID == channelID {
			n++
		}
	}
	return n
}

// WaitFor blocks until none of handles is pending or in flight, or ctx ends.
// Other announcements on the same channel are ignored.
func (s *Scheduler) WaitFor(ctx context.Context, handles []Handle) error {
	return s.waitUntil(ctx, func() bool {
		for _, h := range handles {
			if _, ok := s.pending[h.ID]; ok {
				return false
			}
			if _, ok := s.sending[h.ID]; ok {
				return false
			}
		}
		return true
	})
}

// waitUntil polls settled under s.mu each time the pending set changes.
func (s *Scheduler) waitUntil(ctx context.Context, settled func() bool) error {
	for {
		s.mu.Lock()
		if settled() {
			s.mu.Unlock()
			return nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels every pending announcement, aborts in-flight sends and
// rejects further Schedule calls.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, e := range s.pending {
		s.cancelLocked(e)
	}
	s.notifyLocked()
	s.mu.Unlock()
	s.cancel()
}

func (s *Scheduler) fire(id uuid.UUID) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.sending[id] = struct{}{}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.sendTimeout)
	err := s.dispatcher.Send(ctx, e.handle.ChannelID, e.text)
	cancel()

	logger := logging.ForGame(s.logger, e.handle.GameID, e.handle.ChannelID)
	if err != nil {
		s.metrics.RecordAnnouncement(metrics.AnnouncementFailed)
		logging.Error(logger, "announcement delivery failed", err, logging.FieldHandle, id.String())
	} else {
		s.metrics.RecordAnnouncement(metrics.AnnouncementDelivered)
		logging.Debug(logger, "announcement delivered", logging.FieldHandle, id.String())
	}

	s.mu.Lock()
	delete(s.sending, id)
	s.notifyLocked()
	s.mu.Unlock()
}

func (s *Scheduler) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}
