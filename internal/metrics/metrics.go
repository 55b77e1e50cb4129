package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

type trackerStats struct {
	pollerCycles  int
	pollerErrors  int
	activePollers int
	announcements map[string]int
	exits         map[string]int
}

// Recorder captures lightweight, in-memory metrics about provider calls and
// game tracking, and forwards them to OpenTelemetry when configured.
type Recorder struct {
	mu      sync.Mutex
	stats   map[string]*providerStats
	tracker trackerStats
	otel    *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*providerStats),
		tracker: trackerStats{
			announcements: make(map[string]int),
			exits:         make(map[string]int),
		},
		otel: otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider call was throttled and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.tracker.pollerCycles++
	if err != nil {
		r.tracker.pollerErrors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoller(duration, err)
	}
}

// RecordAnnouncement counts an announcement transition such as scheduled or delivered.
func (r *Recorder) RecordAnnouncement(outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.tracker.announcements[outcome]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordAnnouncement(outcome)
	}
}

// PollerStarted bumps the active poller gauge.
func (r *Recorder) PollerStarted() {
	r.adjustActive(1)
}

// RecordPollerExit lowers the active poller gauge and counts the exit outcome.
func (r *Recorder) RecordPollerExit(outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.tracker.exits[outcome]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPollerExit(outcome)
	}
	r.adjustActive(-1)
}

func (r *Recorder) adjustActive(delta int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.tracker.activePollers += delta
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordActive(int64(delta))
	}
}

// PollerCycles returns the number of poll cycles and how many of them failed.
func (r *Recorder) PollerCycles() (cycles, errors int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.pollerCycles, r.tracker.pollerErrors
}

// Announcements returns how many announcements reached the given outcome.
func (r *Recorder) Announcements(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.announcements[outcome]
}

// PollerExits returns how many pollers exited with the given outcome.
func (r *Recorder) PollerExits(outcome string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.exits[outcome]
}

// ActivePollers returns the number of running pollers.
func (r *Recorder) ActivePollers() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracker.activePollers
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}
