package providers

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProviderUnavailable is returned when a wrapper has nothing to delegate to.
	ErrProviderUnavailable = errors.New("feed provider unavailable")
	// ErrGameNotFound means the upstream does not know the requested game.
	ErrGameNotFound = errors.New("game not found upstream")
	// ErrThrottled means the local limiter refused to wait for a token.
	ErrThrottled = errors.New("feed request throttled")
	// ErrCircuitOpen means recent upstream failures tripped the breaker.
	ErrCircuitOpen = errors.New("feed circuit open")
)

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// StatusError reports an unexpected upstream HTTP status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}
