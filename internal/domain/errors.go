package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request that can never succeed as given.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a channel that is already tracking a game.
	ErrConflict = errors.New("channel already tracking a game")
	// ErrNotFound marks a channel with no tracked game.
	ErrNotFound = errors.New("no active game for channel")
	// ErrShuttingDown is returned for new work once draining has begun.
	ErrShuttingDown = errors.New("tracker is shutting down")
	// ErrTransientFetch marks a feed fetch that may succeed on retry.
	ErrTransientFetch = errors.New("transient feed fetch failure")
	// ErrFatalPoller marks a poller that exhausted its retry budget.
	ErrFatalPoller = errors.New("poller retry budget exhausted")
)

// ValidationError explains why a game cannot be tracked.
type ValidationError struct {
	GameID string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.GameID == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: game %s: %s", ErrValidation, e.GameID, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports the game already held by a channel.
type ConflictError struct {
	ChannelID string
	GameID    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: channel %s is tracking game %s", ErrConflict, e.ChannelID, e.GameID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError reports a channel with nothing to stop or look up.
type NotFoundError struct {
	ChannelID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.ChannelID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransientFetchError wraps an upstream failure observed while polling.
type TransientFetchError struct {
	GameID string
	Err    error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch feed for game %s: %v", e.GameID, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

func (e *TransientFetchError) Is(target error) bool { return target == ErrTransientFetch }

// FatalPollerError is logged when a poller gives up on a game.
type FatalPollerError struct {
	GameID    string
	ChannelID string
	Failures  int
	Err       error
}

func (e *FatalPollerError) Error() string {
	return fmt.Sprintf("%s: game %s channel %s after %d failures: %v", ErrFatalPoller, e.GameID, e.ChannelID, e.Failures, e.Err)
}

func (e *FatalPollerError) Unwrap() error { return e.Err }

func (e *FatalPollerError) Is(target error) bool { return target == ErrFatalPoller }
