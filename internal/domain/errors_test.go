package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation", &ValidationError{GameID: "1", Reason: "already final"}, ErrValidation},
		{"conflict", &ConflictError{ChannelID: "c", GameID: "1"}, ErrConflict},
		{"not found", &NotFoundError{ChannelID: "c"}, ErrNotFound},
		{"transient", &TransientFetchError{GameID: "1", Err: errors.New("502")}, ErrTransientFetch},
		{"fatal", &FatalPollerError{GameID: "1", ChannelID: "c", Failures: 10, Err: errors.New("502")}, ErrFatalPoller},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("add game: %w", tc.err)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Fatalf("expected %v to match sentinel %v", wrapped, tc.sentinel)
			}
			if tc.err.Error() == "" {
				t.Fatalf("expected non-empty message")
			}
		})
	}
}

func TestTransientFetchErrorUnwraps(t *testing.T) {
	root := errors.New("connection reset")
	err := &TransientFetchError{GameID: "9", Err: root}
	if !errors.Is(err, root) {
		t.Fatalf("expected unwrap to reach root cause")
	}
	if !strings.Contains(err.Error(), "9") {
		t.Fatalf("expected game id in message, got %q", err.Error())
	}
}

func TestConflictDoesNotMatchNotFound(t *testing.T) {
	if errors.Is(&ConflictError{ChannelID: "c"}, ErrNotFound) {
		t.Fatalf("conflict must not match not found")
	}
}
