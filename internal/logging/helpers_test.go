package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestHelpersTolerateNilLogger(t *testing.T) {
	Debug(nil, "debug")
	Info(nil, "info")
	Warn(nil, "warn")
	Error(nil, "error", errors.New("boom"))
	if ForGame(nil, "1", "c") != nil {
		t.Fatalf("expected nil logger to stay nil")
	}
}

func TestErrorAppendsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	Error(logger, "fetch failed", errors.New("boom"))
	if !strings.Contains(buf.String(), "error=boom") {
		t.Fatalf("expected error field, got %s", buf.String())
	}
}

func TestForGameAddsIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	logger := ForGame(slog.New(slog.NewTextHandler(&buf, nil)), "745", "chan-9")
	logger.Info("tick")
	out := buf.String()
	if !strings.Contains(out, FieldGameID+"=745") || !strings.Contains(out, FieldChannelID+"=chan-9") {
		t.Fatalf("expected game/channel fields, got %s", out)
	}
}
