package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
)

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := httptest.NewRequest(http.MethodGet, "/req", nil)
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
}

func TestFeedFixtures(t *testing.T) {
	live := LiveFeed("1", Play(0, "single"), ScoringPlay(1, "home_run", 2, 0))
	if live.Status.Finished() {
		t.Fatalf("expected live feed to be in progress")
	}
	if away, home := live.Score(); away != 2 || home != 0 {
		t.Fatalf("unexpected score %d-%d", away, home)
	}
	if live.Plays[0].Description != "single #0" {
		t.Fatalf("unexpected description %q", live.Plays[0].Description)
	}
	if !FinalFeed("1").Status.Finished() {
		t.Fatalf("expected final feed to be finished")
	}
	start := time.Now().Add(time.Hour)
	if !PreviewFeed("1", start).StartTime.Equal(start) {
		t.Fatalf("expected preview start time passthrough")
	}
}

func TestEventually(t *testing.T) {
	calls := 0
	Eventually(t, time.Second, func() bool {
		calls++
		return calls >= 3
	}, "counter")
	if calls < 3 {
		t.Fatalf("expected polling until condition held")
	}
}

func TestStubHTTPServerModes(t *testing.T) {
	sh := &StubHTTPServer{ListenErr: errors.New("boom"), ShutdownErr: errors.New("down")}
	if err := sh.ListenAndServe(); err == nil {
		t.Fatalf("expected configured listen error")
	}
	if err := sh.Shutdown(context.Background()); err == nil {
		t.Fatalf("expected configured shutdown error")
	}
	if sh.ListenCalls() != 1 || sh.ShutdownCalls() != 1 {
		t.Fatalf("expected one listen and one shutdown, got %d/%d", sh.ListenCalls(), sh.ShutdownCalls())
	}
	if sh.Handler() == nil {
		t.Fatalf("expected fallback handler")
	}

	if err := ListenFailingServer().ListenAndServe(); !errors.Is(err, ErrListen) {
		t.Fatalf("expected ErrListen, got %v", err)
	}
	if err := ClosedServer().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected ErrServerClosed, got %v", err)
	}

	b := BlockingServer()
	done := make(chan error, 1)
	go func() { done <- b.Shutdown(context.Background()) }()
	close(b.Unblock)
	if err := <-done; err != nil {
		t.Fatalf("expected nil shutdown err, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := BlockingServer().Shutdown(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled shutdown, got %v", err)
	}
}

func TestLoggerAndMetricsHelpers(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello", "k", "v")
	if buf.Len() == 0 {
		t.Fatalf("expected buffered log output")
	}
	fake := &FakeTelemetry{Handler: http.NewServeMux()}
	rec, handler, shutdown, err := fake.Setup(context.Background(), metrics.TelemetryConfig{Port: "9100"})
	if err != nil || rec == nil || handler == nil {
		t.Fatalf("expected recorder and handler, got err=%v", err)
	}
	if fake.Config.Port != "9100" {
		t.Fatalf("expected config captured, got %+v", fake.Config)
	}
	_ = shutdown(context.Background())
	if fake.Shutdowns() != 1 {
		t.Fatalf("expected one shutdown, got %d", fake.Shutdowns())
	}

	failing := &FakeTelemetry{Err: errors.New("exporter down")}
	if _, _, _, err := failing.Setup(context.Background(), metrics.TelemetryConfig{}); err == nil {
		t.Fatalf("expected configured error")
	}
}
