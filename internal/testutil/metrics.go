package testutil

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
)

// TelemetrySetup matches metrics.Setup so tests can replace it.
type TelemetrySetup func(context.Context, metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error)

// FakeTelemetry stands in for metrics.Setup and records what it was given.
type FakeTelemetry struct {
	Handler http.Handler
	Err     error

	Config    metrics.TelemetryConfig
	shutdowns atomic.Int32
}

// Setup returns an in-memory recorder, Handler, and a counting shutdown, or Err.
func (f *FakeTelemetry) Setup(_ context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
	f.Config = cfg
	if f.Err != nil {
		return nil, nil, nil, f.Err
	}
	return metrics.NewRecorder(), f.Handler, func(context.Context) error {
		f.shutdowns.Add(1)
		return nil
	}, nil
}

// Shutdowns reports how many times the returned shutdown ran.
func (f *FakeTelemetry) Shutdowns() int { return int(f.shutdowns.Load()) }
