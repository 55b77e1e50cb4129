package server

import (
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers/fixture"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers/statsapi"
)

// providerFactory assembles the feed provider with its shared wrappers:
// instrumentation innermost, then the rate limiter, then the breaker.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.FeedConfig) (providers.FeedProvider, error) {
	base, err := selectProvider(cfg)
	if err != nil {
		return nil, err
	}
	return f.wrap(base, providerName(cfg.Provider), cfg), nil
}

func (f providerFactory) wrap(base providers.FeedProvider, name string, cfg config.FeedConfig) providers.FeedProvider {
	instrumented := providers.NewInstrumentedProvider(base, name, f.metrics, f.logger)
	limited := providers.NewRateLimitedProvider(instrumented, cfg.RatePerSecond, cfg.Burst, f.logger, f.metrics)
	return providers.NewCircuitBreakerProvider(limited, cfg.BreakerFailures, cfg.BreakerOpen, f.logger)
}

func selectProvider(cfg config.FeedConfig) (providers.FeedProvider, error) {
	switch cfg.Provider {
	case "statsapi", "":
		return statsapi.NewClient(statsapi.Config{BaseURL: cfg.BaseURL}), nil
	case "fixture":
		p, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Provider)
	}
}

func providerName(raw string) string {
	if raw == "" {
		return "statsapi"
	}
	return raw
}
