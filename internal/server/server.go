package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/channels"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/coordinator"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/dispatch"
	httpserver "github.com/preston-bernstein/mlb-gamefeed-service/internal/http"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/http/handlers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/http/middleware"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/metrics"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/poller"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/registry"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/scheduler"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	registry      registry.Registry
	scheduler     *scheduler.Scheduler
	coordinator   *coordinator.Coordinator
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
	closers       []func()
	ready         atomic.Bool
}

// deps are the externally backed collaborators a Server is assembled from.
type deps struct {
	registry   registry.Registry
	channels   channels.Provider
	feed       providers.FeedProvider
	dispatcher dispatch.Dispatcher
	clock      clockwork.Clock
	closers    []func()
}

// New opens the registry, channel settings, dispatcher and feed named by cfg
// and wires them into a tracker.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, nil)
	clock := clockwork.NewRealClock()

	var closers []func()
	fail := func(err error) (*Server, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		if metricsShutdown != nil {
			_ = metricsShutdown(context.Background())
		}
		return nil, err
	}

	reg, err := registry.Open(ctx, cfg.Registry, logger)
	if err != nil {
		return fail(fmt.Errorf("open registry: %w", err))
	}
	closers = append(closers, func() { _ = reg.Close() })

	chans, closeChans, err := channels.Open(ctx, cfg.Channels, clock, logger)
	if err != nil {
		return fail(fmt.Errorf("open channel settings: %w", err))
	}
	closers = append(closers, closeChans)

	dispatcher, err := dispatch.Open(cfg.Dispatch, clock, logger)
	if err != nil {
		return fail(fmt.Errorf("open dispatcher: %w", err))
	}

	feed, err := newProviderFactory(logger, recorder).build(cfg.Feed)
	if err != nil {
		return fail(fmt.Errorf("build feed provider: %w", err))
	}

	srv := newServerWithDeps(cfg, logger, recorder, deps{
		registry:   reg,
		channels:   chans,
		feed:       feed,
		dispatcher: dispatcher,
		clock:      clock,
		closers:    []func(){closeChans},
	})
	srv.metricsServer = metricsSrv
	srv.metricsStop = metricsShutdown
	return srv, nil
}

func newServerWithDeps(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder, d deps) *Server {
	if recorder == nil {
		recorder = metrics.NewRecorder()
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}

	sched := scheduler.New(d.dispatcher, scheduler.Options{
		Clock:       d.clock,
		SendTimeout: cfg.Tracking.SendTimeout,
		Logger:      logger,
		Metrics:     recorder,
	})
	coord := coordinator.New(coordinator.Options{
		Registry:    d.registry,
		Feed:        d.feed,
		Channels:    d.channels,
		Scheduler:   sched,
		Logger:      logger,
		Metrics:     recorder,
		Clock:       d.clock,
		Poller:      pollerConfig(cfg.Tracking),
		StartWindow: cfg.Tracking.StartWindow,
	})

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		metrics:     recorder,
		registry:    d.registry,
		scheduler:   sched,
		coordinator: coord,
		closers:     d.closers,
	}
	s.httpServer = buildHTTPServer(cfg, coord, logger, recorder, s.ready.Load)
	return s
}

func pollerConfig(t config.TrackingConfig) poller.Config {
	return poller.Config{
		Interval:        t.PollInterval,
		FetchTimeout:    t.FetchTimeout,
		DrainTimeout:    t.DrainTimeout,
		MaxFailures:     t.MaxFailures,
		FailureNoticeAt: t.FailureNoticeAt,
	}
}

func buildHTTPServer(cfg config.Config, coord *coordinator.Coordinator, logger *slog.Logger, recorder *metrics.Recorder, readyFn func() bool) httpServer {
	handler := handlers.NewHandler(coord, logger, readyFn)
	var admin *handlers.AdminHandler
	if cfg.AdminToken != "" {
		admin = handlers.NewAdminHandler(coord, cfg.AdminToken, logger)
	}
	router := httpserver.NewRouter(handler, admin)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           wrapped,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the listeners, resumes registered games, then waits for context
// cancellation to drain and shut down.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.resume(ctx, stop)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

// resume restarts pollers for every registered game. The service reports
// ready only once this has succeeded.
func (s *Server) resume(ctx context.Context, stop context.CancelFunc) {
	n, err := s.coordinator.ResumeAll(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("resume failed", "error", err)
		}
		if stop != nil {
			stop()
		}
		return
	}
	s.ready.Store(true)
	if s.logger != nil {
		s.logger.Info("resumed registered games", slog.Int(logging.FieldCount, n))
	}
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown drains pollers, then closes listeners and stores.
func (s *Server) gracefulShutdown() {
	if err := s.coordinator.DrainAndShutdown(context.Background(), s.cfg.Tracking.ShutdownDrain); err != nil && s.logger != nil {
		s.logger.Warn("drain incomplete", "error", err)
	}
	s.scheduler.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.registry != nil {
		if err := s.registry.Close(); err != nil && s.logger != nil {
			s.logger.Warn("registry close failed", "error", err)
		}
	}
	for _, closeFn := range s.closers {
		if closeFn != nil {
			closeFn()
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
