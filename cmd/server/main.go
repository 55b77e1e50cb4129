package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/config"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/logging"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.Metrics.ServiceName,
		Version: appVersion,
	})
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	srv.Run(ctx, stop)
	return 0
}
