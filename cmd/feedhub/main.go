package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/xrplwatch/feedhub/pkg/backend"
	"github.com/xrplwatch/feedhub/pkg/config"
	"github.com/xrplwatch/feedhub/pkg/feed"
	"github.com/xrplwatch/feedhub/pkg/gateway"
	"github.com/xrplwatch/feedhub/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			fallback, _ := logging.NewDefaultLogger()
			fallback.ComponentError(logging.ComponentGeneral, "failed to load config", zap.Error(err))
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := setupLogger(cfg.Logging)

	store, err := backend.NewSQLiteBackend(cfg.Backend.Path, logger)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to open backend", zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	executor := buildExecutor(cfg.Feed)
	defer executor.Stop()

	registry := feed.NewRegistry(store, executor, logger)
	defer registry.Close()

	server := gateway.NewServer(cfg, registry, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		logger.ComponentInfo(logging.ComponentGeneral, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.ComponentError(logging.ComponentGeneral, "server error", zap.Error(err))
		os.Exit(1)
	}
	logger.ComponentInfo(logging.ComponentGeneral, "shutdown complete")
}

func setupLogger(cfg config.LoggingConfig) *logging.ColoredLogger {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var logger *logging.ColoredLogger
	var err error
	if cfg.File != "" {
		logger, err = logging.NewFileLogger(level, cfg.File)
	} else {
		logger, err = logging.NewColoredLogger(level, cfg.Colors)
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func buildExecutor(cfg config.FeedConfig) feed.Executor {
	if cfg.Executor == "sync" {
		return feed.SyncExecutor{}
	}
	return feed.NewPoolExecutor(cfg.Workers)
}
