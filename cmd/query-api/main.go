package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/2020-HelloWorld/masala-models/internal/api"
	"github.com/2020-HelloWorld/masala-models/internal/config"
	"github.com/2020-HelloWorld/masala-models/internal/logging"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("query-api", "info", "json").Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.New("query-api", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := risk.FromConfig(cfg)
	if err != nil {
		logger.Error("score table error", "error", err)
		os.Exit(1)
	}

	opts := []api.Option{api.WithMetrics(metrics.New(prometheus.DefaultRegisterer), prometheus.DefaultGatherer)}

	dbPool, err := storage.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Warn("database unavailable, persisted routes disabled", "error", err)
	} else {
		defer dbPool.Close()
		repo := storage.NewRepository(dbPool)
		opts = append(opts,
			api.WithAlerts(repo),
			api.WithSnapshots(repo),
			api.WithInterventions(repo),
			api.WithAudit(repo),
		)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(engine, logger, opts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("query-api listening", "addr", cfg.HTTPAddr, "pairs", engine.Table().Len(), "seed", cfg.TableSeed)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("query-api server error", "error", err)
		os.Exit(1)
	}
}
