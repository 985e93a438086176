package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2020-HelloWorld/masala-models/internal/config"
	"github.com/2020-HelloWorld/masala-models/internal/httpx"
	"github.com/2020-HelloWorld/masala-models/internal/logging"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/replay"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
)

const (
	tickBatch    = 25
	defaultCount = 10
	maxCount     = 500
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("replay", "info", "json").Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.New("replay", cfg.LogLevel, cfg.LogFormat)

	engine, err := risk.FromConfig(cfg)
	if err != nil {
		logger.Error("score table error", "error", err)
		os.Exit(1)
	}

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicSignals)
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	replayer := replay.New(engine, writer, cfg.HistoryDays, metrics.New(prometheus.DefaultRegisterer), logger)
	if cfg.ReplayTick > 0 {
		go replayer.Run(ctx, cfg.ReplayTick, tickBatch)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(replayer, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("replay listening", "addr", cfg.HTTPAddr, "topic", cfg.KafkaTopicSignals, "tick", cfg.ReplayTick)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("replay server error", "error", err)
		os.Exit(1)
	}
}

func newRouter(replayer *replay.Replayer, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "replay", "events_per_pass": replayer.Len()})
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Post("/v1/replay", replayHandler(replayer, logger))
	return router
}

// replayHandler publishes the next count events. An empty body replays the
// default count; a malformed one is rejected.
func replayHandler(replayer *replay.Replayer, logger *slog.Logger) http.HandlerFunc {
	type req struct {
		Count int `json:"count"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body := req{Count: defaultCount}
		if err := httpx.DecodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
			httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid replay payload: " + err.Error()})
			return
		}

		if body.Count <= 0 {
			body.Count = defaultCount
		}
		if body.Count > maxCount {
			body.Count = maxCount
		}

		sent, err := replayer.Publish(r.Context(), body.Count)
		if err != nil {
			logger.Error("replay publish failed", "error", err, "requested", body.Count)
			httpx.WriteJSON(w, http.StatusBadGateway, map[string]any{"error": "publish failed", "published": sent})
			return
		}
		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"requested": body.Count, "published": sent})
	}
}
