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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2020-HelloWorld/masala-models/internal/config"
	"github.com/2020-HelloWorld/masala-models/internal/logging"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("alert-service", "info", "json").Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.New("alert-service", cfg.LogLevel, cfg.LogFormat)
	m := metrics.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("database error", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	metricsServer := &http.Server{Addr: cfg.HTTPAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer metricsServer.Close()

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicRisk, cfg.ConsumerGroupPrefix+"-alert-service")
	defer reader.Close()
	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicAlerts)
	defer writer.Close()

	proc := &processor{
		store:     storage.NewRepository(dbPool),
		publisher: writer,
		metrics:   m,
		logger:    logger,
		threshold: cfg.AlertThreshold,
		cooldown:  cfg.AlertCooldown,
	}

	logger.Info("consuming scores",
		"topic", cfg.KafkaTopicRisk,
		"alerts_topic", cfg.KafkaTopicAlerts,
		"threshold", cfg.AlertThreshold,
		"cooldown", cfg.AlertCooldown,
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("alert-service shutting down")
				return
			}
			logger.Error("read error", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if _, err := proc.handle(ctx, msg); err != nil {
			logger.Error("score event not processed", "error", err, "offset", msg.Offset)
		}
	}
}
