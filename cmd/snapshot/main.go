package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/2020-HelloWorld/masala-models/internal/config"
	"github.com/2020-HelloWorld/masala-models/internal/logging"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/storage"
)

// Histories are written by a few workers; each worker's generator calls
// seed their own PRNG, so nothing is shared between them.
const historyWorkers = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("snapshot", "info", "json").Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.New("snapshot", cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("snapshot failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	engine, err := risk.FromConfig(cfg)
	if err != nil {
		return err
	}

	dbPool, err := storage.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	repo := storage.NewRepository(dbPool)

	entries := engine.Table().Entries()
	snapshotID, err := repo.SaveSnapshot(ctx, cfg.TableSeed, entries)
	if err != nil {
		return err
	}
	logger.Info("snapshot stored", "snapshot_id", snapshotID, "pairs", len(entries), "seed", cfg.TableSeed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyWorkers)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			points, err := engine.History(e.Commodity, e.RegionCode, cfg.HistoryDays)
			if err != nil {
				return err
			}
			return repo.SaveRiskHistory(gctx, e.Commodity, e.RegionCode, points)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("risk histories stored", "pairs", len(entries), "days", cfg.HistoryDays)

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicRisk)
	defer writer.Close()

	if err := mq.PublishScores(ctx, writer, snapshotID, entries); err != nil {
		var kerr kafka.Error
		if errors.As(err, &kerr) && kerr.Temporary() {
			logger.Warn("kafka temporary error, scores not published", "error", kerr)
			return nil
		}
		return err
	}
	logger.Info("scores published", "topic", cfg.KafkaTopicRisk, "snapshot_id", snapshotID)
	return nil
}
