package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
)

type alertStore interface {
	HasOpenAlertInCooldown(ctx context.Context, commodity, regionCode string, cooldown time.Duration) (bool, error)
	InsertAlert(ctx context.Context, alert contracts.AlertRecord) error
}

type processor struct {
	store     alertStore
	publisher mq.MessageWriter
	metrics   *metrics.Metrics
	logger    *slog.Logger
	threshold int
	cooldown  time.Duration
}

// handle turns one score message into at most one stored and published
// alert. It reports whether an alert was raised.
func (p *processor) handle(ctx context.Context, msg kafka.Message) (bool, error) {
	event, err := mq.ParseMessageJSON[contracts.ScoreEvent](msg)
	if err != nil {
		p.logger.Warn("decode score event failed", "error", err, "offset", msg.Offset)
		return false, nil
	}

	alert, ok := risk.AlertFor(event, p.threshold)
	if !ok {
		return false, nil
	}

	exists, err := p.store.HasOpenAlertInCooldown(ctx, alert.Commodity, alert.RegionCode, p.cooldown)
	if err != nil {
		return false, err
	}
	if exists {
		p.logger.Debug("alert suppressed by cooldown", "commodity", alert.Commodity, "region", alert.RegionCode)
		return false, nil
	}

	if err := p.store.InsertAlert(ctx, alert); err != nil {
		return false, err
	}
	if p.metrics != nil {
		p.metrics.AlertsRaised.WithLabelValues(string(alert.Severity)).Inc()
	}

	if err := mq.PublishJSON(ctx, p.publisher, alert.Commodity+"|"+alert.RegionCode, alert); err != nil {
		return true, fmt.Errorf("publish alert %s: %w", alert.ID, err)
	}

	p.logger.Info("alert created",
		"id", alert.ID,
		"commodity", alert.Commodity,
		"region", alert.RegionCode,
		"score", alert.RiskScore,
		"severity", alert.Severity,
	)
	return true, nil
}
