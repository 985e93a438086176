// Package replay streams generated signal series to the signals topic one
// day at a time, all streams advancing together.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

type stream struct {
	commodity string
	region    string
	signal    contracts.SignalType
}

type Replayer struct {
	engine  *risk.Engine
	writer  mq.MessageWriter
	metrics *metrics.Metrics
	logger  *slog.Logger
	days    int

	mu      sync.Mutex
	streams []stream
	cursor  int
	series  map[int][]contracts.SignalPoint
}

func New(engine *risk.Engine, writer mq.MessageWriter, days int, m *metrics.Metrics, logger *slog.Logger) *Replayer {
	if days <= 0 {
		days = synth.DefaultDays
	}
	table := engine.Table()
	streams := make([]stream, 0, table.Len()*len(synth.SignalTypes()))
	for _, e := range table.Entries() {
		for _, s := range synth.SignalTypes() {
			streams = append(streams, stream{commodity: e.Commodity, region: e.RegionCode, signal: s})
		}
	}
	return &Replayer{
		engine:  engine,
		writer:  writer,
		metrics: m,
		logger:  logger,
		days:    days,
		streams: streams,
		series:  make(map[int][]contracts.SignalPoint, len(streams)),
	}
}

// Len is the number of events in one full pass.
func (r *Replayer) Len() int {
	return len(r.streams) * r.days
}

// Next builds the next n events and advances the cursor, wrapping after a
// full pass.
func (r *Replayer) Next(n int) ([]contracts.SignalMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.streams) == 0 {
		return nil, nil
	}
	events := make([]contracts.SignalMessage, 0, n)
	for i := 0; i < n; i++ {
		day := r.cursor / len(r.streams)
		idx := r.cursor % len(r.streams)
		st := r.streams[idx]

		points, ok := r.series[idx]
		if !ok {
			var err error
			points, err = r.engine.Signals(st.commodity, st.region, st.signal, r.days)
			if err != nil {
				return nil, fmt.Errorf("generate %s/%s/%s: %w", st.commodity, st.region, st.signal, err)
			}
			r.series[idx] = points
		}

		events = append(events, contracts.SignalMessage{
			ID:         uuid.NewString(),
			Commodity:  st.commodity,
			RegionCode: st.region,
			SignalType: st.signal,
			Point:      points[day],
			EmittedAt:  time.Now().UTC(),
		})
		r.cursor = (r.cursor + 1) % r.Len()
	}
	return events, nil
}

// Publish writes the next n events in one batch and reports how many were sent.
func (r *Replayer) Publish(ctx context.Context, n int) (int, error) {
	events, err := r.Next(n)
	if err != nil {
		return 0, err
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := mq.EncodeJSON(ev.Key(), ev)
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	if err := r.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish signals: %w", err)
	}
	if r.metrics != nil {
		r.metrics.SignalsReplayed.Add(float64(len(msgs)))
	}
	return len(msgs), nil
}

// Run publishes batch events every tick until ctx is done.
func (r *Replayer) Run(ctx context.Context, tick time.Duration, batch int) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Publish(ctx, batch); err != nil {
				r.logger.Error("replay publish failed", "error", err)
			}
		}
	}
}
