package replay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/mq"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

var fixedNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func newReplayer(t *testing.T, w mq.MessageWriter, days int, m *metrics.Metrics) *Replayer {
	t.Helper()
	regions := []contracts.Region{{Code: "KA", Name: "Karnataka"}, {Code: "MH", Name: "Maharashtra"}}
	table, err := synth.BuildScoreTable([]string{"Tomato"}, regions, synth.TableOptions{Timestamp: fixedNow})
	require.NoError(t, err)
	engine := risk.NewEngine(table, risk.WithClock(func() time.Time { return fixedNow }))
	return New(engine, w, days, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNextAdvancesAllStreamsTogether(t *testing.T) {
	r := newReplayer(t, &recordingWriter{}, 3, nil)
	require.Equal(t, 2*5*3, r.Len())

	first, err := r.Next(10)
	require.NoError(t, err)
	for _, ev := range first {
		assert.Equal(t, "2026-02-27", ev.Point.Date)
	}
	assert.Equal(t, contracts.SignalMarket, first[0].SignalType)
	assert.Equal(t, "KA", first[0].RegionCode)
	assert.Equal(t, "MH", first[5].RegionCode)

	second, err := r.Next(10)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", second[0].Point.Date)

	want, err := synth.SignalSeries("Tomato", "KA", contracts.SignalClimate, synth.HistoryOptions{Days: 3, End: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, want[1], second[2].Point)
}

func TestNextWrapsAfterFullPass(t *testing.T) {
	r := newReplayer(t, &recordingWriter{}, 2, nil)

	_, err := r.Next(r.Len())
	require.NoError(t, err)
	again, err := r.Next(1)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", again[0].Point.Date)
}

func TestPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	w := &recordingWriter{}
	r := newReplayer(t, w, 3, m)

	sent, err := r.Publish(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sent)
	require.Len(t, w.msgs, 4)
	assert.Equal(t, "Tomato|KA|market", string(w.msgs[0].Key))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SignalsReplayed))

	ev, err := mq.ParseMessageJSON[contracts.SignalMessage](w.msgs[1])
	require.NoError(t, err)
	assert.Equal(t, contracts.SignalLogistics, ev.SignalType)
}

func TestPublishWriteError(t *testing.T) {
	r := newReplayer(t, &recordingWriter{err: errors.New("broker down")}, 3, nil)
	sent, err := r.Publish(context.Background(), 2)
	assert.Error(t, err)
	assert.Zero(t, sent)
}
