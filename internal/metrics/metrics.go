package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SeriesGenerated *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SignalsReplayed prometheus.Counter
	AlertsRaised    *prometheus.CounterVec
}

// New registers the collectors with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SeriesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masala_series_generated_total",
			Help: "Synthetic series generated, by kind",
		}, []string{"kind"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "masala_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "status"}),
		SignalsReplayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "masala_signals_replayed_total",
			Help: "Signal events published to the signals topic",
		}),
		AlertsRaised: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "masala_alerts_raised_total",
			Help: "Alerts created, by severity",
		}, []string{"severity"}),
	}
}
