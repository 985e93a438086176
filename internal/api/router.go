package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/metrics"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

// The stores below back the persisted routes; *storage.Repository
// implements all of them.

type AlertStore interface {
	ListAlerts(ctx context.Context, status string, limit int) ([]contracts.AlertRecord, error)
	UpdateAlertStatus(ctx context.Context, id, status, actor string) error
	AlertSummary(ctx context.Context) (contracts.AlertSummary, error)
}

type SnapshotStore interface {
	LatestSnapshotID(ctx context.Context) (string, error)
	ListScores(ctx context.Context, snapshotID string, level contracts.RiskLevel, limit int) ([]contracts.CurrentScoreEntry, error)
}

type InterventionStore interface {
	InsertIntervention(ctx context.Context, rec contracts.InterventionRecord) (contracts.InterventionRecord, error)
	ListInterventions(ctx context.Context, commodity, regionCode string, limit int) ([]contracts.InterventionRecord, error)
}

type AuditStore interface {
	ListAudit(ctx context.Context, eventType string, limit int) ([]contracts.AuditEntry, error)
}

type Server struct {
	engine        *risk.Engine
	alerts        AlertStore
	snapshots     SnapshotStore
	interventions InterventionStore
	audit         AuditStore
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer
	validate      *validator.Validate
	logger        *slog.Logger
}

type Option func(*Server)

// WithAlerts mounts the alert routes.
func WithAlerts(store AlertStore) Option {
	return func(s *Server) { s.alerts = store }
}

func WithSnapshots(store SnapshotStore) Option {
	return func(s *Server) { s.snapshots = store }
}

func WithInterventions(store InterventionStore) Option {
	return func(s *Server) { s.interventions = store }
}

func WithAudit(store AuditStore) Option {
	return func(s *Server) { s.audit = store }
}

func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

func New(engine *risk.Engine, logger *slog.Logger, opts ...Option) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("intervention_type", func(fl validator.FieldLevel) bool {
		return synth.IsInterventionType(fl.Field().String())
	})

	s := &Server{
		engine:   engine,
		validate: v,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))
	if s.metrics != nil {
		router.Use(s.observe)
	}

	router.Get("/healthz", s.health)
	router.Get("/v1/catalog", s.catalog)

	router.Route("/v1/scores", func(r chi.Router) {
		r.Get("/", s.listScores)
		r.Get("/summary", s.summary)
		r.Get("/heat", s.heat)
		r.Get("/{commodity}/{region}", s.getScore)
	})
	router.Get("/v1/history/{commodity}/{region}", s.history)
	router.Get("/v1/signals/{commodity}/{region}/{signalType}", s.signals)
	router.Get("/v1/explain/{commodity}/{region}", s.explain)

	if s.alerts != nil {
		router.Get("/v1/alerts", s.listAlerts)
		router.Get("/v1/alerts/summary", s.alertSummary)
		router.Patch("/v1/alerts/{id}/ack", s.updateAlert(contracts.AlertAcknowledged))
		router.Patch("/v1/alerts/{id}/resolve", s.updateAlert(contracts.AlertResolved))
	}
	if s.snapshots != nil {
		router.Get("/v1/snapshots/latest/scores", s.latestSnapshotScores)
	}
	if s.interventions != nil {
		router.Get("/v1/interventions", s.listInterventions)
		router.Post("/v1/interventions", s.recordIntervention)
	}
	if s.audit != nil {
		router.Get("/v1/audit", s.listAudit)
	}
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) countSeries(kind string) {
	if s.metrics != nil {
		s.metrics.SeriesGenerated.WithLabelValues(kind).Inc()
	}
}
