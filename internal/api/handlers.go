package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/httpx"
	"github.com/2020-HelloWorld/masala-models/internal/synth"
)

type scoresQuery struct {
	Commodity string `validate:"omitempty,max=64"`
	Region    string `validate:"omitempty,max=8"`
	Level     string `validate:"omitempty,oneof=low moderate high critical"`
	Trend     string `validate:"omitempty,oneof=rising stable falling"`
}

type seriesQuery struct {
	Days int `validate:"gte=0,lte=730"`
}

type alertsQuery struct {
	Status string `validate:"omitempty,oneof=open acknowledged resolved"`
	Limit  int    `validate:"gte=0,lte=500"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "query-api",
		"pairs":   s.engine.Table().Len(),
	})
}

func (s *Server) catalog(w http.ResponseWriter, _ *http.Request) {
	table := s.engine.Table()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"commodities":        table.Commodities(),
		"regions":            table.Regions(),
		"signal_types":       synth.SignalTypes(),
		"intervention_types": synth.InterventionTypes(),
	})
}

func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	q := scoresQuery{
		Commodity: r.URL.Query().Get("commodity"),
		Region:    r.URL.Query().Get("region"),
		Level:     r.URL.Query().Get("level"),
		Trend:     r.URL.Query().Get("trend"),
	}
	if !s.valid(w, q) {
		return
	}

	items := s.engine.Table().Filter(synth.TableFilter{
		Commodity:   q.Commodity,
		RegionCode:  q.Region,
		Level:       contracts.RiskLevel(q.Level),
		Trend:       contracts.Trend(q.Trend),
		SortByScore: r.URL.Query().Get("sort") == "score",
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.engine.Table().Summary())
}

func (s *Server) heat(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items": s.engine.Table().RegionHeat(r.URL.Query().Get("commodity")),
	})
}

func (s *Server) getScore(w http.ResponseWriter, r *http.Request) {
	commodity, region, ok := pairParams(w, r)
	if !ok {
		return
	}
	entry, err := s.engine.Current(commodity, region)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entry)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	commodity, region, ok := pairParams(w, r)
	if !ok {
		return
	}
	q, ok := s.seriesQuery(w, r)
	if !ok {
		return
	}

	points, err := s.engine.History(commodity, region, q.Days)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	s.countSeries("risk_history")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"commodity":   commodity,
		"region_code": region,
		"items":       points,
	})
}

func (s *Server) signals(w http.ResponseWriter, r *http.Request) {
	commodity, region, ok := pairParams(w, r)
	if !ok {
		return
	}
	signal, err := synth.ParseSignalType(chi.URLParam(r, "signalType"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	q, ok := s.seriesQuery(w, r)
	if !ok {
		return
	}

	points, err := s.engine.Signals(commodity, region, signal, q.Days)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	s.countSeries("signal")
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"commodity":   commodity,
		"region_code": region,
		"signal_type": signal,
		"items":       points,
	})
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	commodity, region, ok := pairParams(w, r)
	if !ok {
		return
	}
	exp, err := s.engine.Explain(commodity, region)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, exp)
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	q := alertsQuery{Status: r.URL.Query().Get("status"), Limit: limit}
	if !s.valid(w, q) {
		return
	}

	alerts, err := s.alerts.ListAlerts(r.Context(), q.Status, q.Limit)
	if err != nil {
		s.logger.Error("list alerts failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": alerts})
}

func (s *Server) alertSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.alerts.AlertSummary(r.Context())
	if err != nil {
		s.logger.Error("alert summary failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) updateAlert(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := s.validate.Var(id, "uuid"); err != nil {
			badRequest(w, "alert id must be a uuid")
			return
		}
		actor := r.Header.Get(actorHeader)
		if err := s.alerts.UpdateAlertStatus(r.Context(), id, status, actor); err != nil {
			httpx.WriteError(w, err)
			return
		}
		s.logger.Info("alert status updated", "id", id, "status", status, "actor", actor)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, fmt.Sprintf("limit %q is not a number", raw))
		return 0, false
	}
	return n, true
}

func (s *Server) seriesQuery(w http.ResponseWriter, r *http.Request) (seriesQuery, bool) {
	var q seriesQuery
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, fmt.Sprintf("days %q is not a number", raw))
			return q, false
		}
		q.Days = n
	}
	return q, s.valid(w, q)
}

func (s *Server) valid(w http.ResponseWriter, v any) bool {
	if err := s.validate.Struct(v); err != nil {
		badRequest(w, err.Error())
		return false
	}
	return true
}

// pairParams decodes the commodity and region path segments; chi hands
// back the escaped form when the request path carries escapes.
func pairParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	commodity, err := url.PathUnescape(chi.URLParam(r, "commodity"))
	if err != nil {
		badRequest(w, "malformed commodity")
		return "", "", false
	}
	region, err := url.PathUnescape(chi.URLParam(r, "region"))
	if err != nil {
		badRequest(w, "malformed region")
		return "", "", false
	}
	return commodity, region, true
}

func badRequest(w http.ResponseWriter, msg string) {
	httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
}
