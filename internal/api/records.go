package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
	"github.com/2020-HelloWorld/masala-models/internal/httpx"
	"github.com/2020-HelloWorld/masala-models/internal/risk"
)

// actorHeader names the operator behind a write; it lands in the audit log.
const actorHeader = "X-Actor"

type snapshotScoresQuery struct {
	Level string `validate:"omitempty,oneof=low moderate high critical"`
	Limit int    `validate:"gte=0,lte=500"`
}

type interventionsQuery struct {
	Commodity string `validate:"omitempty,max=64"`
	Region    string `validate:"omitempty,max=8"`
	Limit     int    `validate:"gte=0,lte=500"`
}

type auditQuery struct {
	Type  string `validate:"omitempty,oneof=ingestion risk_score alert intervention access"`
	Limit int    `validate:"gte=0,lte=500"`
}

type effectivenessRequest struct {
	RiskReduction      int     `json:"risk_reduction" validate:"gte=0,lte=100"`
	PriceStabilization float64 `json:"price_stabilization" validate:"gte=0,lte=100"`
	LeadTimeDays       float64 `json:"lead_time_days" validate:"gte=0,lte=365"`
	HarmPrevented      string  `json:"harm_prevented" validate:"max=500"`
}

type interventionRequest struct {
	Type          string               `json:"type" validate:"required,intervention_type"`
	Commodity     string               `json:"commodity" validate:"required,max=64"`
	RegionCode    string               `json:"region_code" validate:"required,max=8"`
	RecordedBy    string               `json:"recorded_by" validate:"max=128"`
	RecordedAt    time.Time            `json:"recorded_at"`
	Effectiveness effectivenessRequest `json:"effectiveness"`
}

func (s *Server) latestSnapshotScores(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	q := snapshotScoresQuery{Level: r.URL.Query().Get("level"), Limit: limit}
	if !s.valid(w, q) {
		return
	}

	id, err := s.snapshots.LatestSnapshotID(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	items, err := s.snapshots.ListScores(r.Context(), id, contracts.RiskLevel(q.Level), q.Limit)
	if err != nil {
		s.logger.Error("list snapshot scores failed", "error", err, "snapshot_id", id)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"snapshot_id": id, "items": items})
}

func (s *Server) listInterventions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	q := interventionsQuery{
		Commodity: r.URL.Query().Get("commodity"),
		Region:    r.URL.Query().Get("region"),
		Limit:     limit,
	}
	if !s.valid(w, q) {
		return
	}

	items, err := s.interventions.ListInterventions(r.Context(), q.Commodity, q.Region, q.Limit)
	if err != nil {
		s.logger.Error("list interventions failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"summary": risk.SummarizeInterventions(items),
	})
}

func (s *Server) recordIntervention(w http.ResponseWriter, r *http.Request) {
	var req interventionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, "invalid intervention payload: "+err.Error())
		return
	}
	if !s.valid(w, req) {
		return
	}

	entry, err := s.engine.Current(req.Commodity, req.RegionCode)
	if err != nil {
		if errors.Is(err, risk.ErrNotFound) {
			badRequest(w, err.Error())
			return
		}
		httpx.WriteError(w, err)
		return
	}

	recordedBy := req.RecordedBy
	if recordedBy == "" {
		recordedBy = r.Header.Get(actorHeader)
	}
	rec, err := s.interventions.InsertIntervention(r.Context(), contracts.InterventionRecord{
		Type:       req.Type,
		Commodity:  entry.Commodity,
		RegionCode: entry.RegionCode,
		RegionName: entry.RegionName,
		RecordedBy: recordedBy,
		RecordedAt: req.RecordedAt.UTC(),
		Effectiveness: contracts.Effectiveness{
			RiskReduction:      req.Effectiveness.RiskReduction,
			PriceStabilization: req.Effectiveness.PriceStabilization,
			LeadTimeDays:       req.Effectiveness.LeadTimeDays,
			HarmPrevented:      req.Effectiveness.HarmPrevented,
		},
	})
	if err != nil {
		s.logger.Error("record intervention failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	s.logger.Info("intervention recorded", "id", rec.ID, "type", rec.Type, "commodity", rec.Commodity, "region", rec.RegionCode)
	httpx.WriteJSON(w, http.StatusCreated, rec)
}

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	q := auditQuery{Type: r.URL.Query().Get("type"), Limit: limit}
	if !s.valid(w, q) {
		return
	}

	items, err := s.audit.ListAudit(r.Context(), q.Type, q.Limit)
	if err != nil {
		s.logger.Error("list audit failed", "error", err)
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
