package contracts

import "time"

type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelModerate RiskLevel = "moderate"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// Upper bounds (inclusive) of each risk level.
const (
	LowMax      = 25
	ModerateMax = 50
	HighMax     = 75
)

// LevelOf buckets a score into a risk level.
func LevelOf(score int) RiskLevel {
	switch {
	case score <= LowMax:
		return LevelLow
	case score <= ModerateMax:
		return LevelModerate
	case score <= HighMax:
		return LevelHigh
	default:
		return LevelCritical
	}
}

type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// Trends is indexed by the table generator's trend draw.
var Trends = [...]Trend{TrendRising, TrendStable, TrendFalling}

type SignalType string

const (
	SignalMarket     SignalType = "market"
	SignalLogistics  SignalType = "logistics"
	SignalClimate    SignalType = "climate"
	SignalBehavioral SignalType = "behavioral"
	SignalEvent      SignalType = "event"
)

type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RiskScorePoint struct {
	Date              string    `json:"date"`
	CombinedScore     int       `json:"combined_score"`
	SupplyStressScore int       `json:"supply_stress_score"`
	PriceShockScore   int       `json:"price_shock_score"`
	RiskLevel         RiskLevel `json:"risk_level"`
}

type SignalPoint struct {
	Date        string  `json:"date"`
	Observed    float64 `json:"observed"`
	Baseline    float64 `json:"baseline"`
	BaselineMin float64 `json:"baseline_min"`
	BaselineMax float64 `json:"baseline_max"`
	Deviation   float64 `json:"deviation"`
}

type CurrentScoreEntry struct {
	Commodity         string    `json:"commodity"`
	RegionCode        string    `json:"region_code"`
	RegionName        string    `json:"region_name"`
	CombinedScore     int       `json:"combined_score"`
	SupplyStressScore int       `json:"supply_stress_score"`
	PriceShockScore   int       `json:"price_shock_score"`
	RiskLevel         RiskLevel `json:"risk_level"`
	Trend             Trend     `json:"trend"`
	SignificantChange bool      `json:"significant_change"`
	Timestamp         time.Time `json:"timestamp"`
}

func (e CurrentScoreEntry) Key() string {
	return e.Commodity + "|" + e.RegionCode
}

type OverviewSummary struct {
	PairsMonitored     int `json:"pairs_monitored"`
	Critical           int `json:"critical"`
	High               int `json:"high"`
	Rising             int `json:"rising"`
	SignificantChanges int `json:"significant_changes"`
	AvgCombinedScore   int `json:"avg_combined_score"`
	MedianCombined     int `json:"median_combined_score"`
}

type RegionHeat struct {
	RegionCode       string    `json:"region_code"`
	RegionName       string    `json:"region_name"`
	AvgCombinedScore int       `json:"avg_combined_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Pairs            int       `json:"pairs"`
}

type RiskContributor struct {
	SignalType      SignalType `json:"signal_type"`
	Observed        float64    `json:"observed"`
	Baseline        float64    `json:"baseline"`
	Deviation       float64    `json:"deviation"`
	ContributionPct float64    `json:"contribution_pct"`
}

type Explanation struct {
	Commodity            string            `json:"commodity"`
	RegionCode           string            `json:"region_code"`
	CombinedScore        int               `json:"combined_score"`
	RiskLevel            RiskLevel         `json:"risk_level"`
	Summary              string            `json:"summary"`
	Contributors         []RiskContributor `json:"contributors"`
	StructuralAssessment string            `json:"structural_assessment"`
	RecommendedAction    string            `json:"recommended_action"`
}

// SignalMessage is one replayed signal observation on the signals topic.
type SignalMessage struct {
	ID         string      `json:"id"`
	Commodity  string      `json:"commodity"`
	RegionCode string      `json:"region_code"`
	SignalType SignalType  `json:"signal_type"`
	Point      SignalPoint `json:"point"`
	EmittedAt  time.Time   `json:"emitted_at"`
}

func (s SignalMessage) Key() string {
	return s.Commodity + "|" + s.RegionCode + "|" + string(s.SignalType)
}

// ScoreEvent carries one snapshot entry on the risk topic.
type ScoreEvent struct {
	SnapshotID string            `json:"snapshot_id"`
	Entry      CurrentScoreEntry `json:"entry"`
}

type AlertSummary struct {
	OpenAlerts     int       `json:"open_alerts"`
	Acknowledged   int       `json:"acknowledged_alerts"`
	Resolved24h    int       `json:"resolved_last_24h"`
	LatestSnapshot string    `json:"latest_snapshot,omitempty"`
	CriticalPairs  int       `json:"critical_pairs"`
	SnapshotAt     time.Time `json:"snapshot_at,omitzero"`
}

// Alert statuses.
const (
	AlertOpen         = "open"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

type AlertRecord struct {
	ID          string    `json:"id"`
	SnapshotID  string    `json:"snapshot_id"`
	Commodity   string    `json:"commodity"`
	RegionCode  string    `json:"region_code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RiskScore   int       `json:"risk_score"`
	Severity    RiskLevel `json:"severity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Effectiveness is the measured outcome of an intervention.
type Effectiveness struct {
	RiskReduction      int     `json:"risk_reduction"`
	PriceStabilization float64 `json:"price_stabilization"`
	LeadTimeDays       float64 `json:"lead_time_days"`
	HarmPrevented      string  `json:"harm_prevented"`
}

type InterventionRecord struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Commodity     string        `json:"commodity"`
	RegionCode    string        `json:"region_code"`
	RegionName    string        `json:"region_name"`
	RecordedBy    string        `json:"recorded_by,omitempty"`
	RecordedAt    time.Time     `json:"recorded_at"`
	Effectiveness Effectiveness `json:"effectiveness"`
}

type InterventionSummary struct {
	Total                 int     `json:"total"`
	AvgRiskReduction      int     `json:"avg_risk_reduction"`
	AvgPriceStabilization float64 `json:"avg_price_stabilization"`
	AvgLeadTimeDays       float64 `json:"avg_lead_time_days"`
}

// Audit event types.
const (
	AuditIngestion    = "ingestion"
	AuditRiskScore    = "risk_score"
	AuditAlert        = "alert"
	AuditIntervention = "intervention"
	AuditAccess       = "access"
)

type AuditEntry struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Commodity  string    `json:"commodity,omitempty"`
	RegionCode string    `json:"region_code,omitempty"`
	Summary    string    `json:"summary"`
	Actor      string    `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
