package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2020-HelloWorld/masala-models/internal/contracts"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot stores a whole score table under a new snapshot id in one
// transaction and returns the id.
func (r *Repository) SaveSnapshot(ctx context.Context, seed int64, entries []contracts.CurrentScoreEntry) (string, error) {
	id := uuid.NewString()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
        INSERT INTO score_snapshots (id, seed, pairs) VALUES ($1, $2, $3)
    `, id, seed, len(entries)); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
            INSERT INTO score_entries
                (snapshot_id, commodity, region_code, region_name, combined_score, supply_stress_score,
                 price_shock_score, risk_level, trend, significant_change, scored_at)
            VALUES
                ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        `, id, e.Commodity, e.RegionCode, e.RegionName, e.CombinedScore, e.SupplyStressScore,
			e.PriceShockScore, string(e.RiskLevel), string(e.Trend), e.SignificantChange, e.Timestamp)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("insert score entries: %w", err)
	}

	critical := 0
	for _, e := range entries {
		if e.RiskLevel == contracts.LevelCritical {
			critical++
		}
	}
	if err := insertAudit(ctx, tx, contracts.AuditEntry{
		Type:    contracts.AuditRiskScore,
		Summary: snapshotSummary(id, len(entries), critical),
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}
	return id, nil
}

func (r *Repository) LatestSnapshotID(ctx context.Context) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `
        SELECT id::text FROM score_snapshots ORDER BY created_at DESC LIMIT 1
    `).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("latest snapshot: %w", err)
	}
	return id, nil
}

func (r *Repository) ListScores(ctx context.Context, snapshotID string, level contracts.RiskLevel, limit int) ([]contracts.CurrentScoreEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT commodity, region_code, region_name, combined_score, supply_stress_score, price_shock_score,
               risk_level, trend, significant_change, scored_at
        FROM score_entries
        WHERE snapshot_id = $1
          AND ($2 = '' OR risk_level = $2)
        ORDER BY combined_score DESC, commodity, region_code
        LIMIT $3
    `, snapshotID, string(level), limit)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]contracts.CurrentScoreEntry, 0, limit)
	for rows.Next() {
		var e contracts.CurrentScoreEntry
		var levelRaw, trendRaw string
		if err := rows.Scan(
			&e.Commodity,
			&e.RegionCode,
			&e.RegionName,
			&e.CombinedScore,
			&e.SupplyStressScore,
			&e.PriceShockScore,
			&levelRaw,
			&trendRaw,
			&e.SignificantChange,
			&e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		e.RiskLevel = contracts.RiskLevel(levelRaw)
		e.Trend = contracts.Trend(trendRaw)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SaveRiskHistory upserts a pair's daily history. Regenerating with the
// same inputs rewrites identical rows.
func (r *Repository) SaveRiskHistory(ctx context.Context, commodity, regionCode string, points []contracts.RiskScorePoint) error {
	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(`
            INSERT INTO risk_history
                (commodity, region_code, day, combined_score, supply_stress_score, price_shock_score, risk_level)
            VALUES
                ($1, $2, $3::date, $4, $5, $6, $7)
            ON CONFLICT (commodity, region_code, day) DO UPDATE
            SET combined_score = EXCLUDED.combined_score,
                supply_stress_score = EXCLUDED.supply_stress_score,
                price_shock_score = EXCLUDED.price_shock_score,
                risk_level = EXCLUDED.risk_level
        `, commodity, regionCode, p.Date, p.CombinedScore, p.SupplyStressScore, p.PriceShockScore, string(p.RiskLevel))
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert risk history %s/%s: %w", commodity, regionCode, err)
	}
	return nil
}

func (r *Repository) HasOpenAlertInCooldown(ctx context.Context, commodity, regionCode string, cooldown time.Duration) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
            FROM alerts
            WHERE status IN ('open', 'acknowledged')
              AND commodity = $1
              AND region_code = $2
              AND created_at >= NOW() - $3::interval
        )
    `, commodity, regionCode, fmt.Sprintf("%f seconds", cooldown.Seconds())).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cooldown alert: %w", err)
	}
	return exists, nil
}

func (r *Repository) InsertAlert(ctx context.Context, alert contracts.AlertRecord) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Status == "" {
		alert.Status = contracts.AlertOpen
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin alert tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
        INSERT INTO alerts
            (id, snapshot_id, commodity, region_code, title, description, risk_score, severity, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, alert.ID, nullableUUID(alert.SnapshotID), alert.Commodity, alert.RegionCode, alert.Title, alert.Description,
		alert.RiskScore, string(alert.Severity), alert.Status)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	if err := insertAudit(ctx, tx, contracts.AuditEntry{
		Type:       contracts.AuditAlert,
		Commodity:  alert.Commodity,
		RegionCode: alert.RegionCode,
		Summary:    alert.Title,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit alert: %w", err)
	}
	return nil
}

func (r *Repository) ListAlerts(ctx context.Context, status string, limit int) ([]contracts.AlertRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, COALESCE(snapshot_id::text,''), commodity, region_code, title, description, risk_score, severity, status, created_at, updated_at
        FROM alerts
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]contracts.AlertRecord, 0, limit)
	for rows.Next() {
		var alert contracts.AlertRecord
		var severity string
		if err := rows.Scan(
			&alert.ID,
			&alert.SnapshotID,
			&alert.Commodity,
			&alert.RegionCode,
			&alert.Title,
			&alert.Description,
			&alert.RiskScore,
			&severity,
			&alert.Status,
			&alert.CreatedAt,
			&alert.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alert.Severity = contracts.RiskLevel(severity)
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// UpdateAlertStatus moves an alert to status and records who did it in the
// audit log. An unknown id yields pgx.ErrNoRows.
func (r *Repository) UpdateAlertStatus(ctx context.Context, id, status, actor string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin alert status tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var commodity, regionCode string
	err = tx.QueryRow(ctx, `
        UPDATE alerts
        SET status = $2,
            updated_at = NOW(),
            acknowledged_at = CASE WHEN $2 = 'acknowledged' THEN NOW() ELSE acknowledged_at END,
            resolved_at = CASE WHEN $2 = 'resolved' THEN NOW() ELSE resolved_at END
        WHERE id = $1
        RETURNING commodity, region_code
    `, id, status).Scan(&commodity, &regionCode)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}

	if err := insertAudit(ctx, tx, contracts.AuditEntry{
		Type:       contracts.AuditAlert,
		Commodity:  commodity,
		RegionCode: regionCode,
		Summary:    alertStatusSummary(id, status),
		Actor:      actor,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit alert status: %w", err)
	}
	return nil
}

func (r *Repository) AlertSummary(ctx context.Context) (contracts.AlertSummary, error) {
	var summary contracts.AlertSummary
	var snapshotAt *time.Time
	err := r.pool.QueryRow(ctx, `
        WITH latest AS (
            SELECT id, created_at FROM score_snapshots ORDER BY created_at DESC LIMIT 1
        )
        SELECT
            (SELECT COUNT(*) FROM alerts WHERE status = 'open'),
            (SELECT COUNT(*) FROM alerts WHERE status = 'acknowledged'),
            (SELECT COUNT(*) FROM alerts WHERE status = 'resolved' AND resolved_at >= NOW() - INTERVAL '24 hours'),
            COALESCE((SELECT id::text FROM latest), ''),
            (SELECT created_at FROM latest),
            COALESCE((
                SELECT COUNT(*) FROM score_entries se
                WHERE se.snapshot_id = (SELECT id FROM latest) AND se.risk_level = 'critical'
            ), 0)
    `).Scan(&summary.OpenAlerts, &summary.Acknowledged, &summary.Resolved24h, &summary.LatestSnapshot, &snapshotAt, &summary.CriticalPairs)
	if err != nil {
		return contracts.AlertSummary{}, fmt.Errorf("alert summary: %w", err)
	}
	if snapshotAt != nil {
		summary.SnapshotAt = *snapshotAt
	}
	return summary, nil
}

// InsertIntervention stores an intervention together with its audit entry
// and returns the record as stored.
func (r *Repository) InsertIntervention(ctx context.Context, rec contracts.InterventionRecord) (contracts.InterventionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return contracts.InterventionRecord{}, fmt.Errorf("begin intervention tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eff := rec.Effectiveness
	_, err = tx.Exec(ctx, `
        INSERT INTO interventions
            (id, type, commodity, region_code, region_name, recorded_by, recorded_at,
             risk_reduction, price_stabilization, lead_time_days, harm_prevented)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, rec.ID, rec.Type, rec.Commodity, rec.RegionCode, rec.RegionName, rec.RecordedBy, rec.RecordedAt,
		eff.RiskReduction, eff.PriceStabilization, eff.LeadTimeDays, eff.HarmPrevented)
	if err != nil {
		return contracts.InterventionRecord{}, fmt.Errorf("insert intervention: %w", err)
	}

	if err := insertAudit(ctx, tx, contracts.AuditEntry{
		Type:       contracts.AuditIntervention,
		Commodity:  rec.Commodity,
		RegionCode: rec.RegionCode,
		Summary:    interventionSummary(rec),
		Actor:      rec.RecordedBy,
	}); err != nil {
		return contracts.InterventionRecord{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return contracts.InterventionRecord{}, fmt.Errorf("commit intervention: %w", err)
	}
	return rec, nil
}

func (r *Repository) ListInterventions(ctx context.Context, commodity, regionCode string, limit int) ([]contracts.InterventionRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id::text, type, commodity, region_code, region_name, recorded_by, recorded_at,
               risk_reduction, price_stabilization, lead_time_days, harm_prevented
        FROM interventions
        WHERE ($1 = '' OR commodity = $1)
          AND ($2 = '' OR region_code = $2)
        ORDER BY recorded_at DESC
        LIMIT $3
    `, commodity, regionCode, limit)
	if err != nil {
		return nil, fmt.Errorf("query interventions: %w", err)
	}
	defer rows.Close()

	records := make([]contracts.InterventionRecord, 0, limit)
	for rows.Next() {
		var rec contracts.InterventionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Type,
			&rec.Commodity,
			&rec.RegionCode,
			&rec.RegionName,
			&rec.RecordedBy,
			&rec.RecordedAt,
			&rec.Effectiveness.RiskReduction,
			&rec.Effectiveness.PriceStabilization,
			&rec.Effectiveness.LeadTimeDays,
			&rec.Effectiveness.HarmPrevented,
		); err != nil {
			return nil, fmt.Errorf("scan intervention: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *Repository) ListAudit(ctx context.Context, eventType string, limit int) ([]contracts.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, type, commodity, region_code, summary, actor, created_at
        FROM audit_log
        WHERE ($1 = '' OR type = $1)
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]contracts.AuditEntry, 0, limit)
	for rows.Next() {
		var e contracts.AuditEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Commodity, &e.RegionCode, &e.Summary, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertAudit(ctx context.Context, db execer, e contracts.AuditEntry) error {
	_, err := db.Exec(ctx, `
        INSERT INTO audit_log (type, commodity, region_code, summary, actor)
        VALUES ($1, $2, $3, $4, $5)
    `, e.Type, e.Commodity, e.RegionCode, e.Summary, e.Actor)
	if err != nil {
		return fmt.Errorf("insert audit %s: %w", e.Type, err)
	}
	return nil
}

func snapshotSummary(id string, pairs, critical int) string {
	return fmt.Sprintf("Snapshot %s stored: %d pairs, %d critical", shortID(id), pairs, critical)
}

func alertStatusSummary(id, status string) string {
	return fmt.Sprintf("Alert %s %s", shortID(id), status)
}

func interventionSummary(rec contracts.InterventionRecord) string {
	if rec.RecordedBy == "" {
		return rec.Type + " recorded"
	}
	return rec.Type + " recorded by " + rec.RecordedBy
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nullableUUID(v string) any {
	if v == "" {
		return nil
	}
	return v
}
