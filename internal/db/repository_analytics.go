package db

import (
	"fmt"
	"time"
)

// Analytics aggregates. All queries accept an optional created_at window.

type SeverityCounts struct {
	Total    int `db:"total"`
	Critical int `db:"critical"`
	Warning  int `db:"warning"`
	Info     int `db:"info"`
}

type ResolutionStats struct {
	Resolved             int      `db:"resolved"`
	Dismissed            int      `db:"dismissed"`
	AvgResolutionHours   *float64 `db:"avg_resolution_hours"`
}

// windowClause appends created_at bounds for the given column reference.
// Callers joining multiple tables must pass a qualified column.
func windowClause(column string, start, end *time.Time, args []interface{}) (string, []interface{}) {
	clause := ""
	if start != nil {
		args = append(args, *start)
		clause += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if end != nil {
		args = append(args, *end)
		clause += fmt.Sprintf(" AND %s <= $%d", column, len(args))
	}
	return clause, args
}

func (r *Repository) GetSeverityCounts(tenantID string, start, end *time.Time) (*SeverityCounts, error) {
	args := []interface{}{tenantID}
	clause, args := windowClause("created_at", start, end, args)

	var c SeverityCounts
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE severity = 'CRITICAL') AS critical,
			COUNT(*) FILTER (WHERE severity = 'WARNING') AS warning,
			COUNT(*) FILTER (WHERE severity = 'INFO') AS info
		FROM maintenance_alerts
		WHERE tenant_id = $1%s`, clause)

	if err := r.db.Get(&c, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get severity counts: %w", err)
	}
	return &c, nil
}

func (r *Repository) GetResolutionStats(tenantID string, start, end *time.Time) (*ResolutionStats, error) {
	args := []interface{}{tenantID}
	clause, args := windowClause("created_at", start, end, args)

	var s ResolutionStats
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'RESOLVED') AS resolved,
			COUNT(*) FILTER (WHERE status = 'DISMISSED') AS dismissed,
			EXTRACT(EPOCH FROM AVG(resolved_at - created_at) FILTER (WHERE status = 'RESOLVED')) / 3600
				AS avg_resolution_hours
		FROM maintenance_alerts
		WHERE tenant_id = $1%s`, clause)

	if err := r.db.Get(&s, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get resolution stats: %w", err)
	}
	return &s, nil
}

func (r *Repository) GetTopComponentsByAlerts(tenantID string, start, end *time.Time, limit int) ([]ComponentAlertCount, error) {
	args := []interface{}{tenantID}
	clause, args := windowClause("a.created_at", start, end, args)
	args = append(args, limit)

	counts := []ComponentAlertCount{}
	query := fmt.Sprintf(`
		SELECT a.component_id, c.name AS component_name, COUNT(*) AS alert_count
		FROM maintenance_alerts a
		JOIN monitored_components c ON c.id = a.component_id
		WHERE a.tenant_id = $1%s
		GROUP BY a.component_id, c.name
		ORDER BY alert_count DESC
		LIMIT $%d`, clause, len(args))

	if err := r.db.Select(&counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get top components: %w", err)
	}
	return counts, nil
}

func (r *Repository) GetCountsByCriticality(tenantID string, start, end *time.Time) (map[Criticality]int, error) {
	args := []interface{}{tenantID}
	clause, args := windowClause("created_at", start, end, args)

	rows := []struct {
		Criticality Criticality `db:"criticality"`
		Count       int         `db:"count"`
	}{}
	query := fmt.Sprintf(`
		SELECT criticality, COUNT(*) AS count
		FROM maintenance_alerts
		WHERE tenant_id = $1%s
		GROUP BY criticality`, clause)

	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get counts by criticality: %w", err)
	}

	counts := map[Criticality]int{CriticalityA: 0, CriticalityB: 0, CriticalityC: 0}
	for _, row := range rows {
		counts[row.Criticality] = row.Count
	}
	return counts, nil
}
