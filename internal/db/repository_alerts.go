package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNoActiveAlert     = errors.New("no active alert")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrDuplicateActive   = errors.New("active alert already exists for component")
	ErrAlertNotMutable   = errors.New("alert is in a terminal state")
)

func (r *Repository) CreateAlert(a *MaintenanceAlert) error {
	query := `
		INSERT INTO maintenance_alerts (
			id, tenant_id, component_id, asset_id, severity, status,
			current_stock, minimum_stock, days_until_maintenance,
			lead_time_days, criticality, message, recommendation,
			created_at, updated_at
		) VALUES (
			:id, :tenant_id, :component_id, :asset_id, :severity, :status,
			:current_stock, :minimum_stock, :days_until_maintenance,
			:lead_time_days, :criticality, :message, :recommendation,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExec(query, a)
	if err != nil {
		var pqErr *pq.Error
		// 23505: the partial unique index rejected a second ACTIVE row for
		// the same component. A concurrent pass got there first.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateActive
		}
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *Repository) GetAlert(id, tenantID string) (*MaintenanceAlert, error) {
	var a MaintenanceAlert
	query := `SELECT * FROM maintenance_alerts WHERE id = $1 AND tenant_id = $2`
	err := r.db.Get(&a, query, id, tenantID)
	if err == sql.ErrNoRows {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &a, nil
}

func (r *Repository) GetActiveAlert(componentID, tenantID string) (*MaintenanceAlert, error) {
	var a MaintenanceAlert
	query := `
		SELECT * FROM maintenance_alerts
		WHERE tenant_id = $1 AND component_id = $2 AND status = 'ACTIVE'`

	err := r.db.Get(&a, query, tenantID, componentID)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveAlert
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active alert: %w", err)
	}
	return &a, nil
}

// UpdateAlertMetrics refreshes the mutable fields of an ACTIVE alert in
// place. Terminal alerts are never touched.
func (r *Repository) UpdateAlertMetrics(a *MaintenanceAlert) error {
	query := `
		UPDATE maintenance_alerts SET
			severity = :severity,
			current_stock = :current_stock,
			minimum_stock = :minimum_stock,
			days_until_maintenance = :days_until_maintenance,
			lead_time_days = :lead_time_days,
			message = :message,
			recommendation = :recommendation,
			updated_at = :updated_at
		WHERE id = :id AND status = 'ACTIVE'`

	result, err := r.db.NamedExec(query, a)
	if err != nil {
		return fmt.Errorf("failed to update alert metrics: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlertNotMutable
	}
	return nil
}

func (r *Repository) ResolveAlert(id string, resolvedAt time.Time) error {
	query := `
		UPDATE maintenance_alerts SET
			status = 'RESOLVED',
			resolved_at = $2,
			updated_at = $2
		WHERE id = $1 AND status = 'ACTIVE'`

	result, err := r.db.Exec(query, id, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlertNotMutable
	}
	return nil
}

func (r *Repository) DismissAlert(id, tenantID, reason string, dismissedAt time.Time) error {
	query := `
		UPDATE maintenance_alerts SET
			status = 'DISMISSED',
			dismiss_reason = $3,
			dismissed_at = $4,
			updated_at = $4
		WHERE id = $1 AND tenant_id = $2 AND status = 'ACTIVE'`

	result, err := r.db.Exec(query, id, tenantID, reason, dismissedAt)
	if err != nil {
		return fmt.Errorf("failed to dismiss alert: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlertNotMutable
	}
	return nil
}

// GetLastDismissedAlert returns the most recent dismissal for a component,
// used by the re-trigger cool-down.
func (r *Repository) GetLastDismissedAlert(componentID, tenantID string) (*MaintenanceAlert, error) {
	var a MaintenanceAlert
	query := `
		SELECT * FROM maintenance_alerts
		WHERE tenant_id = $1 AND component_id = $2 AND status = 'DISMISSED'
		ORDER BY dismissed_at DESC
		LIMIT 1`

	err := r.db.Get(&a, query, tenantID, componentID)
	if err == sql.ErrNoRows {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last dismissed alert: %w", err)
	}
	return &a, nil
}

// AutoCloseStale transitions ACTIVE alerts untouched since cutoff to
// AUTO_CLOSED. Returns the number of alerts closed.
func (r *Repository) AutoCloseStale(tenantID string, cutoff, now time.Time) (int64, error) {
	query := `
		UPDATE maintenance_alerts SET
			status = 'AUTO_CLOSED',
			auto_closed_at = $3,
			updated_at = $3
		WHERE tenant_id = $1 AND status = 'ACTIVE' AND updated_at < $2`

	result, err := r.db.Exec(query, tenantID, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("failed to auto-close stale alerts: %w", err)
	}
	return result.RowsAffected()
}

func (r *Repository) GetAlertsWithFilters(f *AlertFilters) ([]*MaintenanceAlert, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{f.TenantID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		addArg("status = $%d", f.Status)
	}
	if len(f.Severities) > 0 {
		addArg("severity = ANY($%d)", pq.Array(f.Severities))
	}
	if f.Criticality != "" {
		addArg("criticality = $%d", f.Criticality)
	}
	if f.ComponentID != "" {
		addArg("component_id = $%d", f.ComponentID)
	}
	if f.AssetID != "" {
		addArg("asset_id = $%d", f.AssetID)
	}
	if f.StartDate != nil {
		addArg("created_at >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		addArg("created_at <= $%d", *f.EndDate)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM maintenance_alerts WHERE " + where
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	alerts := []*MaintenanceAlert{}
	listQuery := fmt.Sprintf(`
		SELECT * FROM maintenance_alerts WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	if err := r.db.Select(&alerts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, total, nil
}

func (r *Repository) GetActiveAlertSummary(tenantID string) (*AlertListSummary, error) {
	var s AlertListSummary
	query := `
		SELECT
			COUNT(*) AS active,
			COUNT(*) FILTER (WHERE severity = 'CRITICAL') AS critical,
			COUNT(*) FILTER (WHERE severity = 'WARNING') AS warning,
			COUNT(*) FILTER (WHERE severity = 'INFO') AS info
		FROM maintenance_alerts
		WHERE tenant_id = $1 AND status = 'ACTIVE'`

	if err := r.db.Get(&s, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to get alert summary: %w", err)
	}
	return &s, nil
}
