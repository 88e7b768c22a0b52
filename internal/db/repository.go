package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewConnection(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Component catalog (read-only to the engine)

func (r *Repository) GetMonitoredComponents(tenantID string) ([]*MonitoredComponent, error) {
	components := []*MonitoredComponent{}
	query := `
		SELECT * FROM monitored_components
		WHERE tenant_id = $1 AND monitored = true
		ORDER BY created_at`

	err := r.db.Select(&components, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitored components: %w", err)
	}
	return components, nil
}

func (r *Repository) GetComponent(id, tenantID string) (*MonitoredComponent, error) {
	var c MonitoredComponent
	query := `SELECT * FROM monitored_components WHERE id = $1 AND tenant_id = $2`
	err := r.db.Get(&c, query, id, tenantID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("component not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return &c, nil
}

// GetLinkedAssets returns the active assets a component is installed on,
// via the component_assets join table.
func (r *Repository) GetLinkedAssets(componentID string) ([]*Asset, error) {
	assets := []*Asset{}
	query := `
		SELECT a.* FROM assets a
		JOIN component_assets ca ON ca.asset_id = a.id
		WHERE ca.component_id = $1 AND a.active = true`

	err := r.db.Select(&assets, query, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked assets: %w", err)
	}
	return assets, nil
}

func (r *Repository) GetInventoryItem(id, tenantID string) (*InventoryItem, error) {
	var item InventoryItem
	query := `SELECT * FROM inventory_items WHERE id = $1 AND tenant_id = $2`
	err := r.db.Get(&item, query, id, tenantID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inventory item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

// Feature flags

func (r *Repository) IsFeatureEnabled(tenantID, feature string) (bool, error) {
	var enabled bool
	query := `SELECT enabled FROM tenant_features WHERE tenant_id = $1 AND feature = $2`
	err := r.db.Get(&enabled, query, tenantID, feature)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check feature flag: %w", err)
	}
	return enabled, nil
}

// GetTenantsWithFeature lists tenants entitled to a feature, used by the
// scheduler to decide which tenants get a scan job.
func (r *Repository) GetTenantsWithFeature(feature string) ([]string, error) {
	tenants := []string{}
	query := `SELECT tenant_id FROM tenant_features WHERE feature = $1 AND enabled = true`

	err := r.db.Select(&tenants, query, feature)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenants with feature: %w", err)
	}
	return tenants, nil
}
