// Package usage resolves current operating hours for assets and for the
// components installed on them.
package usage

import (
	"fmt"
	"time"

	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/projection"
	"go.uber.org/zap"
)

// AssetSource supplies the active assets a component is installed on.
// Satisfied by *db.Repository.
type AssetSource interface {
	GetLinkedAssets(componentID string) ([]*db.Asset, error)
}

type Resolver struct {
	assets AssetSource
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(assets AssetSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		assets: assets,
		logger: logger,
		now:    time.Now,
	}
}

// AssetOperatingHours returns the usage of a single asset. A recorded manual
// counter is authoritative whenever it is positive; otherwise hours are
// estimated from the age of the asset at the fixed daily duty cycle,
// anchored on the purchase date when present and the registration date
// otherwise.
func (r *Resolver) AssetOperatingHours(asset *db.Asset) float64 {
	if asset.ManualOperatingHours != nil && *asset.ManualOperatingHours > 0 {
		return *asset.ManualOperatingHours
	}

	anchor := asset.RegistrationDate
	if asset.PurchaseDate != nil {
		anchor = *asset.PurchaseDate
	}

	days := int(r.now().Sub(anchor).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return float64(days) * projection.DefaultDailyUsageHours
}

// ComponentOperatingHours resolves usage per linked asset and returns the
// maximum, along with the ID of the asset that drives it. The heaviest-used
// installation determines the replacement signal. A component with no active
// links reports zero hours and no driving asset.
func (r *Resolver) ComponentOperatingHours(componentID string) (float64, *string, error) {
	assets, err := r.assets.GetLinkedAssets(componentID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to resolve component usage: %w", err)
	}

	var maxHours float64
	var drivingAssetID *string
	for _, asset := range assets {
		hours := r.AssetOperatingHours(asset)
		if drivingAssetID == nil || hours > maxHours {
			maxHours = hours
			id := asset.ID
			drivingAssetID = &id
		}
	}

	if drivingAssetID == nil {
		r.logger.Debug("Component has no active asset links",
			zap.String("component_id", componentID),
		)
	}

	return maxHours, drivingAssetID, nil
}
