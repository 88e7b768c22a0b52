package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeatureChecker evaluates per-tenant feature flags. Satisfied by
// *db.Repository.
type FeatureChecker interface {
	IsFeatureEnabled(tenantID, feature string) (bool, error)
}

// FeatureRequired gates a route group on a tenant feature flag. Tenants
// without the entitlement get 403, never an empty result set: "no alerts"
// and "engine not enabled" must stay distinguishable.
func FeatureRequired(checker FeatureChecker, feature string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")

		enabled, err := checker.IsFeatureEnabled(tenantID, feature)
		if err != nil {
			logger.Error("Failed to check feature flag",
				zap.String("tenant_id", tenantID),
				zap.String("feature", feature),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		if !enabled {
			c.JSON(http.StatusForbidden, gin.H{"error": "predictive maintenance is not enabled for this tenant"})
			c.Abort()
			return
		}

		c.Next()
	}
}
