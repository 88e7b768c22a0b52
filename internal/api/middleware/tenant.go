package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Tenant resolves the calling tenant from the verified token claims and
// threads it into the request context as an explicit value. Handlers never
// consult ambient state for tenancy.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get("claims")
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Claims not found"})
			c.Abort()
			return
		}

		jwtClaims := claims.(jwt.MapClaims)

		// Extract organization as tenant_id
		organization, ok := jwtClaims["organization"].(string)
		if !ok || organization == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Organization not found in token"})
			c.Abort()
			return
		}

		c.Set("tenant_id", organization)

		c.Next()
	}
}
