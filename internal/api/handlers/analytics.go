package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) GetAnalyticsSummary(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	startDate, ok := parseDateParam(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := parseDateParam(c, "endDate")
	if !ok {
		return
	}

	summary, err := h.analytics.Summary(tenantID, startDate, endDate)
	if err != nil {
		h.logger.Error("Failed to build analytics summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
