package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fleetkeep/maintguard/internal/alerts"
	"github.com/fleetkeep/maintguard/internal/db"
	"github.com/fleetkeep/maintguard/internal/storage/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertListResponse struct {
	Items      []*db.MaintenanceAlert `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Summary    *db.AlertListSummary   `json:"summary"`
}

func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
	return nil, false
}

func (h *Handler) ListAlerts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	startDate, ok := parseDateParam(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := parseDateParam(c, "endDate")
	if !ok {
		return
	}

	// Repeated reads of the same filter set are served from a short cache window.
	cacheKey := redis.AlertListKey(tenantID, c.Request.URL.RawQuery)
	var cached AlertListResponse
	if err := h.cache.GetCachedAlertList(c.Request.Context(), cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	filters := &db.AlertFilters{
		TenantID:    tenantID,
		Status:      c.Query("status"),
		Severities:  c.QueryArray("severity"),
		Criticality: c.Query("criticality"),
		ComponentID: c.Query("componentId"),
		AssetID:     c.Query("assetId"),
		StartDate:   startDate,
		EndDate:     endDate,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}

	items, total, err := h.repo.GetAlertsWithFilters(filters)
	if err != nil {
		h.logger.Error("Failed to list alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	summary, err := h.repo.GetActiveAlertSummary(tenantID)
	if err != nil {
		h.logger.Error("Failed to get alert summary", zap.Error(err))
		summary = &db.AlertListSummary{}
	}

	response := AlertListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
		Summary:    summary,
	}

	if err := h.cache.CacheAlertList(c.Request.Context(), cacheKey, response, h.config.Cache.ListTTL); err != nil {
		h.logger.Debug("Failed to cache alert listing", zap.Error(err))
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetAlert(c *gin.Context) {
	alertID := c.Param("id")
	tenantID := c.GetString("tenant_id")

	alert, err := h.repo.GetAlert(alertID, tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h *Handler) DismissAlert(c *gin.Context) {
	alertID := c.Param("id")
	tenantID := c.GetString("tenant_id")

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert, err := h.lifecycle.Dismiss(alertID, tenantID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAlertNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		case errors.Is(err, db.ErrAlertNotMutable):
			c.JSON(http.StatusConflict, gin.H{"error": "Alert is no longer active"})
		case errors.Is(err, alerts.ErrReasonTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to dismiss alert", zap.String("alert_id", alertID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if err := h.cache.InvalidateAlertLists(c.Request.Context(), tenantID); err != nil {
		h.logger.Debug("Failed to invalidate alert list cache", zap.Error(err))
	}

	c.JSON(http.StatusOK, alert)
}
