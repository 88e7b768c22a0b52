package handlers

import (
	"net/http"
	"time"

	"github.com/fleetkeep/maintguard/internal/queue"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TriggerScan enqueues an on-demand evaluation pass for the calling tenant.
// The scan itself runs asynchronously on a worker; the request never blocks
// on it.
func (h *Handler) TriggerScan(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	job := &queue.ScanJob{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Trigger:   queue.TriggerManual,
		CreatedAt: time.Now(),
	}

	if err := h.queue.Push(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to enqueue scan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue scan"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"scan_id": job.ID, "status": "queued"})
}
