package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Admin Dashboard Stats ---
//

// GetDashboardStats is the handler for GET /api/admin/stats.
// Counters come from Redis when cached, from MySQL otherwise.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	stats, err := h.Stats.Dashboard(c.Request.Context(), h.Store.DashboardStats)
	if err != nil {
		respondStoreError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
