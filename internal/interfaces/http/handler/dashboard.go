package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	dashboardapp "github.com/pms/backend/internal/application/dashboard"
)

// DashboardHandler serves the operational snapshot
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Snapshot)
}

// Snapshot returns today's operational figures
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.dashboardService.GetSnapshot(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}
