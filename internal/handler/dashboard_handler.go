package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
)

// DashboardSource builds the registrar dashboard.
type DashboardSource interface {
	GetDashboardData(ctx context.Context) (*service.DashboardData, error)
}

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboard DashboardSource
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard DashboardSource) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard
// Returns summary stat cards, the fullest courses of the newest semester and the import backlog.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboard.GetDashboardData(c.Request.Context())
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
