package handler

import (
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.AggregationService
}

func NewDashboardHandler(svc *service.AggregationService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Class(c *gin.Context) {
	dash, err := h.svc.ClassDashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, dash)
}

func (h *DashboardHandler) Cohort(c *gin.Context) {
	dash, err := h.svc.CohortDashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, dash)
}
