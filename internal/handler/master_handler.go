package handler

import (
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
)

type MasterHandler struct {
	svc *service.MasterService
}

func NewMasterHandler(svc *service.MasterService) *MasterHandler {
	return &MasterHandler{svc: svc}
}

func (h *MasterHandler) ListClasses(c *gin.Context) {
	list, err := h.svc.ListClasses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *MasterHandler) ListCohorts(c *gin.Context) {
	list, err := h.svc.ListCohorts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *MasterHandler) CreateClass(c *gin.Context) {
	var req struct {
		Code     string `json:"code" binding:"required,max=32"`
		Name     string `json:"name" binding:"required,max=128"`
		CohortID uint64 `json:"cohortId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	class, err := h.svc.CreateClass(c.Request.Context(), actorFrom(c), req.Code, req.Name, req.CohortID)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, class)
}

func (h *MasterHandler) CreateCohort(c *gin.Context) {
	var req struct {
		Year int    `json:"year" binding:"required"`
		Name string `json:"name" binding:"required,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cohort, err := h.svc.CreateCohort(c.Request.Context(), actorFrom(c), req.Year, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, cohort)
}
