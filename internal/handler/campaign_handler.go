package handler

import (
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CampaignHandler struct {
	campaigns   *service.CampaignService
	submissions *service.SubmissionService
	aggregates  *service.AggregationService
}

type CreateCampaignReq struct {
	Name         string          `json:"name" binding:"required,max=128"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"targetAmount" binding:"decimal_nonneg"`
}

type ExpenseReq struct {
	Amount decimal.Decimal `json:"amount" binding:"decimal_positive"`
	Note   string          `json:"note" binding:"max=500"`
}

func NewCampaignHandler(campaigns *service.CampaignService, submissions *service.SubmissionService, aggregates *service.AggregationService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, submissions: submissions, aggregates: aggregates}
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req CreateCampaignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	campaign, err := h.campaigns.Create(c.Request.Context(), actorFrom(c), service.CampaignInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, campaign)
}

func (h *CampaignHandler) ListVisible(c *gin.Context) {
	list, err := h.campaigns.ListVisible(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *CampaignHandler) ListManaged(c *gin.Context) {
	list, err := h.campaigns.ListManaged(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	view, err := h.campaigns.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, view)
}

// SetStatus toggles the active flag; body is {"active": bool}.
func (h *CampaignHandler) SetStatus(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	campaign, err := h.campaigns.SetActive(c.Request.Context(), actorFrom(c), id, *req.Active)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, campaign)
}

// Submissions lists the validator queue, optionally narrowed by ?status=.
func (h *CampaignHandler) Submissions(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var q struct {
		Status string `form:"status" binding:"status_filter"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.submissions.ListForCampaign(c.Request.Context(), actorFrom(c), id, q.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *CampaignHandler) Total(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	total, err := h.aggregates.TotalValid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, total)
}

func (h *CampaignHandler) PendingCount(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	n, err := h.aggregates.PendingCount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, n)
}

func (h *CampaignHandler) RecordExpense(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req ExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := h.campaigns.RecordExpense(c.Request.Context(), actorFrom(c), id, req.Amount, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, e)
}

func (h *CampaignHandler) ListExpenses(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	list, err := h.campaigns.ListExpenses(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}
