package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"simkas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

type SubmissionHandler struct {
	submissions *service.SubmissionService
	validation  *service.ValidationService
	maxUpload   int64
}

// SubmitReq carries no submitter field: the caller is always the token owner.
type SubmitReq struct {
	CampaignID    uint64          `json:"campaignId" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"decimal_positive"`
	Note          string          `json:"note" binding:"max=1000"`
	PeriodMonth   int             `json:"periodMonth" binding:"min=0,max=12"`
	PeriodYear    int             `json:"periodYear" binding:"min=0"`
	ProofImageRef string          `json:"proofImageRef"`
}

func NewSubmissionHandler(submissions *service.SubmissionService, validation *service.ValidationService, maxUploadMB int64) *SubmissionHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 8
	}
	return &SubmissionHandler{submissions: submissions, validation: validation, maxUpload: maxUploadMB << 20}
}

// Create accepts JSON, or multipart with a "data" JSON part and a "file" image part.
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req SubmitReq
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := h.submissions.Submit(c.Request.Context(), actorFrom(c), req.input())
		if err != nil {
			writeError(c, err)
			return
		}
		created(c, sub)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer f.Close()
	sub, err := h.submissions.SubmitWithProof(c.Request.Context(), actorFrom(c), req.input(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, sub)
}

// UploadProof stores an image on its own; the returned ref goes into a JSON submission.
func (h *SubmissionHandler) UploadProof(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	f, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer f.Close()
	ref, err := h.submissions.StoreProof(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, gin.H{"proofImageRef": ref})
}

func (h *SubmissionHandler) openUpload(c *gin.Context) (multipart.File, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	return f, true
}

func (r SubmitReq) input() service.SubmitInput {
	return service.SubmitInput{
		CampaignID:  r.CampaignID,
		Amount:      r.Amount,
		Note:        r.Note,
		PeriodMonth: r.PeriodMonth,
		PeriodYear:  r.PeriodYear,
		ProofRef:    r.ProofImageRef,
	}
}

func (h *SubmissionHandler) History(c *gin.Context) {
	list, err := h.submissions.History(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, list)
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	sub, err := h.submissions.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, sub)
}

func (h *SubmissionHandler) Proof(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	rc, contentType, err := h.submissions.Proof(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

func (h *SubmissionHandler) Approve(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	sub, err := h.validation.Approve(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, sub)
}

// Reject leaves an empty reason to the service so it maps to MissingReason.
func (h *SubmissionHandler) Reject(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	sub, err := h.validation.Reject(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, sub)
}
