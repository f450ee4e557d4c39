package handler

import (
	"net/http"

	"simkas/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

type RegisterReq struct {
	NIM      string  `json:"nim" binding:"required,max=32"`
	Name     string  `json:"name" binding:"required,max=128"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone" binding:"max=32"`
	Password string  `json:"password" binding:"required,min=6"`
	ClassID  *uint64 `json:"classId"`
	CohortID *uint64 `json:"cohortId"`
}

type LoginReq struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type ProfileReq struct {
	Name     string  `json:"name" binding:"required,max=128"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone" binding:"max=32"`
	ClassID  *uint64 `json:"classId"`
	CohortID *uint64 `json:"cohortId"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		NIM:      req.NIM,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		ClassID:  req.ClassID,
		CohortID: req.CohortID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	created(c, user)
}

// Login accepts a NIM or an e-mail as identifier.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, res)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, pair)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), actorFrom(c), service.ProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		ClassID:  req.ClassID,
		CohortID: req.CohortID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, user)
}

// ChangePassword ends the current session on success.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), actorFrom(c), req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "change password successfully"})
}
