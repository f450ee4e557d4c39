package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"simkas/internal/middleware"
	"simkas/internal/model"
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errorKinds maps each service sentinel to its wire code and HTTP status.
var errorKinds = []struct {
	err    error
	code   string
	status int
}{
	{service.ErrNotFound, "NotFound", http.StatusNotFound},
	{service.ErrCampaignInactive, "CampaignInactive", http.StatusConflict},
	{service.ErrInvalidTransition, "InvalidTransition", http.StatusConflict},
	{service.ErrMissingReason, "MissingReason", http.StatusUnprocessableEntity},
	{service.ErrForbidden, "Forbidden", http.StatusForbidden},
	{service.ErrInvalidAmount, "InvalidAmount", http.StatusBadRequest},
	{service.ErrInvalidProof, "InvalidProof", http.StatusBadRequest},
	{service.ErrInvalidParams, "InvalidParams", http.StatusBadRequest},
	{service.ErrAffiliationRequired, "AffiliationRequired", http.StatusBadRequest},
	{service.ErrUserExists, "UserExists", http.StatusConflict},
	{service.ErrInvalidCredentials, "InvalidCredentials", http.StatusUnauthorized},
	{service.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized},
}

func writeError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			c.JSON(k.status, gin.H{"code": k.code, "msg": err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": "Internal", "msg": "internal error"})
}

// badRequest reports binding failures. Failed decimal rules surface as InvalidAmount.
func badRequest(c *gin.Context, err error) {
	code := "InvalidParams"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if strings.HasPrefix(fe.Tag(), "decimal_") {
				code = "InvalidAmount"
				break
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"code": code, "msg": err.Error()})
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func actorFrom(c *gin.Context) model.Actor {
	actor, _ := middleware.ActorFromContext(c)
	return actor
}

// idParam parses a positive numeric path parameter or writes a 400.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "InvalidParams", "msg": "invalid " + name})
		return 0, false
	}
	return id, true
}
