package middleware

import (
	"context"
	"net/http"
	"strings"

	"simkas/internal/model"
	"simkas/internal/pkg"

	"github.com/gin-gonic/gin"
)

const ContextActorKey = "actor"

// ActorLoader resolves a user id into the current Actor.
type ActorLoader interface {
	Actor(ctx context.Context, userID uint64) (model.Actor, error)
}

// SessionChecker is the read side of the single-login session store.
type SessionChecker interface {
	Get(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64) error
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "Unauthorized", "msg": msg})
}

// AuthMiddleware validates the bearer token, checks it is the live session
// (when sessions is non-nil) and stores the freshly loaded Actor.
func AuthMiddleware(tokens *pkg.TokenManager, sessions SessionChecker, actors ActorLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization format")
			return
		}
		tokenStr := strings.TrimSpace(parts[1])

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		ctx := c.Request.Context()
		if sessions != nil {
			current, err := sessions.Get(ctx, claims.UserID)
			if err != nil || current != tokenStr {
				unauthorized(c, "account has been logged in elsewhere")
				return
			}
			if err := sessions.Extend(ctx, claims.UserID); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "Internal", "msg": err.Error()})
				return
			}
		}

		actor, err := actors.Actor(ctx, claims.UserID)
		if err != nil {
			unauthorized(c, "user no longer exists")
			return
		}
		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
