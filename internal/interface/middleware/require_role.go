package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/pkg/response"
)

// RequireRole gates a route group on a role predicate. Must run after Auth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserIDKey) == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if d := policy.RequireRole(role)(Actor(c)); !d.Allowed {
			response.AbortError(c, http.StatusForbidden, d.Reason, nil)
			return
		}
		c.Next()
	}
}
