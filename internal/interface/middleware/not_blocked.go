package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/pkg/response"
)

// NotBlocked re-reads the persisted blocked flag for the acting user, so a
// block takes effect on the very next request rather than at token expiry.
// Apply it to mutating routes only; reads stay open to blocked accounts.
func NotBlocked(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		blocked, err := users.IsBlocked(c.Request.Context(), uid)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if blocked {
			response.AbortError(c, http.StatusForbidden, "account is blocked", nil)
			return
		}
		c.Set(CtxBlockedKey, false)
		c.Next()
	}
}
