package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/pkg/helpers"
	"github.com/bloghive/bloghive-api/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserRoleKey = "userRole"
	CtxBlockedKey  = "userBlocked"
)

// Actor builds the policy actor for the current request from context values
// set by Auth and NotBlocked.
func Actor(c *gin.Context) policy.Actor {
	return policy.Actor{
		ID:      c.GetString(CtxUserIDKey),
		Role:    entity.Role(c.GetString(CtxUserRoleKey)),
		Blocked: c.GetBool(CtxBlockedKey),
	}
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if t, err := c.Cookie("access_token"); err == nil {
		return t
	}
	return ""
}

// Auth validates the access token and injects the acting identity and role
// into the Gin context. The role is trusted from the token for its lifetime.
// When a Redis client is provided, an active session is also required, so
// logout invalidates outstanding tokens.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		if rdb != nil {
			key := "user:session:" + claims.UserID
			var sess struct {
				UserID string `json:"user_id"`
			}
			found, err := helpers.RedisGetJSON(c.Request.Context(), rdb, key, &sess)
			if err != nil || !found {
				response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserRoleKey, string(claims.Role))
		c.Next()
	}
}
