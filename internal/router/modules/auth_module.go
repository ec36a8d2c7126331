package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/container"
	handlers "github.com/bloghive/bloghive-api/internal/interface/http"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
)

// AuthModule wires the public auth routes plus logout.
// Public: POST /api/auth/register, /login, /refresh, /forgot-password,
// /reset-password/:token. Protected: POST /api/auth/logout.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIP())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP())
	resetLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath())

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	auth.POST("/forgot-password", resetLimiter, m.Handler.ForgotPassword)
	auth.POST("/reset-password/:token", resetLimiter, m.Handler.ResetPassword)

	auth.POST("/logout", middleware.Auth(rdb, jwt), m.Handler.Logout)
}
