package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/container"
	"github.com/bloghive/bloghive-api/internal/domain/entity"
	handlers "github.com/bloghive/bloghive-api/internal/interface/http"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
)

// AdminModule wires the moderation console under /api/admin. Every route
// requires a token carrying the admin role.
type AdminModule struct {
	Handler *handlers.AdminHandler
}

func NewAdminModule(h *handlers.AdminHandler) *AdminModule {
	return &AdminModule{Handler: h}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	admin := rg.Group("/admin")
	admin.Use(
		middleware.Auth(rdb, jwt),
		middleware.RequireRole(entity.RoleAdmin),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByUserID()),
	)

	admin.GET("/users", m.Handler.ListUsers)
	admin.PUT("/users/:id/role", m.Handler.ChangeRole)
	admin.PUT("/users/:id/block", m.Handler.ToggleBlock)
	admin.DELETE("/users/:id", m.Handler.DeleteUser)

	admin.GET("/blogs", m.Handler.ListBlogs)
	admin.DELETE("/blogs/:id", m.Handler.DeleteBlog)
	admin.DELETE("/blogs/:id/comments/:commentId", m.Handler.DeleteComment)
}
