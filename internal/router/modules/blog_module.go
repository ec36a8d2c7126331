package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/container"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	handlers "github.com/bloghive/bloghive-api/internal/interface/http"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
)

// BlogModule wires blog routes. Reads are public; every mutation requires a
// valid token and an unblocked account.
type BlogModule struct {
	Handler *handlers.BlogHandler
	Users   repository.UserRepository
}

func NewBlogModule(h *handlers.BlogHandler, users repository.UserRepository) *BlogModule {
	return &BlogModule{Handler: h, Users: users}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	rg.GET("/blogs", m.Handler.List)
	rg.GET("/blogs/:id", m.Handler.Get)

	auth := rg.Group("/blogs")
	auth.Use(
		middleware.Auth(rdb, jwt),
		middleware.NotBlocked(m.Users),
		middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID()),
	)
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/comments", m.Handler.AddComment)
		auth.DELETE("/:id/comments/:commentId", m.Handler.DeleteComment)
		auth.PUT("/:id/like", m.Handler.ToggleLike)
	}
}
