package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghive/bloghive-api/internal/container"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	handlers "github.com/bloghive/bloghive-api/internal/interface/http"
	"github.com/bloghive/bloghive-api/internal/interface/middleware"
)

// UserModule wires profile, follow-graph and search routes. All routes need a
// valid token; mutations additionally re-check the blocked flag against the
// database so a freshly blocked user is cut off before their token expires.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   repository.UserRepository
}

func NewUserModule(h *handlers.UserHandler, users repository.UserRepository) *UserModule {
	return &UserModule{Handler: h, Users: users}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	users := rg.Group("/users")
	users.Use(
		middleware.Auth(rdb, jwt),
		middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByUserID()),
	)

	users.GET("/me", m.Handler.Me)
	users.GET("/me/blogs", m.Handler.MyBlogs)
	users.GET("/me/followers", m.Handler.MyFollowers)
	users.GET("/search", m.Handler.Search)
	users.GET("/:id", m.Handler.PublicProfile)
	users.GET("/:id/blogs", m.Handler.UserBlogs)
	users.GET("/:id/followers", m.Handler.UserFollowers)

	notBlocked := middleware.NotBlocked(m.Users)
	users.PUT("/me", notBlocked, m.Handler.UpdateMe)
	users.PUT("/me/avatar", notBlocked, m.Handler.UploadAvatar)
	users.PUT("/me/password", notBlocked, m.Handler.UpdatePassword)
	users.DELETE("/me", notBlocked, m.Handler.DeleteMe)
	users.PUT("/:id/follow", notBlocked, m.Handler.ToggleFollow)
}
