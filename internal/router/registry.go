package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Module is a feature area that registers its own routes under /api.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects feature modules and mounts them on the engine. It also
// owns the /healthz probe, which stays outside the /api group so load
// balancers can hit it without auth or rate limits.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
