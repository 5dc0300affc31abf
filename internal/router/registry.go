package router

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Registry collects modules and mounts them on one route group. The group
// sits at the engine root unless a prefix such as "/api" is configured.
type Registry struct {
	Engine      *gin.Engine
	Routes      *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	return &Registry{Engine: engine, Routes: engine.Group(normalizePrefix(prefix))}
}

// normalizePrefix turns "api", "/api/" and "/api" into "/api"; blank means root.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll applies the shared middleware, then lets every module add its
// routes in the order they were added.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.Routes.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.Routes)
	}
}
