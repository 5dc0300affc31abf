package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/inventory-sales-api/internal/interface/http"
	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
)

type CategoryModule struct {
	Handler *handlers.CategoryHandler
	JWT     *helpers.JWTManager
}

func NewCategoryModule(h *handlers.CategoryHandler, jwt *helpers.JWTManager) *CategoryModule {
	return &CategoryModule{Handler: h, JWT: jwt}
}

func (m *CategoryModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/categories")
	g.Use(middleware.Auth(m.JWT))
	{
		g.GET("/:userId", m.Handler.List)
		g.POST("/:userId", m.Handler.Create)
		g.GET("/category/:id", m.Handler.Get)
		g.PUT("/category/:id", m.Handler.Update)
		g.DELETE("/category/:id", m.Handler.Delete)
		g.POST("/category/:id/outcomes", m.Handler.AddOutcome)
	}
}
