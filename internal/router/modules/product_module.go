package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/inventory-sales-api/internal/interface/http"
	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
)

type ProductModule struct {
	Handler *handlers.ProductHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewProductModule(h *handlers.ProductHandler, jwt *helpers.JWTManager, rdb *redis.Client) *ProductModule {
	return &ProductModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.Use(middleware.Auth(m.JWT))
	{
		g.POST("", m.Handler.Create)
		g.GET("", m.Handler.List)
		g.GET("/search", middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", m.Handler.Update)
		g.POST("/:id/sell", m.Handler.Sell)
		g.PATCH("/:id/stock", m.Handler.IncreaseStock)
		g.DELETE("/delete/:id", m.Handler.Delete)
	}
}
