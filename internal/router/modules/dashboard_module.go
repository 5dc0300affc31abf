package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/inventory-sales-api/internal/interface/http"
	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
)

type DashboardModule struct {
	Handler *handlers.DashboardHandler
	JWT     *helpers.JWTManager
}

func NewDashboardModule(h *handlers.DashboardHandler, jwt *helpers.JWTManager) *DashboardModule {
	return &DashboardModule{Handler: h, JWT: jwt}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", middleware.Auth(m.JWT), m.Handler.Stats)
}
