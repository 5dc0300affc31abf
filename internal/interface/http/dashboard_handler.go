package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

type DashboardHandler struct {
	Svc    *application.DashboardService
	Logger *logrus.Logger
}

func NewDashboardHandler(svc *application.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Svc: svc, Logger: logger}
}

// Stats GET /dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	d, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, d, "dashboard", nil)
}
