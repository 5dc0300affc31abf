package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/oksasatya/inventory-sales-api/pkg/response"
)

type HealthModule struct {
	DB *mongo.Database
}

func NewHealthModule(db *mongo.Database) *HealthModule { return &HealthModule{DB: db} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
}

// health reports liveness and whether the document store answers a ping.
func (m *HealthModule) health(c *gin.Context) {
	mongoStatus := "disabled"
	if m.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		mongoStatus = "up"
		if err := m.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
			mongoStatus = "down"
		}
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "mongo": mongoStatus}, "healthy", nil)
}
