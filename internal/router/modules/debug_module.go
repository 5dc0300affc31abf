package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
)

type DebugModule struct {
	Redis      *redis.Client
	AllowCIDRs []string
}

func NewDebugModule(rdb *redis.Client, allowCIDRs []string) *DebugModule {
	return &DebugModule{Redis: rdb, AllowCIDRs: allowCIDRs}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// private networks and configured CIDRs bypass the per-IP limit
	private, listed := middleware.AllowPrivateIP(), middleware.AllowCIDRs(m.AllowCIDRs...)
	bypass := func(c *gin.Context) bool { return private(c) || listed(c) }
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), bypass)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
