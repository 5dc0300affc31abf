package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/inventory-sales-api/internal/interface/http"
	"github.com/oksasatya/inventory-sales-api/internal/interface/middleware"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	codeLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", codeLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/verify", verifyLimiter, m.Handler.Verify)
	rg.POST("/auth/resend-code", codeLimiter, m.Handler.ResendCode)
	rg.POST("/auth/forgot-password", codeLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/reset-password", verifyLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("", m.Handler.Profile)
		auth.POST("/profile-image", middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadProfileImage)
		auth.PUT("/password", m.Handler.ChangePassword)
	}
}
