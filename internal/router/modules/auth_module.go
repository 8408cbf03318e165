package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/satriadika/go-auth-service/internal/container"
	handlers "github.com/satriadika/go-auth-service/internal/interface/http"
	"github.com/satriadika/go-auth-service/internal/interface/middleware"
	"github.com/satriadika/go-auth-service/pkg/helpers"
)

// AuthModule wires the auth handlers and per-route rate limits.
// Public: register, verify-email, login, refresh, logout, password reset.
// Protected: logout-all.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIP())
	resetLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.GET("/auth/verify-email", m.Handler.VerifyEmail)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/request-password-reset", resetLimiter, m.Handler.RequestPasswordReset)
	rg.GET("/auth/verify-reset", m.Handler.VerifyResetToken)
	rg.POST("/auth/reset-password", resetLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserID()))
	{
		auth.POST("/auth/logout-all", m.Handler.LogoutAll)
	}
}
