package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	handlers "github.com/oksasatya/go-ddd-blog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
)

// AuthModule mounts /auth.
// Public: POST /auth/login, POST /auth/login-form
// Protected: POST /auth/logout, GET /auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	C       *container.Container
}

func NewAuthModule(h *handlers.AuthHandler, c *container.Container) *AuthModule {
	return &AuthModule{Handler: h, C: c}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.C.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/auth")
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.POST("/login-form", loginLimiter, m.Handler.LoginForm)

	auth := g.Group("")
	auth.Use(middleware.Auth(m.C.Sessions, m.C.Logger))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
