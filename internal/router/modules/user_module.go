package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	handlers "github.com/oksasatya/go-ddd-blog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
)

// UserModule mounts /users. Registration is public; everything else needs a bearer token.
type UserModule struct {
	Handler *handlers.UserHandler
	C       *container.Container
}

func NewUserModule(h *handlers.UserHandler, c *container.Container) *UserModule {
	return &UserModule{Handler: h, C: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.C.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/users")
	g.POST("", registerLimiter, m.Handler.Register)

	auth := g.Group("")
	auth.Use(
		middleware.Auth(m.C.Sessions, m.C.Logger),
		middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/me", m.Handler.UpdateMe)
		auth.DELETE("/me", m.Handler.DeleteMe)
		auth.GET("/me/blogs", m.Handler.MeWithBlogs)
		auth.PUT("/me/password", m.Handler.ChangePassword)
		auth.POST("/me/deactivate", m.Handler.Deactivate)
		auth.GET("/:id", m.Handler.GetByID)
	}
}
