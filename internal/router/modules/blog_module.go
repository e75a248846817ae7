package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	handlers "github.com/oksasatya/go-ddd-blog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
)

// BlogModule mounts /blogs.
// Public: GET /blogs, GET /blogs/search, GET /blogs/:id (owners also see their drafts)
// Protected: POST /blogs, GET /blogs/my-blogs, PUT|DELETE /blogs/:id,
// POST /blogs/:id/publish, POST /blogs/:id/cover
type BlogModule struct {
	Handler *handlers.BlogHandler
	C       *container.Container
}

func NewBlogModule(h *handlers.BlogHandler, c *container.Container) *BlogModule {
	return &BlogModule{Handler: h, C: c}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	auth := middleware.Auth(m.C.Sessions, m.C.Logger)
	writeLimiter := middleware.RateLimit(m.C.Redis, 60, time.Minute, middleware.KeyByUserID(), nil)
	readLimiter := middleware.RateLimit(m.C.Redis, 300, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	g := rg.Group("/blogs")
	g.GET("", readLimiter, m.Handler.List)
	g.GET("/search", readLimiter, m.Handler.Search)
	g.GET("/my-blogs", auth, m.Handler.Mine)
	g.GET("/:id", readLimiter, middleware.OptionalAuth(m.C.Sessions), m.Handler.Get)

	g.POST("", auth, writeLimiter, m.Handler.Create)
	g.PUT("/:id", auth, writeLimiter, m.Handler.Update)
	g.DELETE("/:id", auth, writeLimiter, m.Handler.Delete)
	g.POST("/:id/publish", auth, writeLimiter, m.Handler.Publish)
	g.POST("/:id/cover", auth, writeLimiter, m.Handler.UploadCover)
}
