package modules

import (
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	"github.com/oksasatya/go-ddd-blog-api/internal/interface/middleware"
)

// DebugModule exposes expvar counters, restricted to private networks.
type DebugModule struct {
	C *container.Container
}

func NewDebugModule(c *container.Container) *DebugModule { return &DebugModule{C: c} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), nil)
	rg.GET("/debug/vars", privateOnly(), rl, gin.WrapH(expvar.Handler()))
}

// privateOnly needs both the direct peer and the resolved client IP to be
// private, so a forwarded header alone cannot open the endpoint.
func privateOnly() gin.HandlerFunc {
	allow := middleware.AllowPrivateIP()
	return func(c *gin.Context) {
		peer := net.ParseIP(c.RemoteIP())
		if peer == nil || !(peer.IsLoopback() || peer.IsPrivate()) || !allow(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
