package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	"github.com/oksasatya/go-ddd-blog-api/pkg/response"
)

// HealthModule serves GET / and GET /health at the engine root.
type HealthModule struct {
	C *container.Container
}

func NewHealthModule(c *container.Container) *HealthModule { return &HealthModule{C: c} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", m.info)
	rg.GET("/health", m.health)
}

func (m *HealthModule) info(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"name":    m.C.Config.AppName,
		"version": m.C.Config.AppVersion,
		"docs":    "/api/v1",
	}, "Welcome to "+m.C.Config.AppName, nil)
}

func (m *HealthModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"storage": m.C.Config.StorageDriver}
	healthy := true
	if m.C.PGPool != nil {
		if err := m.C.PGPool.Ping(ctx); err != nil {
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "up"
		}
	}
	if m.C.Redis != nil {
		if err := m.C.Redis.Ping(ctx).Err(); err != nil {
			// limiter fails open, so redis is not fatal
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	checks["version"] = m.C.Config.AppVersion
	if !healthy {
		checks["status"] = "unhealthy"
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", checks)
		return
	}
	checks["status"] = "healthy"
	response.Success(c, http.StatusOK, checks, "healthy", nil)
}
