package router

import (
	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	handlers "github.com/oksasatya/go-ddd-blog-api/internal/interface/http"
	"github.com/oksasatya/go-ddd-blog-api/internal/router/modules"
)

// InitModules wires every feature module from the container into the registry.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger)
	userHandler := handlers.NewUserHandler(c.UserSvc, c.Logger)
	blogHandler := handlers.NewBlogHandler(c.Blogs, c.Logger)

	r.AddRoot(modules.NewHealthModule(c))
	r.Add(modules.NewAuthModule(authHandler, c))
	r.Add(modules.NewUserModule(userHandler, c))
	r.Add(modules.NewBlogModule(blogHandler, c))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c))
	}
}
