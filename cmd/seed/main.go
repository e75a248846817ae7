package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-blog-api/config"
	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/container"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	pginfra "github.com/oksasatya/go-ddd-blog-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

// seeds a demo author with one published post and one draft
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	ctx := context.Background()

	var infra container.Infra
	if cfg.StorageDriver == "postgres" {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()
		infra.PGPool = pool
	}

	c, err := container.New(cfg, logger, infra)
	if err != nil {
		logger.WithError(err).Fatal("failed to build application")
	}

	email, password := "demo@example.com", "Passw0rd123"
	user, err := c.UserSvc.Register(ctx, application.RegisterInput{Name: "Demo Author", Email: email, Password: password})
	if errors.Is(err, apperror.ErrConflict) {
		logger.WithField("email", email).Info("demo user already exists; nothing to seed")
		return
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}

	summary := "A first look at the blog API."
	published, err := c.Blogs.Create(ctx, user, application.CreatePostInput{
		Title:       "Hello, world",
		Content:     "This post was created by the seed command so the public listing is not empty.",
		Summary:     &summary,
		IsPublished: true,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to seed published post")
	}
	draft, err := c.Blogs.Create(ctx, user, application.CreatePostInput{
		Title:   "Work in progress",
		Content: "Drafts are only visible to their author until they are published.",
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to seed draft")
	}

	logger.WithFields(map[string]any{
		"user_id":   user.ID,
		"email":     email,
		"password":  password,
		"published": published.ID,
		"draft":     draft.ID,
	}).Info("seeded demo data")
}
