// Package container builds the application graph once at startup.
package container

import (
	"errors"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/config"
	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-ddd-blog-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog-api/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
	mailtpl "github.com/oksasatya/go-ddd-blog-api/pkg/mailer/templates"
)

// Infra holds the optional external clients. Nil fields disable the feature they back.
type Infra struct {
	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
}

// Container is the wired application, shared read-only across requests.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Infra

	JWT    *helpers.JWTManager
	Hasher helpers.PasswordHasher

	Users repo.UserRepository
	Posts repo.PostRepository
	Tx    repo.Transactor

	// SearchIndex is nil when Elasticsearch is not configured.
	SearchIndex *search.PostIndex

	Auth     *application.AuthService
	Sessions *application.SessionResolver
	UserSvc  *application.UserService
	Blogs    *application.BlogService
}

var ErrNoDatabase = errors.New("postgres storage selected but no pool was provided")

func New(cfg *config.Config, logger *logrus.Logger, infra Infra) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger, Infra: infra}

	switch cfg.StorageDriver {
	case "memory":
		store := memory.NewStore()
		c.Users, c.Posts, c.Tx = store.Users(), store.Posts(), store
	default:
		if infra.PGPool == nil {
			return nil, ErrNoDatabase
		}
		c.Users = pginfra.NewUserRepository(infra.PGPool)
		c.Posts = pginfra.NewPostRepository(infra.PGPool)
		c.Tx = pginfra.NewTransactor(infra.PGPool)
	}

	jwtManager, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTL(), logger)
	if err != nil {
		return nil, err
	}
	c.JWT = jwtManager

	hasher, err := helpers.NewPasswordHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	c.Hasher = hasher

	notifier := &application.Notifier{
		Brand:       mailtpl.Brand{CompanyName: cfg.CompanyName, AppName: cfg.AppName},
		PostURLBase: cfg.PostURLBase,
		Logger:      logger,
	}
	if infra.RabbitPub != nil {
		notifier.Jobs = infra.RabbitPub
	}

	var index application.PostIndex
	if infra.ES != nil && cfg.ESPostsIndex != "" {
		c.SearchIndex = search.NewPostIndex(infra.ES, cfg.ESPostsIndex, logger)
		index = c.SearchIndex
	}
	var covers application.CoverStore
	if infra.GCS != nil && cfg.GCSBucket != "" {
		covers = &helpers.GCSBucket{Client: infra.GCS, Bucket: cfg.GCSBucket}
	}

	c.Auth, err = application.NewAuthService(c.Users, c.Hasher, c.JWT, logger)
	if err != nil {
		return nil, err
	}
	c.Sessions = application.NewSessionResolver(c.Users, c.JWT, logger)
	c.UserSvc = application.NewUserService(c.Users, c.Posts, c.Tx, c.Hasher, index, notifier, logger)
	c.Blogs = application.NewBlogService(c.Posts, c.Users, c.Tx, index, covers, notifier, logger)
	return c, nil
}
