package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

const TokenType = "bearer"

// dummyPassword is hashed once so unknown emails cost one verification too.
const dummyPassword = "dummy-password-for-timing-equalization"

// AuthService checks credentials and issues access tokens.
type AuthService struct {
	Users  repo.UserRepository
	Hasher helpers.PasswordHasher
	JWT    *helpers.JWTManager
	Logger *logrus.Logger

	dummyHash string
}

func NewAuthService(users repo.UserRepository, hasher helpers.PasswordHasher, jwt *helpers.JWTManager, logger *logrus.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, apperror.Hashing(err)
	}
	return &AuthService{Users: users, Hasher: hasher, JWT: jwt, Logger: logger, dummyHash: dummy}, nil
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresIn   int                `json:"expires_in"` // minutes
	ExpiresAt   time.Time          `json:"expires_at"`
	User        entity.UserSummary `json:"user"`
}

// Authenticate returns the user when email and password match an active
// account. Unknown email, wrong password and inactive account all yield
// (nil, nil); only storage failures are errors.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.Verify(password, s.dummyHash)
			return nil, nil
		}
		return nil, apperror.Internal("Failed to load user", err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, nil
	}
	if !u.IsActive {
		return nil, nil
	}
	return u, nil
}

// Login authenticates and issues a bearer token with sub=email and user_id.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Info("login rejected")
		}
		return nil, apperror.Authentication("Invalid email or password")
	}
	token, exp, err := s.JWT.IssueAccessToken(u.Email, map[string]any{"user_id": u.ID})
	if err != nil {
		return nil, apperror.TokenCreation(err)
	}
	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresIn:   int(s.JWT.TTL / time.Minute),
		ExpiresAt:   exp,
		User:        u.Summary(),
	}, nil
}
