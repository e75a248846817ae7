package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

// SessionResolver turns a bearer token into the current, active user.
type SessionResolver struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewSessionResolver(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *SessionResolver {
	return &SessionResolver{Users: users, JWT: jwt, Logger: logger}
}

// Resolve checks, in order: token validity, user existence, account active.
// The user_id claim must name the account found by email, so a token never
// follows its email to a different (re-registered or renamed) account.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (*entity.User, error) {
	vt, ok := r.JWT.Verify(token)
	if !ok {
		return nil, apperror.Authentication("Invalid or expired token")
	}
	u, err := r.Users.FindByEmail(ctx, vt.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Authentication("User not found")
		}
		return nil, apperror.Internal("Failed to load user", err)
	}
	if id, ok := vt.UserID(); !ok || id != u.ID {
		if r.Logger != nil {
			r.Logger.WithField("subject", vt.Subject).Warn("token user_id does not match account")
		}
		return nil, apperror.Authentication("User not found")
	}
	if !u.IsActive {
		return nil, apperror.Authentication("User account is deactivated")
	}
	return u, nil
}
