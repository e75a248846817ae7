package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Find* return ErrNotFound when no row matches; Insert and Update return
// ErrConflict when the email is already taken.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	Insert(ctx context.Context, u *entity.User) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) (*entity.User, error)
	// Delete removes the user and, transitively, every post they own.
	Delete(ctx context.Context, id int64) (bool, error)
}
