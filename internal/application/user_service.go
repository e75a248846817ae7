package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/pkg/helpers"
)

var (
	errEmailTaken    = apperror.Conflict("Email already registered")
	errNotYourUser   = apperror.Authorization("Not authorized to access this user")
	errWrongPassword = apperror.Authentication("Current password is incorrect")
)

type UserService struct {
	Users    repo.UserRepository
	Posts    repo.PostRepository
	Tx       repo.Transactor
	Hasher   helpers.PasswordHasher
	// Index may be nil; posts removed by an account delete are dropped from it.
	Index    PostIndex
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewUserService(users repo.UserRepository, posts repo.PostRepository, tx repo.Transactor, hasher helpers.PasswordHasher, index PostIndex, notifier *Notifier, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Posts: posts, Tx: tx, Hasher: hasher, Index: index, Notifier: notifier, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput is a partial update: nil fields are left untouched.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

const (
	minNameLength = 2
	maxNameLength = 100
)

// cleanName trims name and checks the trimmed length.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		return "", apperror.Validation("Name must be between 2 and 100 characters")
	}
	return name, nil
}

// checkPassword enforces the byte limit of the hash input, which rune-based
// request validation cannot see for multi-byte text.
func checkPassword(pw string) error {
	if len(pw) > helpers.MaxPasswordBytes {
		return apperror.Validation("Password must be at most 72 bytes")
	}
	return nil
}

func userLoadError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound("User")
	}
	return apperror.Internal("Failed to load user", err)
}

func userWriteError(err error) error {
	if errors.Is(err, repo.ErrConflict) {
		return errEmailTaken
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound("User")
	}
	return apperror.Internal("Failed to save user", err)
}

// Register creates an active, verified account and queues a welcome email.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Hashing(err)
	}
	var created *entity.User
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Users.Insert(ctx, &entity.User{
			Email:        strings.TrimSpace(in.Email),
			Name:         name,
			PasswordHash: hash,
			IsActive:     true,
			IsVerified:   true,
		})
		if err != nil {
			return userWriteError(err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", created.ID).Info("user registered")
	}
	s.Notifier.Welcome(ctx, created)
	return created, nil
}

// GetByID returns the user only when the caller asks for themselves.
func (s *UserService) GetByID(ctx context.Context, caller *entity.User, id int64) (*entity.User, error) {
	if caller == nil || caller.ID != id {
		return nil, errNotYourUser
	}
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return nil, userLoadError(err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *entity.User, in UpdateProfileInput) (*entity.User, error) {
	var name string
	if in.Name != nil {
		n, err := cleanName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}
	var updated *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Users.FindByID(ctx, caller.ID)
		if err != nil {
			return userLoadError(err)
		}
		if in.Name != nil {
			u.Name = name
		}
		if in.Email != nil {
			u.Email = strings.TrimSpace(*in.Email)
		}
		updated, err = s.Users.Update(ctx, u)
		if err != nil {
			return userWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangePassword requires the current password. Tokens issued before the change stay valid until they expire.
func (s *UserService) ChangePassword(ctx context.Context, caller *entity.User, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Users.FindByID(ctx, caller.ID)
		if err != nil {
			return userLoadError(err)
		}
		if !s.Hasher.Verify(current, u.PasswordHash) {
			return errWrongPassword
		}
		hash, err := s.Hasher.Hash(next)
		if err != nil {
			return apperror.Hashing(err)
		}
		u.PasswordHash = hash
		if _, err := s.Users.Update(ctx, u); err != nil {
			return userWriteError(err)
		}
		return nil
	})
}

// Deactivate marks the account inactive; the session resolver rejects it from then on.
func (s *UserService) Deactivate(ctx context.Context, caller *entity.User) (*entity.User, error) {
	var updated *entity.User
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Users.FindByID(ctx, caller.ID)
		if err != nil {
			return userLoadError(err)
		}
		u.IsActive = false
		updated, err = s.Users.Update(ctx, u)
		if err != nil {
			return userWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account and every post it owns.
func (s *UserService) Delete(ctx context.Context, caller *entity.User) error {
	var owned []*entity.Post
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		posts, err := s.Posts.ListByCreator(ctx, caller.ID)
		if err != nil {
			return apperror.Internal("Failed to load user posts", err)
		}
		ok, err := s.Users.Delete(ctx, caller.ID)
		if err != nil {
			return apperror.Internal("Failed to delete user", err)
		}
		if !ok {
			return apperror.NotFound("User")
		}
		owned = posts
		return nil
	})
	if err != nil {
		return err
	}
	if s.Index != nil {
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		for _, p := range owned {
			if err := s.Index.Remove(c, p.ID); err != nil && s.Logger != nil {
				s.Logger.WithError(err).WithField("post_id", p.ID).Warn("search index remove failed")
			}
		}
	}
	return nil
}

// WithPosts returns the caller and all of their posts, drafts included.
func (s *UserService) WithPosts(ctx context.Context, caller *entity.User) (*entity.User, []*entity.Post, error) {
	u, err := s.Users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, nil, userLoadError(err)
	}
	posts, err := s.Posts.ListByCreator(ctx, u.ID)
	if err != nil {
		return nil, nil, apperror.Internal("Failed to load posts", err)
	}
	return u, posts, nil
}
