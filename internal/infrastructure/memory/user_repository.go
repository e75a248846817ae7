package memory

import (
	"context"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
)

// UserRepository implements repository.UserRepository on a Store.
type UserRepository struct {
	s *Store
}

var _ repo.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) emailTaken(email string, except int64) bool {
	for id, u := range r.s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	defer r.s.rlock(ctx)()
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	defer r.s.rlock(ctx)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) (*entity.User, error) {
	defer r.s.lock(ctx)()
	if r.emailTaken(u.Email, 0) {
		return nil, repo.ErrConflict
	}
	r.s.nextUserID++
	now := r.s.Now()
	stored := copyUser(u)
	stored.ID = r.s.nextUserID
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.s.users[stored.ID] = stored
	return copyUser(stored), nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	defer r.s.lock(ctx)()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return nil, repo.ErrConflict
	}
	stored := copyUser(u)
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = r.s.Now()
	r.s.users[u.ID] = stored
	return copyUser(stored), nil
}

// Delete removes the user and cascades to their posts.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	for pid, p := range r.s.posts {
		if p.CreatorID == id {
			delete(r.s.posts, pid)
		}
	}
	return true, nil
}
