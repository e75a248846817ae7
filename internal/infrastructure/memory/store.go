// Package memory is an in-process storage backend used for local runs and tests.
// A single mutex serializes access; WithinTx holds it for the whole callback and
// restores a snapshot when the callback fails.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

type txKey struct{}

type Store struct {
	mu sync.RWMutex

	users      map[int64]*entity.User
	posts      map[int64]*entity.Post
	nextUserID int64
	nextPostID int64

	// Now stamps created_at/updated_at.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: map[int64]*entity.User{},
		posts: map[int64]*entity.Post{},
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*Store)
	return ok
}

func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

type snapshot struct {
	users      map[int64]*entity.User
	posts      map[int64]*entity.Post
	nextUserID int64
	nextPostID int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		users:      make(map[int64]*entity.User, len(s.users)),
		posts:      make(map[int64]*entity.Post, len(s.posts)),
		nextUserID: s.nextUserID,
		nextPostID: s.nextPostID,
	}
	for id, u := range s.users {
		snap.users[id] = copyUser(u)
	}
	for id, p := range s.posts {
		snap.posts[id] = copyPost(p)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.users = snap.users
	s.posts = snap.posts
	s.nextUserID = snap.nextUserID
	s.nextPostID = snap.nextPostID
}

// WithinTx implements repository.Transactor. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, s))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	return &c
}

func copyPost(p *entity.Post) *entity.Post {
	c := *p
	if p.Summary != nil {
		sum := *p.Summary
		c.Summary = &sum
	}
	return &c
}
