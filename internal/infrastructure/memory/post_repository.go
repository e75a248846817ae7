package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
)

// PostRepository implements repository.PostRepository on a Store.
type PostRepository struct {
	s *Store
}

var _ repo.PostRepository = (*PostRepository)(nil)

var errUnknownCreator = errors.New("creator does not exist")

func (r *PostRepository) Insert(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.users[p.CreatorID]; !ok {
		return nil, errUnknownCreator
	}
	r.s.nextPostID++
	now := r.s.Now()
	stored := copyPost(p)
	stored.ID = r.s.nextPostID
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.s.posts[stored.ID] = stored
	return copyPost(stored), nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	defer r.s.rlock(ctx)()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyPost(p), nil
}

// Update overwrites the mutable fields. The owner and creation time are kept.
func (r *PostRepository) Update(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	defer r.s.lock(ctx)()
	cur, ok := r.s.posts[p.ID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	stored := copyPost(p)
	stored.CreatorID = cur.CreatorID
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = r.s.Now()
	r.s.posts[p.ID] = stored
	return copyPost(stored), nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	defer r.s.lock(ctx)()
	if _, ok := r.s.posts[id]; !ok {
		return false, nil
	}
	delete(r.s.posts, id)
	return true, nil
}

func matches(p *entity.Post, f repo.PostFilter) bool {
	if f.PublishedOnly && !p.IsPublished {
		return false
	}
	if f.CreatorID != 0 && p.CreatorID != f.CreatorID {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Content), q) {
			return false
		}
	}
	return true
}

// newestFirst orders like the SQL backend: created_at DESC, id DESC.
func newestFirst(posts []*entity.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func (r *PostRepository) List(ctx context.Context, f repo.PostFilter) ([]*entity.Post, int, error) {
	defer r.s.rlock(ctx)()
	all := make([]*entity.Post, 0)
	for _, p := range r.s.posts {
		if matches(p, f) {
			all = append(all, p)
		}
	}
	newestFirst(all)
	total := len(all)

	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	out := make([]*entity.Post, 0, end-start)
	for _, p := range all[start:end] {
		out = append(out, copyPost(p))
	}
	return out, total, nil
}

func (r *PostRepository) ListByCreator(ctx context.Context, creatorID int64) ([]*entity.Post, error) {
	posts, _, err := r.List(ctx, repo.PostFilter{CreatorID: creatorID})
	return posts, err
}
