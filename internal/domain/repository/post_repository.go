package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

// PostFilter narrows List. Zero values mean "no constraint".
type PostFilter struct {
	PublishedOnly bool
	CreatorID     int64
	// Query matches title or content, case-insensitive substring.
	Query  string
	Offset int
	Limit  int
}

// PostRepository defines persistence for blog posts.
type PostRepository interface {
	Insert(ctx context.Context, p *entity.Post) (*entity.Post, error)
	FindByID(ctx context.Context, id int64) (*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) (*entity.Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
	// List returns one page ordered newest first and the total match count.
	List(ctx context.Context, f PostFilter) ([]*entity.Post, int, error)
	// ListByCreator returns every post of one owner, drafts included, newest first.
	ListByCreator(ctx context.Context, creatorID int64) ([]*entity.Post, error)
}
