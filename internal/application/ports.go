package application

import (
	"context"
	"io"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

// JobPublisher puts a JSON job on a queue. *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PostIndex is the optional full-text index of published posts.
type PostIndex interface {
	Index(ctx context.Context, p *entity.Post) error
	Remove(ctx context.Context, id int64) error
	// Search returns matching post ids in rank order and the total hit count.
	Search(ctx context.Context, q string, offset, limit int) ([]int64, int, error)
}

// CoverStore keeps post cover images and returns their public URL.
type CoverStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
