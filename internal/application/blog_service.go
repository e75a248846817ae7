package application

import (
	"context"
	"errors"
	"expvar"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/apperror"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/service"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var (
	errPostNotFound  = apperror.NotFound("Blog post")
	errNotPostOwner  = apperror.Authorization("Not authorized to modify this blog post")
	errUnpublish     = apperror.Validation("Published posts cannot be unpublished")
	errNoCoverStore  = apperror.Internal("Cover storage is not configured", nil)
	errBadCoverImage = apperror.Validation("Cover must be a JPEG, PNG, GIF or WebP image")
)

var postsPublished = expvar.NewInt("posts_published_total")

var coverContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type BlogService struct {
	Posts    repo.PostRepository
	Users    repo.UserRepository
	Tx       repo.Transactor
	Index    PostIndex  // optional
	Covers   CoverStore // optional
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewBlogService(posts repo.PostRepository, users repo.UserRepository, tx repo.Transactor, index PostIndex, covers CoverStore, notifier *Notifier, logger *logrus.Logger) *BlogService {
	return &BlogService{Posts: posts, Users: users, Tx: tx, Index: index, Covers: covers, Notifier: notifier, Logger: logger}
}

type CreatePostInput struct {
	Title       string
	Content     string
	Summary     *string
	IsPublished bool
}

// UpdatePostInput is a partial update: nil fields are left untouched.
// IsPublished may only move a draft to published.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	Summary     *string
	IsPublished *bool
}

// PostView is a single post with its creator composed at read time.
type PostView struct {
	Post    *entity.Post
	Creator entity.UserSummary
}

type PostPage struct {
	Posts   []*entity.Post
	Total   int
	Page    int
	Size    int
	HasNext bool
	HasPrev bool
}

// Pagination is skip/limit as accepted on the wire.
type Pagination struct {
	Skip  int
	Limit int
}

func (p Pagination) normalize() (Pagination, error) {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Skip < 0 {
		return p, apperror.Validation("skip must be greater than or equal to 0")
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return p, apperror.Validation("limit must be between 1 and " + strconv.Itoa(MaxPageLimit))
	}
	return p, nil
}

func newPage(posts []*entity.Post, total int, p Pagination) *PostPage {
	if posts == nil {
		posts = []*entity.Post{}
	}
	return &PostPage{
		Posts:   posts,
		Total:   total,
		Page:    p.Skip/p.Limit + 1,
		Size:    p.Limit,
		HasNext: p.Skip+p.Limit < total,
		HasPrev: p.Skip > 0,
	}
}

func (s *BlogService) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

// loadOwned loads post id and checks that caller owns it. Absence wins over ownership.
func (s *BlogService) loadOwned(ctx context.Context, caller *entity.User, id int64) (*entity.Post, error) {
	p, err := s.Posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, apperror.Internal("Failed to load blog post", err)
	}
	if !service.CanMutate(caller, p.CreatorID) {
		return nil, errNotPostOwner
	}
	return p, nil
}

func (s *BlogService) Create(ctx context.Context, caller *entity.User, in CreatePostInput) (*entity.Post, error) {
	var created *entity.Post
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.Posts.Insert(ctx, &entity.Post{
			Title:       in.Title,
			Content:     in.Content,
			Summary:     in.Summary,
			IsPublished: in.IsPublished,
			CreatorID:   caller.ID,
		})
		if err != nil {
			return apperror.Internal("Failed to create blog post", err)
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().WithFields(logrus.Fields{"post_id": created.ID, "user_id": caller.ID}).Info("blog post created")
	if created.IsPublished {
		s.afterPublish(ctx, caller, created)
	}
	return created, nil
}

// Get returns a post with its creator. Drafts are visible only to their owner;
// viewer may be nil for anonymous requests.
func (s *BlogService) Get(ctx context.Context, viewer *entity.User, id int64) (*PostView, error) {
	p, err := s.Posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, apperror.Internal("Failed to load blog post", err)
	}
	if !p.IsPublished && !service.CanMutate(viewer, p.CreatorID) {
		return nil, errPostNotFound
	}
	creator, err := s.Users.FindByID(ctx, p.CreatorID)
	if err != nil {
		return nil, userLoadError(err)
	}
	return &PostView{Post: p, Creator: creator.Summary()}, nil
}

// List is the public listing: published posts only, newest first.
func (s *BlogService) List(ctx context.Context, pg Pagination) (*PostPage, error) {
	return s.list(ctx, repo.PostFilter{PublishedOnly: true}, pg)
}

// ListMine returns the caller's posts, drafts included.
func (s *BlogService) ListMine(ctx context.Context, caller *entity.User, pg Pagination) (*PostPage, error) {
	return s.list(ctx, repo.PostFilter{CreatorID: caller.ID}, pg)
}

func (s *BlogService) list(ctx context.Context, f repo.PostFilter, pg Pagination) (*PostPage, error) {
	pg, err := pg.normalize()
	if err != nil {
		return nil, err
	}
	f.Offset, f.Limit = pg.Skip, pg.Limit
	posts, total, err := s.Posts.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal("Failed to list blog posts", err)
	}
	return newPage(posts, total, pg), nil
}

// Search finds published posts whose title or content contains q. The search
// index is used when configured; if it fails the database answers instead.
func (s *BlogService) Search(ctx context.Context, q string, pg Pagination) (*PostPage, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query must not be empty")
	}
	pg, err := pg.normalize()
	if err != nil {
		return nil, err
	}
	if s.Index != nil {
		page, err := s.searchIndex(ctx, q, pg)
		if err == nil {
			return page, nil
		}
		s.log().WithError(err).Warn("search index unavailable, falling back to database")
	}
	return s.list(ctx, repo.PostFilter{PublishedOnly: true, Query: q}, pg)
}

func (s *BlogService) searchIndex(ctx context.Context, q string, pg Pagination) (*PostPage, error) {
	ids, total, err := s.Index.Search(ctx, q, pg.Skip, pg.Limit)
	if err != nil {
		return nil, err
	}
	posts := make([]*entity.Post, 0, len(ids))
	var stale []int64
	dropped := 0
	for _, id := range ids {
		p, err := s.Posts.FindByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			stale = append(stale, id)
			dropped++
			continue
		}
		if err != nil {
			return nil, err
		}
		if !p.IsPublished {
			dropped++
			continue
		}
		posts = append(posts, p)
	}
	// hits dropped here are not counted; later pages may still hold some
	total = max(total-dropped, pg.Skip+len(posts))
	for _, id := range stale {
		s.unindex(ctx, id)
	}
	return newPage(posts, total, pg), nil
}

// Update applies a partial update. Only the owner may update.
func (s *BlogService) Update(ctx context.Context, caller *entity.User, id int64, in UpdatePostInput) (*entity.Post, error) {
	var (
		updated   *entity.Post
		published bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.loadOwned(ctx, caller, id)
		if err != nil {
			return err
		}
		if in.IsPublished != nil && !*in.IsPublished && p.IsPublished {
			return errUnpublish
		}
		if in.Title != nil {
			p.Title = *in.Title
		}
		if in.Content != nil {
			p.Content = *in.Content
		}
		if in.Summary != nil {
			p.Summary = in.Summary
		}
		if in.IsPublished != nil && *in.IsPublished && !p.IsPublished {
			p.IsPublished = true
			published = true
		}
		updated, err = s.Posts.Update(ctx, p)
		if err != nil {
			return postWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	switch {
	case published:
		s.afterPublish(ctx, caller, updated)
	case updated.IsPublished:
		s.reindex(ctx, updated)
	}
	return updated, nil
}

// Delete removes a post. Only the owner may delete.
func (s *BlogService) Delete(ctx context.Context, caller *entity.User, id int64) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.loadOwned(ctx, caller, id); err != nil {
			return err
		}
		ok, err := s.Posts.Delete(ctx, id)
		if err != nil {
			return apperror.Internal("Failed to delete blog post", err)
		}
		if !ok {
			return errPostNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log().WithFields(logrus.Fields{"post_id": id, "user_id": caller.ID}).Info("blog post deleted")
	if s.Index != nil {
		s.unindex(ctx, id)
	}
	return nil
}

// Publish moves a draft to published. Publishing a published post is a no-op success.
func (s *BlogService) Publish(ctx context.Context, caller *entity.User, id int64) (*entity.Post, error) {
	var (
		post    *entity.Post
		changed bool
	)
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.loadOwned(ctx, caller, id)
		if err != nil {
			return err
		}
		if p.IsPublished {
			post = p
			return nil
		}
		p.IsPublished = true
		post, err = s.Posts.Update(ctx, p)
		if err != nil {
			return postWriteError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterPublish(ctx, caller, post)
	}
	return post, nil
}

// UploadCover stores a cover image for a post the caller owns and records its URL.
func (s *BlogService) UploadCover(ctx context.Context, caller *entity.User, id int64, contentType string, r io.Reader) (*entity.Post, error) {
	ext, ok := coverContentTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, errBadCoverImage
	}
	if s.Covers == nil {
		return nil, errNoCoverStore
	}
	if _, err := s.loadOwned(ctx, caller, id); err != nil {
		return nil, err
	}
	objectPath := filepath.ToSlash(filepath.Join("covers", strconv.FormatInt(id, 10), uuid.NewString()+ext))
	url, err := s.Covers.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, apperror.Internal("Failed to upload cover", err)
	}

	var updated *entity.Post
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.loadOwned(ctx, caller, id)
		if err != nil {
			return err
		}
		p.CoverURL = url
		updated, err = s.Posts.Update(ctx, p)
		if err != nil {
			return postWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated.IsPublished {
		s.reindex(ctx, updated)
	}
	return updated, nil
}

func postWriteError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errPostNotFound
	}
	return apperror.Internal("Failed to save blog post", err)
}

// afterPublish runs the post-commit side effects of a draft becoming public.
func (s *BlogService) afterPublish(ctx context.Context, owner *entity.User, p *entity.Post) {
	postsPublished.Add(1)
	s.log().WithFields(logrus.Fields{"post_id": p.ID, "user_id": owner.ID}).Info("blog post published")
	s.reindex(ctx, p)
	s.Notifier.PostPublished(ctx, owner, p)
}

func (s *BlogService) unindex(ctx context.Context, id int64) {
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Index.Remove(c, id); err != nil {
		s.log().WithError(err).WithField("post_id", id).Warn("search index remove failed")
	}
}

func (s *BlogService) reindex(ctx context.Context, p *entity.Post) {
	if s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Index.Index(c, p); err != nil {
		s.log().WithError(err).WithField("post_id", p.ID).Warn("search index update failed")
	}
}
