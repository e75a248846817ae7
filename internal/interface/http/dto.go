package handlers

import (
	"time"

	"github.com/oksasatya/go-ddd-blog-api/internal/application"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

type userResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

type postResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     *string   `json:"summary"`
	Excerpt     string    `json:"excerpt"`
	IsPublished bool      `json:"is_published"`
	CreatorID   int64     `json:"creator_id"`
	CoverURL    string    `json:"cover_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toPostResponse(p *entity.Post) postResponse {
	return postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Summary:     p.Summary,
		Excerpt:     p.Excerpt(),
		IsPublished: p.IsPublished,
		CreatorID:   p.CreatorID,
		CoverURL:    p.CoverURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPostResponses(posts []*entity.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

type postDetailResponse struct {
	postResponse
	Creator entity.UserSummary `json:"creator"`
}

type postPageResponse struct {
	Blogs   []postResponse `json:"blogs"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Size    int            `json:"size"`
	HasNext bool           `json:"has_next"`
	HasPrev bool           `json:"has_prev"`
}

func toPageResponse(p *application.PostPage) postPageResponse {
	return postPageResponse{
		Blogs:   toPostResponses(p.Posts),
		Total:   p.Total,
		Page:    p.Page,
		Size:    p.Size,
		HasNext: p.HasNext,
		HasPrev: p.HasPrev,
	}
}

type userWithPostsResponse struct {
	userResponse
	Blogs []postResponse `json:"blogs"`
}
