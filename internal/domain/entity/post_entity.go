package entity

import (
	"time"
	"unicode/utf8"
)

const excerptLength = 150

// Post is a blog post. CreatorID is set at creation and never changes.
type Post struct {
	ID          int64
	Title       string
	Content     string
	Summary     *string
	IsPublished bool
	CreatorID   int64
	CoverURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Excerpt returns the summary when present, otherwise the first 150 characters of content.
func (p *Post) Excerpt() string {
	if p.Summary != nil && *p.Summary != "" {
		return *p.Summary
	}
	if utf8.RuneCountInString(p.Content) <= excerptLength {
		return p.Content
	}
	r := []rune(p.Content)
	return string(r[:excerptLength]) + "..."
}
