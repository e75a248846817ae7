package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as one-way hashes in PasswordHash; the plaintext is never kept.
// A user owns zero or more posts; posts refer back by CreatorID only.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the non-sensitive projection returned to clients.
type UserSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, IsActive: u.IsActive}
}
