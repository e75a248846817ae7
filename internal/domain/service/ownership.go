// Package service holds stateless domain rules that do not belong to a single entity.
package service

import "github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"

// CanMutate reports whether user may update, delete or publish a resource owned by ownerID.
func CanMutate(user *entity.User, ownerID int64) bool {
	if user == nil {
		return false
	}
	return user.ID == ownerID
}
