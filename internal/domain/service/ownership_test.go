package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

func TestCanMutate(t *testing.T) {
	alice := &entity.User{ID: 1}
	bob := &entity.User{ID: 2}
	post := &entity.Post{ID: 10, CreatorID: alice.ID}

	assert.True(t, CanMutate(alice, post.CreatorID))
	assert.False(t, CanMutate(bob, post.CreatorID))
	assert.False(t, CanMutate(nil, post.CreatorID))
}
