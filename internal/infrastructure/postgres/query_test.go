package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
)

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%go%`, likePattern("go"))
	assert.Equal(t, `%100\%\_off\\%`, likePattern(`100%_off\`))
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(repository.PostFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildWhere(repository.PostFilter{PublishedOnly: true, CreatorID: 7, Query: "go"})
	assert.Equal(t, " WHERE is_published = TRUE AND creator_id = $1 AND (title ILIKE $2 OR content ILIKE $2)", where)
	assert.Equal(t, []any{int64(7), "%go%"}, args)
}
