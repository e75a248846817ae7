package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

func TestDecodeHits(t *testing.T) {
	body := strings.NewReader(`{"hits":{"total":{"value":3},"hits":[{"_id":"12"},{"_id":"x"},{"_id":"5"}]}}`)
	ids, total, err := decodeHits(body, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 5}, ids)
	assert.Equal(t, 3, total)
}

func TestSearchBodyFiltersPublished(t *testing.T) {
	b := searchBody("golang", 20, 10)
	assert.Equal(t, 20, b["from"])
	assert.Equal(t, 10, b["size"])
	filter := b["query"].(map[string]any)["bool"].(map[string]any)["filter"]
	assert.Equal(t, map[string]any{"term": map[string]any{"is_published": true}}, filter)
}

func TestSearchBodyMatchesSubstrings(t *testing.T) {
	b := searchBody(`Go*1?\x`, 0, 10)
	should := b["query"].(map[string]any)["bool"].(map[string]any)["should"].([]any)
	require.Len(t, should, 2)

	title := should[0].(map[string]any)["wildcard"].(map[string]any)["title.substr"].(map[string]any)
	assert.Equal(t, `*Go\*1\?\\x*`, title["value"])
	assert.Equal(t, true, title["case_insensitive"])
	assert.Contains(t, should[1].(map[string]any)["wildcard"], "content.substr")
	assert.Equal(t, 1, b["query"].(map[string]any)["bool"].(map[string]any)["minimum_should_match"])
}

func TestMappingHasSubstringFields(t *testing.T) {
	props := indexMapping["mappings"].(map[string]any)["properties"].(map[string]any)
	for _, f := range []string{"title", "content"} {
		fields := props[f].(map[string]any)["fields"].(map[string]any)
		assert.Equal(t, map[string]any{"type": "wildcard"}, fields["substr"], f)
	}
}

func TestToDocUsesExcerpt(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d := toDoc(&entity.Post{ID: 1, Title: "T", Content: strings.Repeat("x", 160), IsPublished: true, CreatedAt: at, UpdatedAt: at})
	assert.Equal(t, strings.Repeat("x", 150)+"...", d.Excerpt)
	assert.Equal(t, "2025-03-01T00:00:00Z", d.CreatedAt)
}
