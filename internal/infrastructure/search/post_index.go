// Package search keeps published posts in Elasticsearch for full-text search.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// PostIndex implements application.PostIndex. Drafts are never indexed:
// Index on an unpublished post removes it instead.
type PostIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

func NewPostIndex(es *elasticsearch.Client, name string, logger *logrus.Logger) *PostIndex {
	return &PostIndex{ES: es, Name: name, Logger: logger}
}

type postDoc struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Excerpt     string `json:"excerpt"`
	IsPublished bool   `json:"is_published"`
	CreatorID   int64  `json:"creator_id"`
	CoverURL    string `json:"cover_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toDoc(p *entity.Post) postDoc {
	return postDoc{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Excerpt:     p.Excerpt(),
		IsPublished: p.IsPublished,
		CreatorID:   p.CreatorID,
		CoverURL:    p.CoverURL,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func responseError(res *esapi.Response) error {
	return fmt.Errorf("elasticsearch: %s", res.Status())
}

// substrField indexes the raw value for case-insensitive substring queries.
var substrField = map[string]any{"substr": map[string]any{"type": "wildcard"}}

// indexMapping keeps is_published filterable and ids numeric. An index created
// before the substr subfields existed must be recreated.
var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":           map[string]any{"type": "long"},
			"title":        map[string]any{"type": "text", "fields": substrField},
			"content":      map[string]any{"type": "text", "fields": substrField},
			"excerpt":      map[string]any{"type": "text", "index": false},
			"is_published": map[string]any{"type": "boolean"},
			"creator_id":   map[string]any{"type": "long"},
			"cover_url":    map[string]any{"type": "keyword", "index": false},
			"created_at":   map[string]any{"type": "date"},
			"updated_at":   map[string]any{"type": "date"},
		},
	},
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *PostIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{x.Name}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return responseError(res)
	}

	b, err := json.Marshal(indexMapping)
	if err != nil {
		return err
	}
	res, err = esapi.IndicesCreateRequest{Index: x.Name, Body: bytes.NewReader(b)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError(res)
	}
	if x.Logger != nil {
		x.Logger.WithField("index", x.Name).Info("created search index")
	}
	return nil
}

func (x *PostIndex) Index(ctx context.Context, p *entity.Post) error {
	if !p.IsPublished {
		return x.Remove(ctx, p.ID)
	}
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: strconv.FormatInt(p.ID, 10), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

// Remove deletes a post document; a missing document is not an error.
func (x *PostIndex) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(res)
	}
	return nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func containsQuery(field, q string) map[string]any {
	return map[string]any{
		"wildcard": map[string]any{
			field: map[string]any{"value": "*" + wildcardEscaper.Replace(q) + "*", "case_insensitive": true},
		},
	}
}

// searchBody matches q as a case-insensitive substring of title or content,
// ordered like the database listing.
func searchBody(q string, offset, limit int) map[string]any {
	return map[string]any{
		"from": offset,
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					containsQuery("title.substr", q),
					containsQuery("content.substr", q),
				},
				"minimum_should_match": 1,
				"filter": map[string]any{
					"term": map[string]any{"is_published": true},
				},
			},
		},
		"sort": []any{
			map[string]any{"created_at": "desc"},
			map[string]any{"id": "desc"},
		},
		"_source":          false,
		"track_total_hits": true,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (x *PostIndex) Search(ctx context.Context, q string, offset, limit int) ([]int64, int, error) {
	b, err := json.Marshal(searchBody(q, offset, limit))
	if err != nil {
		return nil, 0, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Name), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, responseError(res)
	}
	return decodeHits(res.Body, x.Logger)
}

func decodeHits(body io.Reader, logger *logrus.Logger) ([]int64, int, error) {
	var parsed searchResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			if logger != nil {
				logger.WithField("doc_id", h.ID).Warn("skipping search hit with non-numeric id")
			}
			continue
		}
		ids = append(ids, id)
	}
	return ids, parsed.Hits.Total.Value, nil
}
