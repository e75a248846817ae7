package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
)

const postColumns = `id, title, content, summary, is_published, creator_id, cover_url, created_at, updated_at`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Summary, &p.IsPublished, &p.CreatorID, &p.CoverURL,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Insert(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO blogs (title, content, summary, is_published, creator_id, cover_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+postColumns,
		p.Title, p.Content, p.Summary, p.IsPublished, p.CreatorID, p.CoverURL)
	return scanPost(row)
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*entity.Post, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+postColumns+` FROM blogs WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

// Update writes the mutable columns; creator_id and created_at are never touched.
func (r *PostRepository) Update(ctx context.Context, p *entity.Post) (*entity.Post, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE blogs
		SET title = $1, content = $2, summary = $3, is_published = $4, cover_url = $5, updated_at = now()
		WHERE id = $6
		RETURNING `+postColumns,
		p.Title, p.Content, p.Summary, p.IsPublished, p.CoverURL, p.ID)
	updated, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return updated, err
}

func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// likePattern escapes LIKE metacharacters so q matches literally.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

func buildWhere(f repository.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.PublishedOnly {
		conds = append(conds, "is_published = TRUE")
	}
	if f.CreatorID != 0 {
		args = append(args, f.CreatorID)
		conds = append(conds, "creator_id = $"+strconv.Itoa(len(args)))
	}
	if f.Query != "" {
		args = append(args, likePattern(f.Query))
		n := strconv.Itoa(len(args))
		conds = append(conds, "(title ILIKE $"+n+" OR content ILIKE $"+n+")")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostRepository) List(ctx context.Context, f repository.PostFilter) ([]*entity.Post, int, error) {
	q := conn(ctx, r.pool)
	where, args := buildWhere(f)

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM blogs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + postColumns + ` FROM blogs` + where + ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += " LIMIT $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sql += " OFFSET $" + strconv.Itoa(len(args))
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *PostRepository) ListByCreator(ctx context.Context, creatorID int64) ([]*entity.Post, error) {
	posts, _, err := r.List(ctx, repository.PostFilter{CreatorID: creatorID})
	return posts, err
}

var _ repository.PostRepository = (*PostRepository)(nil)
