package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-blog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, password_hash, is_active, is_verified, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActive, &u.IsVerified,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_active, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.Email, u.Name, u.PasswordHash, u.IsActive, u.IsVerified)
	created, err := scanUser(row)
	if err != nil {
		return nil, translate(err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) (*entity.User, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE users
		SET email = $1, name = $2, password_hash = $3, is_active = $4, is_verified = $5, updated_at = now()
		WHERE id = $6
		RETURNING `+userColumns,
		u.Email, u.Name, u.PasswordHash, u.IsActive, u.IsVerified, u.ID)
	updated, err := scanUser(row)
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Delete removes the user; blogs.creator_id cascades.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
