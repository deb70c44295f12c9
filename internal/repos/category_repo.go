package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"partpal/internal/domain"
)

// ErrNotFound aliases sql.ErrNoRows so Get and Update misses look the same to callers.
var ErrNotFound = sql.ErrNoRows

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, created_at, updated_at
  FROM categories
  ORDER BY name
`)
	return out, err
}

func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE id = ?`, id)
	return n > 0, err
}
