package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"partpal/internal/domain"
)

const partColumns = `
    id, seller_id, category_id, vehicle_id, name, description, part_number, price, currency,
    status, condition, is_listed_on_marketplace, COALESCE(images,'') AS images, created_at, updated_at`

type PartRepo struct{ db *sqlx.DB }

func NewPartRepo(db *sqlx.DB) *PartRepo { return &PartRepo{db: db} }

// FindMany loads every part. Filtering and ordering happen in the query engine.
func (r *PartRepo) FindMany(ctx context.Context) ([]domain.Part, error) {
	out := []domain.Part{}
	err := r.db.SelectContext(ctx, &out, `SELECT`+partColumns+` FROM parts`)
	return out, err
}

func (r *PartRepo) Get(ctx context.Context, id string) (domain.Part, error) {
	var p domain.Part
	err := r.db.GetContext(ctx, &p, `SELECT`+partColumns+` FROM parts WHERE id = ?`, id)
	return p, err
}

func (r *PartRepo) Create(ctx context.Context, p domain.Part) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO parts(id, seller_id, category_id, vehicle_id, name, description, part_number, price, currency,
		  status, condition, is_listed_on_marketplace, images, created_at, updated_at)
		VALUES(:id, :seller_id, :category_id, :vehicle_id, :name, :description, :part_number, :price, :currency,
		  :status, :condition, :is_listed_on_marketplace, :images, :created_at, :updated_at)
	`, p)
	return err
}

// Update overwrites every mutable column. Returns an error if no row has p.ID.
func (r *PartRepo) Update(ctx context.Context, p domain.Part) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE parts SET
		  seller_id = :seller_id, category_id = :category_id, vehicle_id = :vehicle_id, name = :name,
		  description = :description, part_number = :part_number, price = :price, currency = :currency,
		  status = :status, condition = :condition, is_listed_on_marketplace = :is_listed_on_marketplace,
		  images = :images, updated_at = :updated_at
		WHERE id = :id
	`, p)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("part %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *PartRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM parts`)
	return n, err
}
