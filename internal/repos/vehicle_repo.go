package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"partpal/internal/domain"
)

type VehicleRepo struct{ db *sqlx.DB }

func NewVehicleRepo(db *sqlx.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// List returns vehicles, optionally only one seller's.
func (r *VehicleRepo) List(ctx context.Context, sellerID string) ([]domain.Vehicle, error) {
	out := []domain.Vehicle{}
	q := `SELECT id, seller_id, make, model, year, vin, created_at, updated_at FROM vehicles`
	args := []any{}
	if sellerID != "" {
		q += ` WHERE seller_id = ?`
		args = append(args, sellerID)
	}
	q += ` ORDER BY make, model, year`
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

// Get returns the vehicle or sql.ErrNoRows.
func (r *VehicleRepo) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.GetContext(ctx, &v, `
		SELECT id, seller_id, make, model, year, vin, created_at, updated_at
		FROM vehicles WHERE id = ?
	`, id)
	return v, err
}
