package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
)

// RestaurantRepo stores restaurants and their score policy.
type RestaurantRepo struct{ DB *sql.DB }

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{DB: db} }

const restaurantColumns = "id,owner_id,name,timezone,score_enabled,score_threshold,created_at,updated_at"

func scanRestaurant(row scanner) (model.Restaurant, error) {
	var r model.Restaurant
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Timezone,
		&r.Policy.Enabled, &r.Policy.Threshold, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, ErrNotFound
	}
	return r, err
}

func (r *RestaurantRepo) CreateRestaurant(ctx context.Context, rest model.Restaurant) (model.Restaurant, error) {
	if rest.ID == "" {
		rest.ID = uuid.NewString()
	}
	if rest.Timezone == "" {
		rest.Timezone = "UTC"
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurants (id,owner_id,name,timezone,score_enabled,score_threshold) VALUES (?,?,?,?,?,?)",
		rest.ID, rest.OwnerID, rest.Name, rest.Timezone, rest.Policy.Enabled, rest.Policy.Threshold)
	if err != nil {
		return model.Restaurant{}, err
	}
	return r.GetRestaurant(ctx, rest.ID)
}

func (r *RestaurantRepo) GetRestaurant(ctx context.Context, id string) (model.Restaurant, error) {
	return scanRestaurant(r.DB.QueryRowContext(ctx,
		"SELECT "+restaurantColumns+" FROM restaurants WHERE id=? LIMIT 1", id))
}

// SetScorePolicy overwrites the policy and returns the updated row.  The
// row is read back instead of trusting RowsAffected, which MySQL reports
// as zero when the values did not change.
func (r *RestaurantRepo) SetScorePolicy(ctx context.Context, id string, p model.ScorePolicy) (model.Restaurant, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE restaurants SET score_enabled=?, score_threshold=? WHERE id=?",
		p.Enabled, p.Threshold, id); err != nil {
		return model.Restaurant{}, err
	}
	return r.GetRestaurant(ctx, id)
}
