package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
)

// TableRepo stores restaurant tables and their slot allocations.  It
// satisfies availability.Store.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

func (r *TableRepo) AddTable(ctx context.Context, t model.Table) (model.Table, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurant_tables (id,restaurant_id,label,capacity,is_active) VALUES (?,?,?,?,?)",
		t.ID, t.RestaurantID, t.Label, t.Capacity, t.IsActive)
	if err != nil {
		if isDuplicate(err) {
			return model.Table{}, ErrConflict
		}
		return model.Table{}, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM restaurant_tables WHERE id=?", t.ID).Scan(&t.CreatedAt)
	return t, err
}

func (r *TableRepo) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,restaurant_id,label,capacity,is_active,created_at
		   FROM restaurant_tables WHERE restaurant_id=? ORDER BY capacity, id`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.Capacity, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BusyTableIDs returns tables with an allocation overlapping the
// half-open window [start, end).
func (r *TableRepo) BusyTableIDs(ctx context.Context, restaurantID string, slot model.Slot) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT table_id FROM table_allocations
		  WHERE restaurant_id=? AND starts_at < ? AND ? < ends_at`,
		restaurantID, slot.End.UTC(), slot.Start.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Claim inserts an allocation after locking the table row, so concurrent
// claims on the same table serialise and the overlap check cannot be
// raced.  An overlapping allocation yields ErrConflict.
func (r *TableRepo) Claim(ctx context.Context, a model.Allocation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM restaurant_tables WHERE id=? FOR UPDATE", a.TableID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var taken bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM table_allocations
		                WHERE table_id=? AND starts_at < ? AND ? < ends_at)`,
		a.TableID, a.Slot.End.UTC(), a.Slot.Start.UTC()).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO table_allocations (table_id,restaurant_id,reservation_id,starts_at,ends_at) VALUES (?,?,?,?,?)",
		a.TableID, a.RestaurantID, a.ReservationID, a.Slot.Start.UTC(), a.Slot.End.UTC()); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *TableRepo) Free(ctx context.Context, tableID, reservationID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM table_allocations WHERE table_id=? AND reservation_id=?", tableID, reservationID)
	return err
}

func (r *TableRepo) FreeReservation(ctx context.Context, reservationID string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM table_allocations WHERE reservation_id=?", reservationID)
	return err
}
