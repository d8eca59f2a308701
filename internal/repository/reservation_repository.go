package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations.  All timestamp
// columns hold UTC.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id,restaurant_id,customer_id,res_date,res_time,party_size,status,table_id,
	starts_at,ends_at,cancellation_time,late_cancellation,cancelled_by,rejected,created_at,updated_at`

func scanReservation(row scanner) (model.Reservation, error) {
	var (
		r         model.Reservation
		tableID   sql.NullString
		cancelled sql.NullTime
	)
	err := row.Scan(&r.ID, &r.RestaurantID, &r.CustomerID, &r.Date, &r.Time, &r.PartySize, &r.Status,
		&tableID, &r.StartsAt, &r.EndsAt, &cancelled, &r.LateCancellation, &r.CancelledBy,
		&r.Rejected, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if tableID.Valid {
		id := tableID.String
		r.TableID = &id
	}
	if cancelled.Valid {
		t := cancelled.Time
		r.CancellationTime = &t
	}
	return r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateReservation inserts r with the caller supplied id and timestamps.
func (repo *ReservationRepo) CreateReservation(ctx context.Context, r model.Reservation) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO reservations (id,restaurant_id,customer_id,res_date,res_time,party_size,status,table_id,
		                           starts_at,ends_at,late_cancellation,cancelled_by,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.RestaurantID, r.CustomerID, r.Date, r.Time, r.PartySize, r.Status, nullString(r.TableID),
		r.StartsAt.UTC(), r.EndsAt.UTC(), r.LateCancellation, r.CancelledBy, r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

func (repo *ReservationRepo) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	return scanReservation(repo.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=? LIMIT 1", id))
}

// UpdateReservation writes the mutable fields of r provided the stored
// status still equals from.  A moved status yields ErrConflict.
func (repo *ReservationRepo) UpdateReservation(ctx context.Context, r model.Reservation, from model.Status) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE reservations
		    SET status=?, table_id=?, cancellation_time=?, late_cancellation=?, cancelled_by=?, rejected=?,
		        updated_at=?
		  WHERE id=? AND status=?`,
		r.Status, nullString(r.TableID), nullTime(r.CancellationTime), r.LateCancellation, r.CancelledBy,
		r.Rejected, r.UpdatedAt.UTC(), r.ID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows: either the id is unknown, the status moved, or nothing
	// changed at all.
	cur, err := repo.GetReservation(ctx, r.ID)
	if err != nil {
		return err
	}
	if cur.Status != from {
		return ErrConflict
	}
	return nil
}

// ListByCustomer returns the customer's reservations, latest slot first.
func (repo *ReservationRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Reservation, error) {
	return repo.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE customer_id=? ORDER BY starts_at DESC",
		customerID)
}

// ListByRestaurant returns a restaurant's reservations in slot order.  A
// non-empty date restricts the result to that local day.
func (repo *ReservationRepo) ListByRestaurant(ctx context.Context, restaurantID, date string) ([]model.Reservation, error) {
	if date == "" {
		return repo.list(ctx,
			"SELECT "+reservationColumns+" FROM reservations WHERE restaurant_id=? ORDER BY starts_at",
			restaurantID)
	}
	return repo.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE restaurant_id=? AND res_date=? ORDER BY starts_at",
		restaurantID, date)
}

// ListElapsed returns up to limit reservations in status whose slot ended
// at or before the given instant, oldest first.
func (repo *ReservationRepo) ListElapsed(ctx context.Context, status model.Status, before time.Time, limit int) ([]model.Reservation, error) {
	return repo.list(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE status=? AND ends_at<=? ORDER BY ends_at LIMIT ?",
		status, before.UTC(), limit)
}

func (repo *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
