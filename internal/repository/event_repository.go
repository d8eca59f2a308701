package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/table-reservation/internal/model"
)

// EventRepo is the durable audit log of lifecycle events.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Record inserts rec.  A record whose idempotency key already exists is
// dropped with ErrAlreadyRecorded.
func (r *EventRepo) Record(ctx context.Context, rec model.EventRecord) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservation_events
		   (id,idempotency_key,event_type,reservation_id,customer_id,restaurant_id,actor,tier,
		    points_delta,reliability_delta,occurred_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.IdempotencyKey, rec.Type, rec.ReservationID, rec.CustomerID, rec.RestaurantID,
		rec.Actor, rec.Tier, rec.PointsDelta, rec.ReliabilityDelta, rec.OccurredAt.UTC())
	if isDuplicate(err) {
		return ErrAlreadyRecorded
	}
	return err
}

// ListByReservation returns a reservation's events in occurrence order.
func (r *EventRepo) ListByReservation(ctx context.Context, reservationID string) ([]model.EventRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,idempotency_key,event_type,reservation_id,customer_id,restaurant_id,actor,tier,
		        points_delta,reliability_delta,occurred_at
		   FROM reservation_events WHERE reservation_id=? ORDER BY occurred_at, id`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EventRecord, 0)
	for rows.Next() {
		var e model.EventRecord
		if err := rows.Scan(&e.ID, &e.IdempotencyKey, &e.Type, &e.ReservationID, &e.CustomerID,
			&e.RestaurantID, &e.Actor, &e.Tier, &e.PointsDelta, &e.ReliabilityDelta, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
