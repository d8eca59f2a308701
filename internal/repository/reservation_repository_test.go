package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

const updateReservationSQL = `UPDATE reservations SET status=\?, table_id=\?, cancellation_time=\?, late_cancellation=\?, cancelled_by=\?, rejected=\?, updated_at=\? WHERE id=\? AND status=\?`

func reservationRows(id string, status model.Status) *sqlmock.Rows {
	start := time.Date(2026, 5, 2, 19, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{"id", "restaurant_id", "customer_id", "res_date", "res_time", "party_size",
		"status", "table_id", "starts_at", "ends_at", "cancellation_time", "late_cancellation", "cancelled_by",
		"rejected", "created_at", "updated_at"}).
		AddRow(id, "rest-1", "c1", "2026-05-02", "19:00", 2, string(status), "t2", start, start.Add(90*time.Minute),
			nil, false, "", false, stamp, stamp)
}

func cancelled(id string) model.Reservation {
	now := stamp
	return model.Reservation{
		ID:               id,
		Status:           model.StatusCancelled,
		CancellationTime: &now,
		CancelledBy:      model.ActorCustomer,
		UpdatedAt:        now,
	}
}

func TestReservationRepo_UpdateMatchesOnPriorStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(updateReservationSQL).
		WithArgs(model.StatusCancelled, nil, stamp, false, model.ActorCustomer, false, stamp, "res-1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateReservation(context.Background(), cancelled("res-1"), model.StatusPending))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_UpdateMovedStatusIsConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(updateReservationSQL).
		WithArgs(model.StatusCancelled, nil, stamp, false, model.ActorCustomer, false, stamp, "res-1", model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM reservations WHERE id=\? LIMIT 1`).
		WithArgs("res-1").
		WillReturnRows(reservationRows("res-1", model.StatusConfirmed))

	err := repo.UpdateReservation(context.Background(), cancelled("res-1"), model.StatusPending)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_UpdateUnchangedRowIsNotConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(updateReservationSQL).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM reservations WHERE id=\? LIMIT 1`).
		WithArgs("res-1").
		WillReturnRows(reservationRows("res-1", model.StatusPending))

	require.NoError(t, repo.UpdateReservation(context.Background(), cancelled("res-1"), model.StatusPending))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_UpdateUnknownIDIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(updateReservationSQL).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM reservations WHERE id=\? LIMIT 1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.UpdateReservation(context.Background(), cancelled("nope"), model.StatusPending)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepo_GetScansNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM reservations WHERE id=\? LIMIT 1`).
		WithArgs("res-1").
		WillReturnRows(reservationRows("res-1", model.StatusConfirmed))

	r, err := repo.GetReservation(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, r.Status)
	require.NotNil(t, r.TableID)
	assert.Equal(t, "t2", *r.TableID)
	assert.Nil(t, r.CancellationTime)
	assert.False(t, r.Rejected)
	require.NoError(t, mock.ExpectationsWereMet())
}
