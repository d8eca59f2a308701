package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/model"
)

func TestEventRepo_DuplicateKeyIsAlreadyRecorded(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)
	rec := model.EventRecord{ID: "e1", Type: model.EventCancelled, ReservationID: "res-1", IdempotencyKey: "res-1:cancelled", OccurredAt: stamp}

	mock.ExpectExec(`INSERT INTO reservation_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO reservation_events`).
		WillReturnError(duplicateEntry())

	require.NoError(t, repo.Record(context.Background(), rec))
	assert.ErrorIs(t, repo.Record(context.Background(), rec), ErrAlreadyRecorded)
	require.NoError(t, mock.ExpectationsWereMet())
}
