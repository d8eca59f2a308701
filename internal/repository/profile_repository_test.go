package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/scoring"
)

func profileRows(id string, points, reliability int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "display_name", "phone", "password_hash", "role",
		"points", "reliability_score", "created_at", "updated_at"}).
		AddRow(id, "ana@example.com", "Ana", "", "hash", "customer", points, reliability, stamp, stamp)
}

func TestProfileRepo_ApplyDeltaLocksRecordsThenUpdates(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id=\? FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(profileRows("c1", 100, 50))
	mock.ExpectExec(`INSERT INTO score_events \(idempotency_key, customer_id, points_delta, reliability_delta\)`).
		WithArgs("r1:confirmed", "c1", 50, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE profiles SET points=\?, reliability_score=\? WHERE id=\?`).
		WithArgs(150, 55, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, applied, err := repo.ApplyDelta(context.Background(), "c1", "r1:confirmed", scoring.Delta{Points: 50, Reliability: 5})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 150, p.Points)
	assert.Equal(t, 55, p.ReliabilityScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_ApplyDeltaClampsBeforeWriting(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id=\? FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(profileRows("c1", 30, 10))
	mock.ExpectExec(`INSERT INTO score_events`).
		WithArgs("r1:no_show", "c1", -200, -20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE profiles SET points=\?, reliability_score=\? WHERE id=\?`).
		WithArgs(0, 0, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, applied, err := repo.ApplyDelta(context.Background(), "c1", "r1:no_show", scoring.Delta{Points: -200, Reliability: -20})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, 0, p.ReliabilityScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_ApplyDeltaDuplicateKeyIsNotApplied(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id=\? FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(profileRows("c1", 150, 55))
	mock.ExpectExec(`INSERT INTO score_events`).
		WithArgs("r1:confirmed", "c1", 50, 5).
		WillReturnError(duplicateEntry())
	mock.ExpectRollback()

	p, applied, err := repo.ApplyDelta(context.Background(), "c1", "r1:confirmed", scoring.Delta{Points: 50, Reliability: 5})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 150, p.Points)
	assert.Equal(t, 55, p.ReliabilityScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_ApplyDeltaUnknownCustomer(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProfileRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM profiles WHERE id=\? FOR UPDATE`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, applied, err := repo.ApplyDelta(context.Background(), "nobody", "r1:created", scoring.Delta{Points: 100})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
