package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/scoring"
)

// ProfileRepo stores profiles and is the only writer of points and
// reliability scores.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = "id,email,display_name,phone,password_hash,role,points,reliability_score,created_at,updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Phone, &p.PasswordHash, &p.Role,
		&p.Points, &p.ReliabilityScore, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	return p, err
}

// CreateProfile inserts p and returns the stored row.
func (r *ProfileRepo) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = model.RoleCustomer
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (id,email,display_name,phone,password_hash,role,points,reliability_score) VALUES (?,?,?,?,?,?,?,?)",
		p.ID, p.Email, p.DisplayName, p.Phone, p.PasswordHash, p.Role, p.Points, p.ReliabilityScore)
	if err != nil {
		if isDuplicate(err) {
			return model.Profile{}, ErrEmailExists
		}
		return model.Profile{}, err
	}
	return r.GetProfile(ctx, p.ID)
}

// GetProfile fetches a profile by id.
func (r *ProfileRepo) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
}

// GetProfileByEmail fetches a profile by normalized email.
func (r *ProfileRepo) GetProfileByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email=? LIMIT 1", email))
}

// ApplyDelta adds d to the customer's balances in one transaction.  The
// profile row is locked, the idempotency key is recorded in score_events
// and the clamped totals are written back.  A key that already exists
// leaves the profile unchanged and reports applied=false.
func (r *ProfileRepo) ApplyDelta(ctx context.Context, customerID, key string, d scoring.Delta) (model.Profile, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Profile{}, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	p, err := scanProfile(tx.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? FOR UPDATE", customerID))
	if err != nil {
		return model.Profile{}, false, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO score_events (idempotency_key, customer_id, points_delta, reliability_delta) VALUES (?,?,?,?)",
		key, customerID, d.Points, d.Reliability)
	if err != nil {
		if isDuplicate(err) {
			return p, false, nil
		}
		return model.Profile{}, false, err
	}

	p.Points, p.ReliabilityScore = scoring.Apply(p.Points, p.ReliabilityScore, d)
	if _, err := tx.ExecContext(ctx,
		"UPDATE profiles SET points=?, reliability_score=? WHERE id=?",
		p.Points, p.ReliabilityScore, customerID); err != nil {
		return model.Profile{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return model.Profile{}, false, err
	}
	committed = true
	return p, true, nil
}
