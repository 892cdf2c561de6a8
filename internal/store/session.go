package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRepository handles persistence for server-side sessions.
// Sessions live in the same database as the application data so logins
// survive process restarts and are shared across instances.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, id string, payload []byte, expiry time.Time) error {
	const query = `
		INSERT INTO sessions (id, payload, expiry)
		VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, id, payload, expiry)
	return err
}

// Get returns the payload for a live session. A missing or expired row
// is reported as ErrNotFound; expiry is enforced in the query so an
// expired session is indistinguishable from an absent one.
func (r *SessionRepository) Get(ctx context.Context, id string) ([]byte, error) {
	const query = `
		SELECT payload
		FROM sessions
		WHERE id = $1 AND expiry > now()`
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

// UpdatePayload replaces the payload of a live session, leaving the
// expiry fixed at its creation-time value.
func (r *SessionRepository) UpdatePayload(ctx context.Context, id string, payload []byte) error {
	const query = `
		UPDATE sessions
		SET payload = $1
		WHERE id = $2 AND expiry > now()`
	result, err := r.db.ExecContext(ctx, query, payload, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteExpired reaps expired rows. Expiry is already enforced on read,
// so this only bounds storage growth.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM sessions WHERE expiry <= now()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
