// Package session implements the server-side session lifecycle: opaque
// identifiers handed to clients as cookies, JSON payloads persisted in
// Postgres, a fixed expiry set at creation, and the one-shot flash
// queue carried inside the payload.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/REGINA562/new-project/internal/store"
	"github.com/REGINA562/new-project/types"
)

const (
	// DefaultTTL is the fixed session lifetime. It is set once at
	// creation and never renewed per-request.
	DefaultTTL = 30 * 24 * time.Hour

	// CookieName is the name of the opaque session-identifier cookie.
	CookieName = "tutoradmin_session"

	idBytes = 32
)

// ErrNotFound is returned when a session is absent or expired.
var ErrNotFound = errors.New("session not found")

// Repository defines the persistence operations the manager needs.
type Repository interface {
	Create(ctx context.Context, id string, payload []byte, expiry time.Time) error
	Get(ctx context.Context, id string) ([]byte, error)
	UpdatePayload(ctx context.Context, id string, payload []byte) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Manager creates, resolves, and destroys sessions.
type Manager struct {
	repo Repository
	ttl  time.Duration
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo, ttl: DefaultTTL}
}

// TTL returns the fixed session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create persists a new session and returns its fresh identifier and
// expiry. The identifier comes from crypto/rand, so it is unguessable.
func (m *Manager) Create(ctx context.Context, payload types.SessionPayload) (string, time.Time, error) {
	id, err := newID()
	if err != nil {
		return "", time.Time{}, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, err
	}

	expiry := time.Now().Add(m.ttl)
	if err := m.repo.Create(ctx, id, data, expiry); err != nil {
		return "", time.Time{}, err
	}

	return id, expiry, nil
}

// Get resolves a session identifier to its payload. Absent and expired
// sessions both return ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (types.SessionPayload, error) {
	data, err := m.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.SessionPayload{}, ErrNotFound
		}
		return types.SessionPayload{}, err
	}

	var payload types.SessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return types.SessionPayload{}, err
	}
	return payload, nil
}

// Destroy deletes a session. Destroying an absent session is a no-op.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.repo.Delete(ctx, id)
}

// AddFlash appends a one-shot notice to the session payload.
func (m *Manager) AddFlash(ctx context.Context, id string, flash types.Flash) error {
	payload, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	payload.Flashes = append(payload.Flashes, flash)
	return m.update(ctx, id, payload)
}

// PopFlashes returns the queued notices and clears them, so each flash
// is rendered exactly once.
func (m *Manager) PopFlashes(ctx context.Context, id string) ([]types.Flash, error) {
	payload, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	flashes := payload.Flashes
	if len(flashes) == 0 {
		return nil, nil
	}
	payload.Flashes = nil
	if err := m.update(ctx, id, payload); err != nil {
		return nil, err
	}
	return flashes, nil
}

// ReapExpired deletes expired rows; reads already treat them as absent.
func (m *Manager) ReapExpired(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx)
}

func (m *Manager) update(ctx context.Context, id string, payload types.SessionPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := m.repo.UpdatePayload(ctx, id, data); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
