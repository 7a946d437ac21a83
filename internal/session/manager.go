// Package session stores frame session records with a TTL. Records live in
// Redis in production and in memory for development.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unfollowframe/internal/frame"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

const keyPrefix = "frame:session:"

// Manager defines the interface for session management operations
type Manager interface {
	Create(ctx context.Context, hc *frame.Context, maxAge time.Duration) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
	Validate(ctx context.Context, sessionID string) (bool, error)
}

type manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) Manager {
	return &manager{store: store, now: time.Now}
}

func buildKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (m *manager) Create(ctx context.Context, hc *frame.Context, maxAge time.Duration) (*Session, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("%w: non-positive max age", ErrInvalidSession)
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		Context:   hc,
		CreatedAt: now,
		ExpiresAt: now.Add(maxAge),
	}
	if hc != nil {
		s.FID = hc.User.FID
	}

	if err := m.save(ctx, s, maxAge); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.store.Get(ctx, buildKey(sessionID))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, ErrInvalidSession
	}

	if s.Expired(m.now()) {
		m.store.Delete(ctx, buildKey(sessionID))
		return nil, ErrSessionExpired
	}

	return &s, nil
}

// Update rewrites the record, keeping its original expiry.
func (m *manager) Update(ctx context.Context, s *Session) error {
	remaining := s.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return ErrSessionExpired
	}
	return m.save(ctx, s, remaining)
}

func (m *manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, buildKey(sessionID))
}

// Validate reports whether the record is still stored. Records are written
// with a TTL ending at ExpiresAt, so presence implies not expired.
func (m *manager) Validate(ctx context.Context, sessionID string) (bool, error) {
	ok, err := m.store.Exists(ctx, buildKey(sessionID))
	if err != nil {
		return false, fmt.Errorf("validate session: %w", err)
	}
	return ok, nil
}

func (m *manager) save(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.store.Set(ctx, buildKey(s.ID), string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
