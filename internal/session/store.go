// Package session maps opaque session ids to user ids so issued tokens can
// be revoked before they expire.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finanzas-be/internal/cache"
)

// ErrNotFound means the session never existed, expired or was revoked.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Session is one authenticated login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store creates, resolves and revokes sessions. Implementations must be
// safe for concurrent use.
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error)
	Lookup(ctx context.Context, id string) (*Session, error)
	Revoke(ctx context.Context, id string) error
}

type cacheStore struct {
	cache cache.Cache
	now   func() time.Time
}

// NewStore keeps sessions in c, which may be Redis-backed or in-memory.
func NewStore(c cache.Cache) Store {
	return &cacheStore{cache: c, now: time.Now}
}

func (s *cacheStore) Create(ctx context.Context, userID string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.cache.SetJSON(ctx, keyPrefix+sess.ID, sess, ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

func (s *cacheStore) Lookup(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var sess Session
	err := s.cache.GetJSON(ctx, keyPrefix+id, &sess)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &sess, nil
}

func (s *cacheStore) Revoke(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
