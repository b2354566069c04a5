package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "session:revoked:"

// SessionRepository tracks revoked session ids in Redis. Without a client it keeps them in
// process memory, which is enough for a single instance.
type SessionRepository struct {
	client *redis.Client

	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marks the session as ended until ttl elapses.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if r.client != nil {
		if err := r.client.Set(ctx, revokedSessionPrefix+sessionID, 1, ttl).Err(); err != nil {
			return fmt.Errorf("revoke session %s: %w", sessionID, err)
		}
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, id)
		}
	}
	r.revoked[sessionID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether the session was ended early.
func (r *SessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if r.client != nil {
		n, err := r.client.Exists(ctx, revokedSessionPrefix+sessionID).Result()
		if err != nil {
			return false, fmt.Errorf("check session %s: %w", sessionID, err)
		}
		return n > 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[sessionID]
	return ok && r.now().Before(until), nil
}
