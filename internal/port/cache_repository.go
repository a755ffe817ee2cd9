package port

import (
	"context"
	"time"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type IdempotencyStore interface {
	// SetIdempotency claims key for ttl, returns false if already claimed
	SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ReleaseIdempotency drops a claim so a retried delivery can be processed
	ReleaseIdempotency(ctx context.Context, key string) error
}

type OAuthStateStore interface {
	SaveState(ctx context.Context, state string, ttl time.Duration) error

	// ConsumeState atomically deletes the state, returns false if it was unknown or expired
	ConsumeState(ctx context.Context, state string) (bool, error)
}

type TagCache interface {
	// GetTags returns nil, nil on a cache miss
	GetTags(ctx context.Context) ([]string, error)
	SetTags(ctx context.Context, tags []string, ttl time.Duration) error
	InvalidateTags(ctx context.Context) error
}

type SessionStore interface {
	// GetSession returns domain.ErrSessionNotFound for unknown or expired sessions
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
