package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

const (
	stateKeyPrefix   = "oauth:state:"
	sessionKeyPrefix = "session:"
	tagsKey          = "cache:tags"
	stateMarker      = "issued"
)

// consumeStateScript deletes a state nonce only if it is one we issued, so a
// nonce can be redeemed exactly once even under concurrent callbacks.
var consumeStateScript = redis.NewScript(`
local key = KEYS[1]
local marker = ARGV[1]

local current = redis.call('GET', key)
if not current then
	return 0
end

if current == marker then
	redis.call('DEL', key)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "claim %s", key)
	}
	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, key).Err(), "release %s", key)
}

func (r *RedisAdapter) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	return errors.Wrap(r.client.Set(ctx, stateKeyPrefix+state, stateMarker, ttl).Err(), "save oauth state")
}

func (r *RedisAdapter) ConsumeState(ctx context.Context, state string) (bool, error) {
	result, err := consumeStateScript.Run(ctx, r.client, []string{stateKeyPrefix + state}, stateMarker).Int()
	if err != nil {
		return false, errors.Wrap(err, "consume oauth state")
	}
	return result == 1, nil
}

func (r *RedisAdapter) GetTags(ctx context.Context) ([]string, error) {
	raw, err := r.client.Get(ctx, tagsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cached tags")
	}

	tags := []string{}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, errors.Wrap(err, "decode cached tags")
	}
	return tags, nil
}

func (r *RedisAdapter) SetTags(ctx context.Context, tags []string, ttl time.Duration) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return errors.Wrap(err, "encode tags")
	}
	return errors.Wrap(r.client.Set(ctx, tagsKey, raw, ttl).Err(), "cache tags")
}

func (r *RedisAdapter) InvalidateTags(ctx context.Context) error {
	return errors.Wrap(r.client.Del(ctx, tagsKey).Err(), "invalidate tags")
}

// storedSession is the session document written at login. Role is kept
// untyped so whatever was stored goes through the role guard.
type storedSession struct {
	UserID    string    `json:"userId"`
	Role      any       `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r *RedisAdapter) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session")
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	if !stored.ExpiresAt.IsZero() && time.Now().After(stored.ExpiresAt) {
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Session{
		ID:        sessionID,
		UserID:    stored.UserID,
		Role:      domain.ParseUserRole(stored.Role),
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, sessionID string) error {
	return errors.Wrap(r.client.Del(ctx, sessionKeyPrefix+sessionID).Err(), "delete session")
}
