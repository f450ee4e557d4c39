package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const SessionTokenPrefix = "simkas:session:token"

// SessionRepository keeps the single live access token per user.
type SessionRepository struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{Client: client, TTL: ttl}
}

func sessionKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", SessionTokenPrefix, userID)
}

func (r *SessionRepository) Save(ctx context.Context, userID uint64, token string) error {
	if err := r.Client.Set(ctx, sessionKey(userID), token, r.TTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID uint64) (string, error) {
	token, err := r.Client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return token, nil
}

// Extend slides the session TTL after a successful request.
func (r *SessionRepository) Extend(ctx context.Context, userID uint64) error {
	return r.Client.Expire(ctx, sessionKey(userID), r.TTL).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, userID uint64) error {
	return r.Client.Del(ctx, sessionKey(userID)).Err()
}
