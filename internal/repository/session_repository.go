package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedTokenPrefix = "exam-service-revoked-token-"
	failedLoginPrefix  = "exam-service-failed-login-"
	lockUserPrefix     = "exam-service-lock-user-"
)

// SessionRepository keeps auth state in Redis.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("error saving revoked token: %w", err)
	}
	return nil
}

func (r *SessionRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("error checking revoked token: %w", err)
	}
	return n > 0, nil
}

// RegisterFailedLogin counts failures inside a sliding window that starts at the first failure.
func (r *SessionRepository) RegisterFailedLogin(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := failedLoginPrefix + email
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("error counting failed login: %w", err)
	}
	return incr.Val(), nil
}

func (r *SessionRepository) ClearFailedLogins(ctx context.Context, email string) error {
	return r.client.Del(ctx, failedLoginPrefix+email, lockUserPrefix+email).Err()
}

func (r *SessionRepository) LockUser(ctx context.Context, email string, d time.Duration) error {
	return r.client.Set(ctx, lockUserPrefix+email, time.Now().Unix(), d).Err()
}

func (r *SessionRepository) IsUserLocked(ctx context.Context, email string) (bool, error) {
	_, err := r.client.Get(ctx, lockUserPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
