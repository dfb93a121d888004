package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore invalidates session tokens, backed by Redis.
// Key formats:
//
//	session:revoked:<jti>     one token revoked by sign-out
//	session:cutoff:<user_id>  tokens issued before this instant are dead
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore creates a RevocationStore wrapping the given Redis client.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// RevokeToken marks a single token's jti as revoked until the token would
// have expired anyway.
func (s *RevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether the jti has been revoked.
func (s *RevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// SetUserCutoff invalidates every token the user holds that was issued
// before at. The entry only needs to outlive the longest-lived token.
func (s *RevocationStore) SetUserCutoff(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, cutoffKey(userID), at.UTC().Format(time.RFC3339Nano), ttl).Err()
}

// UserCutoff returns the user's cutoff instant, or the zero time when none
// is set.
func (s *RevocationStore) UserCutoff(ctx context.Context, userID int64) (time.Time, error) {
	val, err := s.client.Get(ctx, cutoffKey(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cutoff lookup: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("cutoff parse: %w", err)
	}
	return at, nil
}

func tokenKey(jti string) string {
	return "session:revoked:" + jti
}

func cutoffKey(userID int64) string {
	return fmt.Sprintf("session:cutoff:%d", userID)
}
