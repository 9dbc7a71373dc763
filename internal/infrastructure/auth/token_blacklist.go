package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRevocationPrefix is the key prefix the identity service writes
// revoked tokens under
const DefaultRevocationPrefix = "token:blacklist:"

// RevocationChecker reports whether a validated token was revoked
// before it expired
type RevocationChecker interface {
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

// RedisRevocationList reads token revocations from Redis. A token is
// revoked when its jti is listed or when it was issued before the user's
// last forced logout.
type RedisRevocationList struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRevocationList creates a RedisRevocationList on client
func NewRedisRevocationList(client redis.UniversalClient, prefix string) *RedisRevocationList {
	if prefix == "" {
		prefix = DefaultRevocationPrefix
	}
	return &RedisRevocationList{client: client, prefix: prefix}
}

func (r *RedisRevocationList) jtiKey(jti string) string {
	return r.prefix + "jti:" + jti
}

func (r *RedisRevocationList) userKey(userID string) string {
	return r.prefix + "user:" + userID
}

// IsRevoked checks the jti entry, then the user's invalidation timestamp
func (r *RedisRevocationList) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		n, err := r.client.Exists(ctx, r.jtiKey(claims.ID)).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}

	raw, err := r.client.Get(ctx, r.userKey(claims.UserID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}
	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp %q: %w", raw, err)
	}
	return claims.IssuedAtTime().Unix() <= invalidatedAt, nil
}

// Revoke lists jti as revoked until ttl elapses
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeUser invalidates every token issued to userID up to now
func (r *RedisRevocationList) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

var _ RevocationChecker = (*RedisRevocationList)(nil)
