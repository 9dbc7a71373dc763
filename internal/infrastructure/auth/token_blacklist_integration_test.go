//go:build integration

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRevocationList(t *testing.T) {
	ctx := context.Background()
	list := NewRedisRevocationList(startRedis(t), "")

	issued := func(at time.Time) *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:       uuid.NewString(),
				IssuedAt: jwt.NewNumericDate(at),
			},
			UserID: uuid.NewString(),
		}
	}

	t.Run("unknown token is not revoked", func(t *testing.T) {
		revoked, err := list.IsRevoked(ctx, issued(time.Now()))
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revoked jti", func(t *testing.T) {
		claims := issued(time.Now())
		require.NoError(t, list.Revoke(ctx, claims.ID, time.Minute))

		revoked, err := list.IsRevoked(ctx, claims)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("user invalidation covers older tokens only", func(t *testing.T) {
		old := issued(time.Now().Add(-time.Hour))
		require.NoError(t, list.RevokeUser(ctx, old.UserID, time.Minute))

		revoked, err := list.IsRevoked(ctx, old)
		require.NoError(t, err)
		assert.True(t, revoked)

		fresh := issued(time.Now().Add(time.Hour))
		fresh.UserID = old.UserID
		revoked, err = list.IsRevoked(ctx, fresh)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
