//go:build integration

package event

import (
	"context"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

func TestRedisStreamForwarder(t *testing.T) {
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
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	defer client.Close()

	serializer := NewEventSerializer()
	RegisterSettlementEvents(serializer)
	fwd := NewRedisStreamForwarder(client, "settlement:events", 1000, serializer, zaptest.NewLogger(t), SettlementEventTypes()...)

	bus := NewInMemoryEventBus(zaptest.NewLogger(t))
	bus.Subscribe(fwd)

	n := settlement.Notification{
		Kind:       settlement.NotificationEmptyResult,
		SessionID:  uuid.New(),
		TenantID:   uuid.New(),
		CustomerID: 42,
		Message:    "No outstanding documents",
	}
	require.NoError(t, bus.Publish(ctx, settlement.NewNotificationEvent(n)))

	msgs, err := client.XRange(ctx, "settlement:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	decoded, err := DecodeStreamMessage(serializer, msgs[0])
	require.NoError(t, err)
	ne, ok := decoded.(*settlement.NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, n, ne.Notification)
	assert.Equal(t, n.SessionID.String(), msgs[0].Values[StreamFieldSessionID])
}
