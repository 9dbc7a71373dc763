package event

import (
	"context"
	"fmt"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stream entry field names
const (
	StreamFieldType      = "type"
	StreamFieldEventID   = "event_id"
	StreamFieldSessionID = "session_id"
	StreamFieldTenantID  = "tenant_id"
	StreamFieldPayload   = "payload"
)

// RedisStreamForwarder appends settlement events to a Redis stream so an
// external payment-capture client can follow them
type RedisStreamForwarder struct {
	client     redis.UniversalClient
	stream     string
	maxLen     int64
	serializer *EventSerializer
	types      []string
	logger     *zap.Logger
}

// NewRedisStreamForwarder creates a forwarder for eventTypes. maxLen caps the
// stream approximately; zero leaves it unbounded.
func NewRedisStreamForwarder(client redis.UniversalClient, stream string, maxLen int64, serializer *EventSerializer, logger *zap.Logger, eventTypes ...string) *RedisStreamForwarder {
	return &RedisStreamForwarder{
		client:     client,
		stream:     stream,
		maxLen:     maxLen,
		serializer: serializer,
		types:      eventTypes,
		logger:     logger,
	}
}

// EventTypes implements shared.EventHandler
func (f *RedisStreamForwarder) EventTypes() []string {
	return f.types
}

// Handle appends evt to the stream
func (f *RedisStreamForwarder) Handle(ctx context.Context, evt shared.DomainEvent) error {
	payload, err := f.serializer.Serialize(evt)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: f.stream,
		Values: map[string]interface{}{
			StreamFieldType:      evt.EventType(),
			StreamFieldEventID:   evt.EventID().String(),
			StreamFieldSessionID: evt.AggregateID().String(),
			StreamFieldTenantID:  evt.TenantID().String(),
			StreamFieldPayload:   string(payload),
		},
	}
	if f.maxLen > 0 {
		args.MaxLen = f.maxLen
		args.Approx = true
	}
	id, err := f.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to append %s to stream %s: %w", evt.EventType(), f.stream, err)
	}
	f.logger.Debug("Event forwarded",
		zap.String("stream", f.stream),
		zap.String("entry_id", id),
		zap.String("event_type", evt.EventType()),
	)
	return nil
}

// DecodeStreamMessage turns a stream entry back into a domain event
func DecodeStreamMessage(serializer *EventSerializer, msg redis.XMessage) (shared.DomainEvent, error) {
	eventType, _ := msg.Values[StreamFieldType].(string)
	payload, _ := msg.Values[StreamFieldPayload].(string)
	if eventType == "" || payload == "" {
		return nil, fmt.Errorf("stream entry %s is missing type or payload", msg.ID)
	}
	return serializer.Deserialize(eventType, []byte(payload))
}

var _ shared.EventHandler = (*RedisStreamForwarder)(nil)
