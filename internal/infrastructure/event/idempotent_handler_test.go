package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryStore struct {
	keys map[string]bool
}

func newMemoryStore() *memoryStore { return &memoryStore{keys: map[string]bool{}} }

func (s *memoryStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys[key], nil
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) Close() error { return nil }

type mockStore struct {
	mock.Mock
}

func (m *mockStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Close() error { return nil }

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate delivery is skipped", func(t *testing.T) {
		inner := newRecordingHandler("x")
		h := NewIdempotentHandler(inner, newMemoryStore(), zaptest.NewLogger(t))

		evt := newTestEvent("x")
		require.NoError(t, h.Handle(ctx, evt))
		require.NoError(t, h.Handle(ctx, evt))

		assert.Equal(t, 1, inner.count())
		assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
		assert.Equal(t, []string{"x"}, h.EventTypes())
	})

	t.Run("custom key collapses distinct events", func(t *testing.T) {
		inner := newRecordingHandler()
		h := NewIdempotentHandler(inner, newMemoryStore(), zaptest.NewLogger(t),
			WithKeyFunc(func(evt shared.DomainEvent) string { return evt.AggregateID().String() }),
			WithKeyPrefix("archive:"),
		)

		first := newTestEvent("x")
		second := newTestEvent("x")
		second.AggID = first.AggID

		require.NoError(t, h.Handle(ctx, first))
		require.NoError(t, h.Handle(ctx, second))
		assert.Equal(t, 1, inner.count())
	})

	t.Run("failure releases the key", func(t *testing.T) {
		inner := newRecordingHandler()
		inner.err = errors.New("archive down")
		store := newMemoryStore()
		h := NewIdempotentHandler(inner, store, zaptest.NewLogger(t))

		evt := newTestEvent("x")
		assert.Error(t, h.Handle(ctx, evt))
		assert.False(t, store.keys[evt.EventID().String()])

		inner.err = nil
		require.NoError(t, h.Handle(ctx, evt))
		assert.Equal(t, 2, inner.count())
		assert.Equal(t, int64(1), h.Stats().Failed)
		assert.Equal(t, int64(1), h.Stats().Processed)
	})

	t.Run("store error still handles", func(t *testing.T) {
		inner := newRecordingHandler()
		store := &mockStore{}
		store.On("MarkProcessed", mock.Anything, mock.Anything, time.Hour).Return(false, errors.New("redis down"))
		h := NewIdempotentHandler(inner, store, zaptest.NewLogger(t), WithTTL(time.Hour))

		require.NoError(t, h.Handle(ctx, newTestEvent("x")))
		assert.Equal(t, 1, inner.count())
		store.AssertExpectations(t)
	})
}
