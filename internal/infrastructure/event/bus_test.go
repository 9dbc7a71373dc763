package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New()),
		Data:            "payload",
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func newRecordingHandler(types ...string) *recordingHandler {
	return &recordingHandler{types: types}
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, evt)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to matching handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		proceeded := newRecordingHandler()
		returned := newRecordingHandler()
		bus.Subscribe(proceeded, "settlement.proceeded")
		bus.Subscribe(returned, "settlement.returned")

		require.NoError(t, bus.Publish(ctx, newTestEvent("settlement.proceeded"), newTestEvent("settlement.proceeded")))

		assert.Equal(t, 2, proceeded.count())
		assert.Equal(t, 0, returned.count())
	})

	t.Run("uses handler event types when none given", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler("settlement.completed")
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("settlement.completed"), newTestEvent("settlement.returned")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler()
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("a"), newTestEvent("b")))
		assert.Equal(t, 2, h.count())
	})

	t.Run("failing and panicking handlers do not stop delivery", func(t *testing.T) {
		core, recorded := observer.New(zapcore.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		failing := newRecordingHandler()
		failing.err = errors.New("handler error")
		panicking := newRecordingHandler()
		panicking.panics = true
		healthy := newRecordingHandler()
		bus.Subscribe(failing, "x")
		bus.Subscribe(panicking, "x")
		bus.Subscribe(healthy, "x")

		require.NoError(t, bus.Publish(ctx, newTestEvent("x")))
		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, 2, recorded.FilterMessage("Event handler failed").Len())
	})

	t.Run("unsubscribed handler is skipped", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newRecordingHandler()
		bus.Subscribe(h, "x")
		bus.Unsubscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("x")))
		assert.Equal(t, 0, h.count())
	})

	t.Run("stopped bus rejects publish", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		require.NoError(t, bus.Start(ctx))
		require.NoError(t, bus.Stop(ctx))
		assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("x")), ErrBusStopped)

		require.NoError(t, bus.Start(ctx))
		assert.NoError(t, bus.Publish(ctx, newTestEvent("x")))
	})
}

func TestHandlerRegistry(t *testing.T) {
	t.Run("keeps registration order", func(t *testing.T) {
		r := NewHandlerRegistry()
		first := newRecordingHandler()
		second := newRecordingHandler()
		r.Register(first, "x")
		r.Register(second)

		handlers := r.HandlersFor("x")
		require.Len(t, handlers, 2)
		assert.Same(t, first, handlers[0])
		assert.Same(t, second, handlers[1])
		assert.Len(t, r.HandlersFor("y"), 1)
	})

	t.Run("re-registering widens the subscription", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()
		r.Register(h, "x")
		r.Register(h, "y")

		assert.Equal(t, 1, r.Count())
		assert.Len(t, r.HandlersFor("x"), 1)
		assert.Len(t, r.HandlersFor("y"), 1)
		assert.Empty(t, r.HandlersFor("z"))

		r.Register(h)
		assert.Len(t, r.HandlersFor("z"), 1)
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewHandlerRegistry()
		a := newRecordingHandler()
		b := newRecordingHandler()
		r.Register(a, "x")
		r.Register(b, "x")
		r.Unregister(a)

		handlers := r.HandlersFor("x")
		require.Len(t, handlers, 1)
		assert.Same(t, b, handlers[0])
	})
}
