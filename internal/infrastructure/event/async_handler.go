package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when an async handler cannot accept more events
	ErrQueueFull = errors.New("async handler queue full")
	// ErrHandlerStopped is returned when an async handler no longer accepts events
	ErrHandlerStopped = errors.New("async handler stopped")
)

const (
	defaultAsyncQueueSize = 256
	defaultAsyncWorkers   = 2
	defaultAsyncTimeout   = 30 * time.Second
)

// AsyncHandlerOption configures an AsyncHandler
type AsyncHandlerOption func(*AsyncHandler)

// WithQueueSize sets how many events may wait for a worker
func WithQueueSize(n int) AsyncHandlerOption {
	return func(h *AsyncHandler) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(n int) AsyncHandlerOption {
	return func(h *AsyncHandler) {
		if n > 0 {
			h.workers = n
		}
	}
}

// WithHandleTimeout bounds each delivery to the wrapped handler
func WithHandleTimeout(d time.Duration) AsyncHandlerOption {
	return func(h *AsyncHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

type asyncJob struct {
	ctx context.Context
	evt shared.DomainEvent
}

// AsyncHandler moves delivery to background workers so the publisher
// returns as soon as the event is queued. The job context keeps the
// publisher's values (trace, logger) but not its cancellation.
type AsyncHandler struct {
	handler   shared.EventHandler
	logger    *zap.Logger
	queueSize int
	workers   int
	timeout   time.Duration

	queue   chan asyncJob
	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewAsyncHandler wraps handler with a bounded queue
func NewAsyncHandler(handler shared.EventHandler, logger *zap.Logger, opts ...AsyncHandlerOption) *AsyncHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &AsyncHandler{
		handler:   handler,
		logger:    logger,
		queueSize: defaultAsyncQueueSize,
		workers:   defaultAsyncWorkers,
		timeout:   defaultAsyncTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.queue = make(chan asyncJob, h.queueSize)
	return h
}

// EventTypes implements shared.EventHandler
func (h *AsyncHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle queues evt and returns without waiting for delivery
func (h *AsyncHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHandlerStopped
	}
	select {
	case h.queue <- asyncJob{ctx: context.WithoutCancel(ctx), evt: evt}:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrQueueFull, evt.EventType())
	}
}

// Start launches the workers
func (h *AsyncHandler) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandlerStopped
	}
	if h.started {
		return nil
	}
	h.started = true
	for i := 0; i < h.workers; i++ {
		h.wg.Add(1)
		go h.work()
	}
	h.logger.Info("Async event handler started",
		zap.Strings("event_types", h.handler.EventTypes()),
		zap.Int("workers", h.workers),
		zap.Int("queue_size", h.queueSize),
	)
	return nil
}

// Stop refuses new events and waits for queued ones to be delivered
func (h *AsyncHandler) Stop(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	started := h.started
	h.mu.Unlock()
	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("Async event handler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *AsyncHandler) work() {
	defer h.wg.Done()
	for job := range h.queue {
		if err := h.deliver(job); err != nil {
			h.logger.Error("Async event handler failed",
				zap.String("event_type", job.evt.EventType()),
				zap.String("event_id", job.evt.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (h *AsyncHandler) deliver(job asyncJob) (err error) {
	ctx, cancel := context.WithTimeout(job.ctx, h.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.handler.Handle(ctx, job.evt)
}

var _ shared.EventHandler = (*AsyncHandler)(nil)
