package handoff

import (
	"context"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs n. Failed fetches are logged as warnings.
func (n *LogNotifier) Notify(ctx context.Context, note settlement.Notification) {
	fields := []zap.Field{
		zap.String("kind", string(note.Kind)),
		zap.String("session_id", note.SessionID.String()),
		zap.Int64("customer_id", note.CustomerID),
		zap.Int("item_count", note.ItemCount),
	}
	l := logger.WithLogger(ctx, n.logger)
	if note.Kind == settlement.NotificationFetchFailed {
		l.Warn(note.Message, fields...)
		return
	}
	l.Info(note.Message, fields...)
}

// EventNotifier publishes notifications as settlement.notification events
type EventNotifier struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewEventNotifier creates an EventNotifier
func NewEventNotifier(publisher shared.EventPublisher, logger *zap.Logger) *EventNotifier {
	return &EventNotifier{publisher: publisher, logger: logger}
}

// Notify publishes note. A publish failure is logged and dropped.
func (n *EventNotifier) Notify(ctx context.Context, note settlement.Notification) {
	if err := n.publisher.Publish(ctx, settlement.NewNotificationEvent(note)); err != nil {
		logger.WithLogger(ctx, n.logger).Warn("Failed to publish notification",
			zap.String("kind", string(note.Kind)),
			zap.Error(err),
		)
	}
}

// MultiNotifier fans a notification out to several notifiers
type MultiNotifier []settlement.Notifier

// Notify delivers note to every notifier in order
func (m MultiNotifier) Notify(ctx context.Context, note settlement.Notification) {
	for _, n := range m {
		n.Notify(ctx, note)
	}
}

var (
	_ settlement.Notifier = (*LogNotifier)(nil)
	_ settlement.Notifier = (*EventNotifier)(nil)
	_ settlement.Notifier = MultiNotifier(nil)
)
