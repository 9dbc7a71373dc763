// Package handoff connects the settlement engine to its collaborators:
// payment capture, advance collection and operator notifications.
package handoff

import (
	"context"
	"fmt"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Gateway hands snapshots and advance requests to their flows by
// publishing hand-off events
type Gateway struct {
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewGateway creates a Gateway publishing on publisher
func NewGateway(publisher shared.EventPublisher, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{publisher: publisher, logger: logger}
}

// OpenCapture publishes a capture request for snapshot
func (g *Gateway) OpenCapture(ctx context.Context, snapshot settlement.SettlementSnapshot) error {
	if err := g.publisher.Publish(ctx, NewCaptureRequestedEvent(snapshot)); err != nil {
		return fmt.Errorf("failed to publish capture request: %w", err)
	}
	logger.WithLogger(ctx, g.logger).Debug("Capture requested",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("total_to_pay", snapshot.TotalToPay.String()),
	)
	return nil
}

// OpenAdvance publishes an advance collection request
func (g *Gateway) OpenAdvance(ctx context.Context, req settlement.AdvanceRequest) error {
	if err := g.publisher.Publish(ctx, NewAdvanceCollectionRequestedEvent(req)); err != nil {
		return fmt.Errorf("failed to publish advance request: %w", err)
	}
	logger.WithLogger(ctx, g.logger).Debug("Advance collection requested",
		zap.String("session_id", req.SessionID.String()),
		zap.Bool("collect_payment", req.CollectPayment),
	)
	return nil
}

var (
	_ settlement.PaymentCapturer  = (*Gateway)(nil)
	_ settlement.AdvanceCollector = (*Gateway)(nil)
)
