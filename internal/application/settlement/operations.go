package settlement

import (
	"context"
	"fmt"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BeginEdit enters edit mode for the item at index
func (s *Service) BeginEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.BeginEdit(index)
	})
}

// CommitEdit applies raw operator input as the amount to pay of the item
func (s *Service) CommitEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int, raw string) (settlement.SessionView, error) {
	view, err := s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.CommitEdit(index, raw)
	})
	if reason, ok := settlement.ReasonOf(err); ok {
		s.metrics.RecordRejection(ctx, op.TenantID, reason.String())
		s.log(ctx).Debug("Amount to pay rejected",
			zap.String("session_id", sessionID.String()),
			zap.Int("item_index", index),
			zap.String("reason", reason.String()),
		)
	}
	return view, err
}

// CancelEdit restores the amount the item had when editing began
func (s *Service) CancelEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.CancelEdit(index)
	})
}

// EndEdit leaves edit mode keeping the committed amount
func (s *Service) EndEdit(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, index int) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.EndEdit(index)
	})
}

// ToggleItem flips the selection of one item
func (s *Service) ToggleItem(ctx context.Context, op settlement.Operator, sessionID, itemID uuid.UUID) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.Toggle(itemID)
	})
}

// SelectAll selects every item of the ledger
func (s *Service) SelectAll(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.SelectAll()
	})
}

// ClearSelection deselects every item
func (s *Service) ClearSelection(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, func(session *settlement.Session) error {
		return session.ClearSelection()
	})
}

// Proceed freezes the selection and opens payment capture for the snapshot.
// If capture cannot be opened the session returns to browsing.
func (s *Service) Proceed(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SettlementSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "proceed", telemetry.SpanAttrSessionID, sessionID)
	defer span.End()

	var snapshot settlement.SettlementSnapshot
	err := s.withSession(ctx, op, sessionID, func(session *settlement.Session) error {
		var err error
		snapshot, err = session.Proceed()
		return err
	})
	if err != nil {
		return settlement.SettlementSnapshot{}, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSnapshotID, snapshot.ID,
		telemetry.SpanAttrItemCount, len(snapshot.Items),
		telemetry.SpanAttrTotalToPay, snapshot.TotalToPay,
	)

	if err := s.capturer.OpenCapture(ctx, snapshot); err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Error("Failed to open payment capture",
			zap.String("session_id", sessionID.String()),
			zap.String("snapshot_id", snapshot.ID.String()),
			zap.Error(err),
		)
		if rerr := s.withSession(ctx, op, sessionID, (*settlement.Session).ReturnToBrowsing); rerr != nil {
			s.log(ctx).Warn("Failed to unlock session after capture error", zap.Error(rerr))
		}
		return settlement.SettlementSnapshot{}, fmt.Errorf("failed to open payment capture: %w", err)
	}

	s.metrics.RecordProceed(ctx, op.TenantID)
	s.log(ctx).Info("Settlement handed to payment capture",
		zap.String("session_id", sessionID.String()),
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Int("items", len(snapshot.Items)),
		zap.String("total_to_pay", snapshot.TotalToPay.String()),
	)
	return snapshot, nil
}

// ReturnFromCapture unlocks the session after capture was closed without
// settling
func (s *Service) ReturnFromCapture(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	return s.mutate(ctx, op, sessionID, (*settlement.Session).ReturnToBrowsing)
}

// Acknowledge completes the settlement of snapshotID. Each snapshot can be
// acknowledged once; a repeat returns ErrAlreadyAcknowledged.
func (s *Service) Acknowledge(ctx context.Context, op settlement.Operator, sessionID, snapshotID uuid.UUID) (settlement.SettlementSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "acknowledge",
		telemetry.SpanAttrSessionID, sessionID,
		telemetry.SpanAttrSnapshotID, snapshotID,
	)
	defer span.End()

	if _, err := s.lookup(op, sessionID); err != nil {
		return settlement.SettlementSnapshot{}, err
	}

	key := ackKeyPrefix + snapshotID.String()
	if s.acks != nil {
		fresh, err := s.acks.MarkProcessed(ctx, key, s.ackTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return settlement.SettlementSnapshot{}, fmt.Errorf("failed to record acknowledgement: %w", err)
		}
		if !fresh {
			s.log(ctx).Warn("Duplicate settlement acknowledgement", zap.String("snapshot_id", snapshotID.String()))
			return settlement.SettlementSnapshot{}, settlement.ErrAlreadyAcknowledged
		}
	}

	var snapshot settlement.SettlementSnapshot
	err := s.withSession(ctx, op, sessionID, func(session *settlement.Session) error {
		var err error
		snapshot, err = session.CompleteSettlement(snapshotID)
		return err
	})
	if err != nil {
		if s.acks != nil {
			if rerr := s.acks.Release(ctx, key); rerr != nil {
				s.log(ctx).Warn("Failed to release acknowledgement key", zap.String("key", key), zap.Error(rerr))
			}
		}
		return settlement.SettlementSnapshot{}, err
	}

	s.metrics.RecordSettlement(ctx, op.TenantID, snapshot.TotalToPay)
	s.log(ctx).Info("Settlement acknowledged",
		zap.String("session_id", sessionID.String()),
		zap.String("snapshot_id", snapshotID.String()),
		zap.String("total_to_pay", snapshot.TotalToPay.String()),
	)
	return snapshot, nil
}

// SetAdvanceMode switches advance mode. Any in-flight fetch becomes stale.
func (s *Service) SetAdvanceMode(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, on bool) (settlement.SessionView, error) {
	entry, err := s.lookup(op, sessionID)
	if err != nil {
		return settlement.SessionView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.session.SetAdvanceMode(on); err != nil {
		return settlement.SessionView{}, err
	}
	entry.invalidateFetch()
	entry.lastUsed = s.now()

	s.log(ctx).Info("Advance mode switched",
		zap.String("session_id", sessionID.String()),
		zap.Bool("advance_mode", on),
	)
	return entry.session.View(), nil
}

// RequestAdvance opens the advance collection flow for the selected customer
func (s *Service) RequestAdvance(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, collectPayment bool) (settlement.AdvanceRequest, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "request_advance",
		telemetry.SpanAttrSessionID, sessionID,
		telemetry.SpanAttrAdvanceMode, true,
	)
	defer span.End()

	var req settlement.AdvanceRequest
	err := s.withSession(ctx, op, sessionID, func(session *settlement.Session) error {
		var err error
		req, err = session.RequestAdvance(collectPayment)
		return err
	})
	if err != nil {
		return settlement.AdvanceRequest{}, err
	}

	if err := s.collector.OpenAdvance(ctx, req); err != nil {
		telemetry.RecordError(span, err)
		return settlement.AdvanceRequest{}, fmt.Errorf("failed to open advance collection: %w", err)
	}
	s.metrics.RecordAdvance(ctx, op.TenantID, collectPayment)
	s.log(ctx).Info("Advance collection opened",
		zap.String("session_id", sessionID.String()),
		zap.String("customer_ref", req.CustomerRef),
		zap.Bool("collect_payment", collectPayment),
	)
	return req, nil
}

// mutate runs fn under the session lock and returns the resulting view
func (s *Service) mutate(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, fn func(*settlement.Session) error) (settlement.SessionView, error) {
	var view settlement.SessionView
	err := s.withSession(ctx, op, sessionID, func(session *settlement.Session) error {
		if err := fn(session); err != nil {
			return err
		}
		view = session.View()
		return nil
	})
	return view, err
}
