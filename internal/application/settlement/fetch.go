package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectCustomer switches the session to another customer and fetches the
// new customer's dues. In advance mode no fetch runs.
func (s *Service) SelectCustomer(ctx context.Context, op settlement.Operator, sessionID uuid.UUID, customerID int64, customerRef string) (settlement.SessionView, error) {
	entry, err := s.lookup(op, sessionID)
	if err != nil {
		return settlement.SessionView{}, err
	}

	entry.mu.Lock()
	if err := entry.session.SelectCustomer(customerID, customerRef); err != nil {
		entry.mu.Unlock()
		return settlement.SessionView{}, err
	}
	entry.invalidateFetch()
	entry.lastUsed = s.now()
	advance := entry.session.AdvanceMode()
	view := entry.session.View()
	entry.mu.Unlock()

	s.log(ctx).Info("Customer selected",
		zap.String("session_id", sessionID.String()),
		zap.Int64("customer_id", customerID),
		zap.Bool("advance_mode", advance),
	)
	if advance {
		return view, nil
	}
	return s.fetch(ctx, entry)
}

// Refresh fetches the dues of the selected customer again
func (s *Service) Refresh(ctx context.Context, op settlement.Operator, sessionID uuid.UUID) (settlement.SessionView, error) {
	entry, err := s.lookup(op, sessionID)
	if err != nil {
		return settlement.SessionView{}, err
	}
	return s.fetch(ctx, entry)
}

// fetch loads the ledger outside the session lock. Only the most recent
// fetch may apply its result; older ones return ErrStaleFetch.
func (s *Service) fetch(ctx context.Context, entry *sessionEntry) (settlement.SessionView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "fetch_dues")
	defer span.End()

	entry.mu.Lock()
	session := entry.session
	if err := session.CanFetch(); err != nil {
		entry.mu.Unlock()
		return settlement.SessionView{}, err
	}
	entry.invalidateFetch()
	seq := entry.fetchSeq
	fetchCtx, cancel := s.fetchContext(ctx)
	entry.cancelFetch = cancel
	query := settlement.LedgerQuery{
		TenantID:   session.TenantID,
		CompanyID:  session.CompanyID,
		CustomerID: session.CustomerID,
	}
	entry.mu.Unlock()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSessionID, session.ID,
		telemetry.SpanAttrCustomerID, query.CustomerID,
		telemetry.SpanAttrFetchSeq, seq,
	)

	started := time.Now()
	rows, fetchErr := s.fetcher.FetchDues(fetchCtx, query)
	elapsed := time.Since(started)
	cancel()

	entry.mu.Lock()
	if entry.fetchSeq != seq {
		entry.mu.Unlock()
		s.metrics.RecordFetch(ctx, query.TenantID, telemetry.FetchOutcomeStale, elapsed)
		telemetry.AddEvent(span, "fetch.stale")
		s.log(ctx).Info("Discarded stale ledger fetch",
			zap.String("session_id", session.ID.String()),
			zap.Uint64("fetch_seq", seq),
		)
		return settlement.SessionView{}, settlement.ErrStaleFetch
	}
	entry.cancelFetch = nil
	entry.lastUsed = s.now()

	note := settlement.Notification{
		SessionID:  session.ID,
		TenantID:   session.TenantID,
		CustomerID: query.CustomerID,
	}
	var (
		outcome string
		result  error
	)
	if fetchErr != nil {
		if err := session.ClearLedger(); err != nil {
			entry.mu.Unlock()
			return settlement.SessionView{}, err
		}
		outcome = telemetry.FetchOutcomeFailed
		note.Kind = settlement.NotificationFetchFailed
		note.Message = fetchFailureMessage(fetchErr)
		result = fmt.Errorf("%w: %v", settlement.ErrFetchFailed, fetchErr)
	} else {
		loaded, err := session.ReplaceLedger(rows)
		if err != nil {
			entry.mu.Unlock()
			return settlement.SessionView{}, err
		}
		note.ItemCount = loaded.ItemCount
		if loaded.Empty {
			outcome = telemetry.FetchOutcomeEmpty
			note.Kind = settlement.NotificationEmptyResult
			note.Message = "No outstanding documents for this customer"
		} else {
			outcome = telemetry.FetchOutcomeLoaded
			note.Kind = settlement.NotificationFetchSucceeded
			note.Message = fmt.Sprintf("%d outstanding documents loaded", loaded.ItemCount)
		}
	}
	view := session.View()
	events := session.PullDomainEvents()
	entry.mu.Unlock()

	s.metrics.RecordFetch(ctx, query.TenantID, outcome, elapsed)
	s.notifier.Notify(ctx, note)
	s.publish(ctx, events)

	if result != nil {
		telemetry.RecordError(span, fetchErr)
		s.log(ctx).Warn("Ledger fetch failed",
			zap.String("session_id", session.ID.String()),
			zap.Int64("customer_id", query.CustomerID),
			zap.Duration("elapsed", elapsed),
			zap.Error(fetchErr),
		)
		return settlement.SessionView{}, result
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrItemCount, note.ItemCount)
	s.log(ctx).Info("Ledger fetched",
		zap.String("session_id", session.ID.String()),
		zap.Int64("customer_id", query.CustomerID),
		zap.Int("items", note.ItemCount),
		zap.Duration("elapsed", elapsed),
	)
	return view, nil
}

func (s *Service) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.fetchTimeout > 0 {
		return context.WithTimeout(ctx, s.fetchTimeout)
	}
	return context.WithCancel(ctx)
}

func fetchFailureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Fetching outstanding documents timed out"
	}
	return "Failed to fetch outstanding documents"
}
