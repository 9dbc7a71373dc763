package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fetch outcomes recorded by SettlementMetrics
const (
	FetchOutcomeLoaded = "loaded"
	FetchOutcomeEmpty  = "empty"
	FetchOutcomeFailed = "failed"
	FetchOutcomeStale  = "stale"
)

// SettlementMetrics records business metrics of the settlement engine.
// A nil *SettlementMetrics is valid and records nothing.
type SettlementMetrics struct {
	fetches        *Counter
	fetchDuration  *Histogram
	rejections     *Counter
	proceeds       *Counter
	settlements    *Counter
	settledAmount  *Histogram
	advances       *Counter
	activeSessions *UpDownCounter
}

// NewSettlementMetrics creates the settlement instruments on the provider's meter.
func NewSettlementMetrics(mp *MeterProvider) (*SettlementMetrics, error) {
	meter := mp.Meter("erp-settlement/business")
	m := &SettlementMetrics{}
	var err error

	if m.fetches, err = NewCounter(meter, "settlement_ledger_fetch_total", "Ledger fetches by outcome", "{fetch}"); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "settlement_ledger_fetch_duration_seconds",
		Description: "Ledger fetch duration",
		Unit:        "s",
		Boundaries:  FetchDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.rejections, err = NewCounter(meter, "settlement_edit_rejected_total", "Rejected amount edits by reason", "{edit}"); err != nil {
		return nil, err
	}
	if m.proceeds, err = NewCounter(meter, "settlement_proceed_total", "Snapshots handed to payment capture", "{snapshot}"); err != nil {
		return nil, err
	}
	if m.settlements, err = NewCounter(meter, "settlement_completed_total", "Acknowledged settlements", "{settlement}"); err != nil {
		return nil, err
	}
	if m.settledAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "settlement_amount",
		Description: "Total to pay of acknowledged settlements",
		Unit:        "{currency}",
	}); err != nil {
		return nil, err
	}
	if m.advances, err = NewCounter(meter, "settlement_advance_requested_total", "Advance collection requests", "{request}"); err != nil {
		return nil, err
	}
	if m.activeSessions, err = NewUpDownCounter(meter, "settlement_active_sessions", "Open settlement sessions", "{session}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordFetch records the outcome and duration of a ledger fetch.
func (m *SettlementMetrics) RecordFetch(ctx context.Context, tenantID uuid.UUID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOutcome.String(outcome))
	m.fetchDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordRejection records a rejected amount edit.
func (m *SettlementMetrics) RecordRejection(ctx context.Context, tenantID uuid.UUID, reason string) {
	if m == nil {
		return
	}
	m.rejections.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrRejectReason.String(reason))
}

// RecordProceed records a snapshot handed to payment capture.
func (m *SettlementMetrics) RecordProceed(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.proceeds.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordSettlement records an acknowledged settlement and its amount.
func (m *SettlementMetrics) RecordSettlement(ctx context.Context, tenantID uuid.UUID, totalToPay decimal.Decimal) {
	if m == nil {
		return
	}
	m.settlements.Inc(ctx, AttrTenantID.String(tenantID.String()))
	m.settledAmount.Record(ctx, totalToPay.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordAdvance records an advance collection request.
func (m *SettlementMetrics) RecordAdvance(ctx context.Context, tenantID uuid.UUID, collectPayment bool) {
	if m == nil {
		return
	}
	m.advances.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrCollect.Bool(collectPayment))
}

// SessionOpened increments the open session gauge.
func (m *SettlementMetrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

// SessionClosed decrements the open session gauge.
func (m *SettlementMetrics) SessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
