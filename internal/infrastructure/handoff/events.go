package handoff

import (
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/domain/shared"
)

// Hand-off event types consumed by the capture and advance flows
const (
	EventTypeCaptureRequested = "settlement.capture_requested"
	EventTypeAdvanceRequested = "settlement.advance_collection_requested"
)

// CaptureRequestedEvent asks the payment capture flow to collect a snapshot
type CaptureRequestedEvent struct {
	shared.BaseDomainEvent
	Snapshot settlement.SettlementSnapshot `json:"snapshot"`
}

// NewCaptureRequestedEvent creates a CaptureRequestedEvent
func NewCaptureRequestedEvent(snapshot settlement.SettlementSnapshot) *CaptureRequestedEvent {
	return &CaptureRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaptureRequested, settlement.AggregateTypeSession, snapshot.SessionID, snapshot.TenantID),
		Snapshot:        snapshot,
	}
}

// AdvanceCollectionRequestedEvent asks the advance flow to collect a deposit
type AdvanceCollectionRequestedEvent struct {
	shared.BaseDomainEvent
	Request settlement.AdvanceRequest `json:"request"`
}

// NewAdvanceCollectionRequestedEvent creates an AdvanceCollectionRequestedEvent
func NewAdvanceCollectionRequestedEvent(req settlement.AdvanceRequest) *AdvanceCollectionRequestedEvent {
	return &AdvanceCollectionRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdvanceRequested, settlement.AggregateTypeSession, req.SessionID, req.TenantID),
		Request:         req,
	}
}
