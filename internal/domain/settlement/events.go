package settlement

import (
	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeSession is the aggregate type name for settlement sessions
const AggregateTypeSession = "SettlementSession"

// Event type constants
const (
	EventTypeSettlementProceeded = "settlement.proceeded"
	EventTypeSettlementReturned  = "settlement.returned"
	EventTypeSettlementCompleted = "settlement.completed"
	EventTypeAdvanceRequested    = "settlement.advance_requested"
	EventTypeNotification        = "settlement.notification"
)

// SettlementProceededEvent is raised when a snapshot is handed to capture
type SettlementProceededEvent struct {
	shared.BaseDomainEvent
	Snapshot SettlementSnapshot `json:"snapshot"`
}

// NewSettlementProceededEvent creates a new SettlementProceededEvent
func NewSettlementProceededEvent(s *Session, snapshot SettlementSnapshot) *SettlementProceededEvent {
	return &SettlementProceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementProceeded, AggregateTypeSession, s.ID, s.TenantID),
		Snapshot:        snapshot,
	}
}

// SettlementReturnedEvent is raised when the operator leaves capture without settling
type SettlementReturnedEvent struct {
	shared.BaseDomainEvent
	SnapshotID uuid.UUID `json:"snapshot_id"`
}

// NewSettlementReturnedEvent creates a new SettlementReturnedEvent
func NewSettlementReturnedEvent(s *Session, snapshotID uuid.UUID) *SettlementReturnedEvent {
	return &SettlementReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementReturned, AggregateTypeSession, s.ID, s.TenantID),
		SnapshotID:      snapshotID,
	}
}

// SettlementCompletedEvent is raised when capture acknowledges a snapshot
type SettlementCompletedEvent struct {
	shared.BaseDomainEvent
	SnapshotID  uuid.UUID       `json:"snapshot_id"`
	CustomerRef string          `json:"customer_ref"`
	CompanyID   int64           `json:"company_id"`
	TotalToPay  decimal.Decimal `json:"total_to_pay"`
	ItemCount   int             `json:"item_count"`

	Snapshot SettlementSnapshot `json:"snapshot"`
}

// NewSettlementCompletedEvent creates a new SettlementCompletedEvent
func NewSettlementCompletedEvent(s *Session, snapshot SettlementSnapshot) *SettlementCompletedEvent {
	return &SettlementCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCompleted, AggregateTypeSession, s.ID, s.TenantID),
		SnapshotID:      snapshot.ID,
		CustomerRef:     snapshot.CustomerRef,
		CompanyID:       snapshot.CompanyID,
		TotalToPay:      snapshot.TotalToPay,
		ItemCount:       len(snapshot.Items),
		Snapshot:        snapshot,
	}
}

// AdvanceRequestedEvent is raised when the advance collection flow is opened
type AdvanceRequestedEvent struct {
	shared.BaseDomainEvent
	Request AdvanceRequest `json:"request"`
}

// NewAdvanceRequestedEvent creates a new AdvanceRequestedEvent
func NewAdvanceRequestedEvent(s *Session, req AdvanceRequest) *AdvanceRequestedEvent {
	return &AdvanceRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdvanceRequested, AggregateTypeSession, s.ID, s.TenantID),
		Request:         req,
	}
}

// NotificationEvent carries an operator notification on the event bus
type NotificationEvent struct {
	shared.BaseDomainEvent
	Notification Notification `json:"notification"`
}

// NewNotificationEvent creates a new NotificationEvent
func NewNotificationEvent(n Notification) *NotificationEvent {
	return &NotificationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeNotification, AggregateTypeSession, n.SessionID, n.TenantID),
		Notification:    n,
	}
}
