package event

import (
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/handoff"
)

// RegisterSettlementEvents registers every settlement and hand-off event type
func RegisterSettlementEvents(s *EventSerializer) {
	s.Register(settlement.EventTypeSettlementProceeded, &settlement.SettlementProceededEvent{})
	s.Register(settlement.EventTypeSettlementReturned, &settlement.SettlementReturnedEvent{})
	s.Register(settlement.EventTypeSettlementCompleted, &settlement.SettlementCompletedEvent{})
	s.Register(settlement.EventTypeAdvanceRequested, &settlement.AdvanceRequestedEvent{})
	s.Register(settlement.EventTypeNotification, &settlement.NotificationEvent{})
	s.Register(handoff.EventTypeCaptureRequested, &handoff.CaptureRequestedEvent{})
	s.Register(handoff.EventTypeAdvanceRequested, &handoff.AdvanceCollectionRequestedEvent{})
}

// SettlementEventTypes lists the event types forwarded to external consumers
func SettlementEventTypes() []string {
	return []string{
		settlement.EventTypeSettlementProceeded,
		settlement.EventTypeSettlementReturned,
		settlement.EventTypeSettlementCompleted,
		settlement.EventTypeAdvanceRequested,
		settlement.EventTypeNotification,
		handoff.EventTypeCaptureRequested,
		handoff.EventTypeAdvanceRequested,
	}
}
