package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GateState is the state of the settlement gate
type GateState string

const (
	GateBrowsing  GateState = "BROWSING"
	GateReviewing GateState = "REVIEWING"
	GateSettled   GateState = "SETTLED"
)

// String returns the string representation of the state
func (s GateState) String() string {
	return string(s)
}

// SettlementSnapshot is the immutable package handed to payment capture
type SettlementSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	SessionID       uuid.UUID       `json:"session_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	TotalReceivable decimal.Decimal `json:"total_receivable"`
	TotalToPay      decimal.Decimal `json:"total_to_pay"`
	CustomerRef     string          `json:"customer_ref"`
	CompanyID       int64           `json:"company_id"`
	Items           []DueItem       `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AdvanceRequest is handed to the advance collection flow.
// It is never tied to specific documents.
type AdvanceRequest struct {
	SessionID      uuid.UUID       `json:"session_id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	TotalValue     decimal.Decimal `json:"total_value"`
	AmountToPay    decimal.Decimal `json:"amount_to_pay"`
	CustomerRef    string          `json:"customer_ref"`
	CompanyID      int64           `json:"company_id"`
	Items          []DueItem       `json:"items"`
	CollectPayment bool            `json:"collect_payment"`
}

func newSnapshot(s *Session, totals Totals) SettlementSnapshot {
	selected := make([]DueItem, 0, totals.SelectedCount)
	for _, item := range s.items {
		if s.selection.IsSelected(item.ID) {
			selected = append(selected, item)
		}
	}
	return SettlementSnapshot{
		ID:              uuid.New(),
		SessionID:       s.ID,
		TenantID:        s.TenantID,
		TotalReceivable: totals.TotalReceivable,
		TotalToPay:      totals.TotalToPay,
		CustomerRef:     s.CustomerRef,
		CompanyID:       s.CompanyID,
		Items:           selected,
		CreatedAt:       time.Now(),
	}
}
