package settlement

import "github.com/google/uuid"

// SessionView is a read-only projection of a session for the host
type SessionView struct {
	ID          uuid.UUID           `json:"id"`
	Version     int                 `json:"version"`
	OperatorID  uuid.UUID           `json:"operator_id"`
	CompanyID   int64               `json:"company_id"`
	CustomerID  int64               `json:"customer_id"`
	CustomerRef string              `json:"customer_ref"`
	State       GateState           `json:"state"`
	AdvanceMode bool                `json:"advance_mode"`
	Items       []DueItem           `json:"items"`
	Edits       map[int]EditState   `json:"edits"`
	SelectedIDs []uuid.UUID         `json:"selected_ids"`
	AllSelected bool                `json:"all_selected"`
	Totals      Totals              `json:"totals"`
	CanProceed  bool                `json:"can_proceed"`
	SignRule    ReceivableSignRule  `json:"receivable_sign_rule"`
	Snapshot    *SettlementSnapshot `json:"snapshot,omitempty"`
}

// View projects the session state
func (s *Session) View() SessionView {
	v := SessionView{
		ID:          s.ID,
		Version:     s.Version,
		OperatorID:  s.OperatorID,
		CompanyID:   s.CompanyID,
		CustomerID:  s.CustomerID,
		CustomerRef: s.CustomerRef,
		State:       s.state,
		AdvanceMode: s.advance,
		Items:       s.Items(),
		Edits:       s.edits.snapshot(),
		SelectedIDs: s.selection.IDs(),
		AllSelected: s.AllSelected(),
		Totals:      s.Totals(),
		CanProceed:  s.CanProceed(),
		SignRule:    s.rule,
	}
	if snap, ok := s.Snapshot(); ok {
		v.Snapshot = &snap
	}
	return v
}
