package settlement

import (
	"strings"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is the aggregate root for one operator's settlement of one customer.
// It owns the due items, their edit state, the selection and the gate.
// A Session is not safe for concurrent use.
type Session struct {
	shared.BaseAggregateRoot
	TenantID    uuid.UUID
	OperatorID  uuid.UUID
	CompanyID   int64
	CustomerID  int64
	CustomerRef string

	items     []DueItem
	edits     editTracker
	selection *SelectionSet
	state     GateState
	advance   bool
	snapshot  *SettlementSnapshot
	rule      ReceivableSignRule
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithReceivableSignRule sets the rule used for TotalReceivable
func WithReceivableSignRule(rule ReceivableSignRule) SessionOption {
	return func(s *Session) {
		if rule.IsValid() {
			s.rule = rule
		}
	}
}

// WithOperator binds the session to the user who opened it
func WithOperator(userID uuid.UUID) SessionOption {
	return func(s *Session) {
		s.OperatorID = userID
	}
}

// Operator identifies who acts on a session
type Operator struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

// OwnedBy reports whether op may act on the session
func (s *Session) OwnedBy(op Operator) bool {
	return s.TenantID == op.TenantID && s.OperatorID == op.UserID
}

// NewSession creates an empty session in browsing state
func NewSession(tenantID uuid.UUID, companyID int64, opts ...SessionOption) *Session {
	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		CompanyID:         companyID,
		edits:             newEditTracker(),
		selection:         NewSelectionSet(),
		state:             GateBrowsing,
		rule:              ReceivableSignedAmount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadOutcome describes the result of replacing the ledger
type LoadOutcome struct {
	ItemCount int  `json:"item_count"`
	Empty     bool `json:"empty"`
}

// State returns the gate state
func (s *Session) State() GateState {
	return s.state
}

// AdvanceMode reports whether advance mode is on
func (s *Session) AdvanceMode() bool {
	return s.advance
}

// SignRule returns the receivable sign rule in use
func (s *Session) SignRule() ReceivableSignRule {
	return s.rule
}

// HasCustomer reports whether a customer is selected
func (s *Session) HasCustomer() bool {
	return s.CustomerID != 0
}

// Items returns a copy of the current due items
func (s *Session) Items() []DueItem {
	out := make([]DueItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the due item at index
func (s *Session) Item(index int) (DueItem, error) {
	if index < 0 || index >= len(s.items) {
		return DueItem{}, ErrItemNotFound
	}
	return s.items[index], nil
}

// EditStateOf returns the edit state of the item at index
func (s *Session) EditStateOf(index int) EditState {
	return s.edits.get(index)
}

// Snapshot returns the snapshot under review, if any
func (s *Session) Snapshot() (SettlementSnapshot, bool) {
	if s.snapshot == nil {
		return SettlementSnapshot{}, false
	}
	return *s.snapshot, true
}

// SelectCustomer switches to another customer and discards all ledger state.
// The host is expected to fetch the new customer's dues.
func (s *Session) SelectCustomer(customerID int64, customerRef string) error {
	if s.state == GateReviewing {
		return ErrSessionLocked
	}
	if customerID <= 0 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Customer ID must be positive")
	}
	s.CustomerID = customerID
	s.CustomerRef = strings.TrimSpace(customerRef)
	s.discardLedger()
	s.state = GateBrowsing
	s.touch()
	return nil
}

// ClearCustomer drops the customer and the ledger
func (s *Session) ClearCustomer() error {
	if s.state == GateReviewing {
		return ErrSessionLocked
	}
	s.CustomerID = 0
	s.CustomerRef = ""
	s.discardLedger()
	s.state = GateBrowsing
	s.touch()
	return nil
}

// ReplaceLedger replaces the due items with a freshly fetched ledger.
// Edit state and selection start empty. An empty ledger is reported
// through the outcome so the host can tell the operator.
func (s *Session) ReplaceLedger(rows []LedgerRow) (LoadOutcome, error) {
	if err := s.ensureCanLoad(); err != nil {
		return LoadOutcome{}, err
	}
	s.discardLedger()
	s.items = Normalize(rows)
	s.state = GateBrowsing
	s.touch()
	return LoadOutcome{ItemCount: len(s.items), Empty: len(s.items) == 0}, nil
}

// ClearLedger empties the ledger after a failed fetch
func (s *Session) ClearLedger() error {
	if s.state == GateReviewing {
		return ErrSessionLocked
	}
	s.discardLedger()
	if s.state == GateSettled {
		s.state = GateBrowsing
	}
	s.touch()
	return nil
}

// ensureCanLoad checks that a fetch result may be applied
func (s *Session) ensureCanLoad() error {
	if s.state == GateReviewing {
		return ErrSessionLocked
	}
	if s.advance {
		return ErrAdvanceModeActive
	}
	if !s.HasCustomer() {
		return ErrNoCustomer
	}
	return nil
}

// CanFetch reports whether a fetch may be started right now
func (s *Session) CanFetch() error {
	return s.ensureCanLoad()
}

// BeginEdit enters edit mode for the item at index
func (s *Session) BeginEdit(index int) error {
	item, err := s.editableItem(index)
	if err != nil {
		return err
	}
	s.edits.begin(index, item.AmountToPay)
	s.touch()
	return nil
}

// CommitEdit validates raw operator input and applies it as the amount to pay.
// Rejected input leaves the item unchanged and in edit mode.
func (s *Session) CommitEdit(index int, raw string) error {
	if _, err := s.itemInEdit(index); err != nil {
		return err
	}
	amount, ok := ParseAmount(raw)
	if !ok {
		return NewValidationError(index, RejectNonNumeric, rejectMessage(RejectNonNumeric, DueItem{}))
	}
	return s.CommitEditAmount(index, amount)
}

// CommitEditAmount applies a numeric amount to pay after checking its bounds
func (s *Session) CommitEditAmount(index int, amount decimal.Decimal) error {
	item, err := s.itemInEdit(index)
	if err != nil {
		return err
	}
	if reason := item.ValidateAmountToPay(amount); reason != "" {
		return NewValidationError(index, reason, rejectMessage(reason, item))
	}
	s.items[index].AmountToPay = amount
	s.touch()
	return nil
}

// CancelEdit restores the amount captured when editing began
func (s *Session) CancelEdit(index int) error {
	if _, err := s.editableItem(index); err != nil {
		return err
	}
	if prev, ok := s.edits.cancel(index); ok {
		s.items[index].AmountToPay = prev
	}
	s.touch()
	return nil
}

// EndEdit leaves edit mode keeping the last committed amount
func (s *Session) EndEdit(index int) error {
	if _, err := s.editableItem(index); err != nil {
		return err
	}
	s.edits.end(index)
	s.touch()
	return nil
}

func (s *Session) editableItem(index int) (DueItem, error) {
	if err := s.ensureMutable(); err != nil {
		return DueItem{}, err
	}
	return s.Item(index)
}

func (s *Session) itemInEdit(index int) (DueItem, error) {
	item, err := s.editableItem(index)
	if err != nil {
		return DueItem{}, err
	}
	if !s.edits.get(index).InEdit {
		return DueItem{}, ErrNotInEdit
	}
	return item, nil
}

func (s *Session) ensureMutable() error {
	switch s.state {
	case GateReviewing:
		return ErrSessionLocked
	case GateSettled:
		return ErrSettled
	}
	return nil
}

// Toggle flips the selection of one item. Unknown ids are ignored.
func (s *Session) Toggle(itemID uuid.UUID) error {
	if err := s.ensureSelectable(); err != nil {
		return err
	}
	if err := s.selection.Toggle(itemID, s.items); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SelectAll selects every item currently in the ledger
func (s *Session) SelectAll() error {
	if err := s.ensureSelectable(); err != nil {
		return err
	}
	if err := s.selection.SelectAll(s.items); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ClearSelection deselects every item
func (s *Session) ClearSelection() error {
	if err := s.ensureSelectable(); err != nil {
		return err
	}
	if err := s.selection.ClearAll(); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Session) ensureSelectable() error {
	if s.selection.IsLocked() {
		return ErrSelectionLocked
	}
	if s.state == GateSettled {
		return ErrSettled
	}
	return nil
}

// IsSelected reports whether the item is selected
func (s *Session) IsSelected(itemID uuid.UUID) bool {
	return s.selection.IsSelected(itemID)
}

// SelectedIDs returns the selected item ids
func (s *Session) SelectedIDs() []uuid.UUID {
	return s.selection.IDs()
}

// AllSelected reports whether every item in a non-empty ledger is selected
func (s *Session) AllSelected() bool {
	return len(s.items) > 0 && s.selection.Len() == len(s.items)
}

// Totals recomputes the totals of the current selection
func (s *Session) Totals() Totals {
	return ComputeTotals(s.items, s.selection, s.rule)
}

// CanProceed reports whether the proceed action is enabled
func (s *Session) CanProceed() bool {
	if s.state != GateBrowsing || s.advance {
		return false
	}
	if s.selection.Len() == 0 {
		return false
	}
	return s.Totals().TotalToPay.IsPositive()
}

// Proceed freezes the selection and builds the snapshot for payment capture
func (s *Session) Proceed() (SettlementSnapshot, error) {
	switch {
	case s.state == GateReviewing:
		return SettlementSnapshot{}, ErrSessionLocked
	case s.state == GateSettled:
		return SettlementSnapshot{}, ErrSettled
	case s.advance:
		return SettlementSnapshot{}, ErrAdvanceModeActive
	case !s.CanProceed():
		return SettlementSnapshot{}, ErrNothingToSettle
	}
	snapshot := newSnapshot(s, s.Totals())
	s.selection.lock()
	s.snapshot = &snapshot
	s.state = GateReviewing
	s.touch()
	s.AddDomainEvent(NewSettlementProceededEvent(s, snapshot))
	return snapshot, nil
}

// ReturnToBrowsing unlocks the selection after capture was closed without
// settling. Items and edit state are kept as they were.
func (s *Session) ReturnToBrowsing() error {
	if s.state != GateReviewing {
		return shared.ErrInvalidState
	}
	snapshotID := s.snapshot.ID
	s.selection.unlock()
	s.snapshot = nil
	s.state = GateBrowsing
	s.touch()
	s.AddDomainEvent(NewSettlementReturnedEvent(s, snapshotID))
	return nil
}

// CompleteSettlement marks the snapshot under review as settled.
// The session accepts nothing but a new fetch or customer afterwards.
func (s *Session) CompleteSettlement(snapshotID uuid.UUID) (SettlementSnapshot, error) {
	if s.state != GateReviewing {
		if s.state == GateSettled {
			return SettlementSnapshot{}, ErrSettled
		}
		return SettlementSnapshot{}, shared.ErrInvalidState
	}
	if s.snapshot.ID != snapshotID {
		return SettlementSnapshot{}, ErrSnapshotMismatch
	}
	snapshot := *s.snapshot
	s.state = GateSettled
	s.touch()
	s.AddDomainEvent(NewSettlementCompletedEvent(s, snapshot))
	return snapshot, nil
}

// SetAdvanceMode switches advance mode. Turning it on discards the ledger;
// turning it off leaves an empty ledger until the host fetches again.
func (s *Session) SetAdvanceMode(on bool) error {
	if s.state == GateReviewing {
		return ErrSessionLocked
	}
	if s.advance == on {
		return nil
	}
	s.advance = on
	s.discardLedger()
	s.state = GateBrowsing
	s.touch()
	return nil
}

// RequestAdvance builds the request for the advance collection flow
func (s *Session) RequestAdvance(collectPayment bool) (AdvanceRequest, error) {
	if !s.advance {
		return AdvanceRequest{}, ErrAdvanceModeInactive
	}
	if !s.HasCustomer() {
		return AdvanceRequest{}, ErrNoCustomer
	}
	req := AdvanceRequest{
		SessionID:      s.ID,
		TenantID:       s.TenantID,
		TotalValue:     decimal.Zero,
		AmountToPay:    decimal.Zero,
		CustomerRef:    s.CustomerRef,
		CompanyID:      s.CompanyID,
		Items:          []DueItem{},
		CollectPayment: collectPayment,
	}
	s.AddDomainEvent(NewAdvanceRequestedEvent(s, req))
	return req, nil
}

func (s *Session) discardLedger() {
	s.items = nil
	s.edits.reset()
	s.selection.reset()
	s.selection.unlock()
	s.snapshot = nil
}

func (s *Session) touch() {
	s.MarkChanged(time.Now())
}

func rejectMessage(reason RejectReason, item DueItem) string {
	switch reason {
	case RejectExceedsDue:
		return "Amount to pay cannot exceed the due amount " + item.Amount.String()
	case RejectNegative:
		return "Amount to pay cannot be negative"
	case RejectRefundMustBeNonPositive:
		return "Refund amount cannot be positive"
	case RejectRefundExceedsCredit:
		return "Refund amount cannot exceed the credit " + item.Amount.String()
	case RejectNonNumeric:
		return "Amount to pay must be a plain decimal number"
	case RejectPrecisionExceeded:
		return "Amount to pay allows at most 4 decimal places and 14 integer digits"
	}
	return "Amount to pay rejected"
}
