package settlement

import (
	"errors"

	"github.com/erp/settlement/internal/domain/shared"
)

// Error codes reported by the settlement engine
const (
	CodeFetchFailed         = "FETCH_FAILED"
	CodeEmptyResult         = "EMPTY_RESULT"
	CodeValidationRejected  = "VALIDATION_REJECTED"
	CodeItemNotFound        = "ITEM_NOT_FOUND"
	CodeNotInEdit           = "NOT_IN_EDIT"
	CodeSessionLocked       = "SESSION_LOCKED"
	CodeSelectionLocked     = "SELECTION_LOCKED"
	CodeNothingToSettle     = "NOTHING_TO_SETTLE"
	CodeAdvanceModeActive   = "ADVANCE_MODE_ACTIVE"
	CodeAdvanceModeInactive = "ADVANCE_MODE_INACTIVE"
	CodeNoCustomer          = "NO_CUSTOMER"
	CodeSettled             = "SETTLED"
	CodeStaleFetch          = "STALE_FETCH"
	CodeSnapshotMismatch    = "SNAPSHOT_MISMATCH"
	CodeAlreadyAcknowledged = "ALREADY_ACKNOWLEDGED"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
)

// RejectReason explains why a candidate amount was not applied
type RejectReason string

const (
	RejectExceedsDue              RejectReason = "EXCEEDS_DUE"
	RejectNegative                RejectReason = "NEGATIVE_AMOUNT"
	RejectRefundMustBeNonPositive RejectReason = "REFUND_MUST_BE_NON_POSITIVE"
	RejectRefundExceedsCredit     RejectReason = "REFUND_EXCEEDS_CREDIT"
	RejectNonNumeric              RejectReason = "NON_NUMERIC"
	RejectPrecisionExceeded       RejectReason = "PRECISION_EXCEEDED"
)

// String returns the string representation of the reason
func (r RejectReason) String() string {
	return string(r)
}

// Engine errors
var (
	ErrFetchFailed         = shared.NewDomainError(CodeFetchFailed, "Failed to fetch outstanding documents")
	ErrItemNotFound        = shared.NewDomainError(CodeItemNotFound, "Due item not found")
	ErrNotInEdit           = shared.NewDomainError(CodeNotInEdit, "Due item is not in edit mode")
	ErrSessionLocked       = shared.NewDomainError(CodeSessionLocked, "Settlement is under review and cannot be changed")
	ErrSelectionLocked     = shared.NewDomainError(CodeSelectionLocked, "Selection is locked while settlement is under review")
	ErrNothingToSettle     = shared.NewDomainError(CodeNothingToSettle, "Select at least one document with a positive amount to pay")
	ErrAdvanceModeActive   = shared.NewDomainError(CodeAdvanceModeActive, "Operation not available in advance mode")
	ErrAdvanceModeInactive = shared.NewDomainError(CodeAdvanceModeInactive, "Advance mode is not active")
	ErrNoCustomer          = shared.NewDomainError(CodeNoCustomer, "No customer selected")
	ErrSettled             = shared.NewDomainError(CodeSettled, "Settlement already completed, fetch dues again to continue")
	ErrStaleFetch          = shared.NewDomainError(CodeStaleFetch, "Fetch result superseded by a newer request")
	ErrSnapshotMismatch    = shared.NewDomainError(CodeSnapshotMismatch, "Snapshot does not match the settlement under review")
	ErrAlreadyAcknowledged = shared.NewDomainError(CodeAlreadyAcknowledged, "Settlement snapshot already acknowledged")
	ErrSessionNotFound     = shared.NewDomainError(CodeSessionNotFound, "Settlement session not found")
)

// ValidationError is returned when a candidate amount to pay is rejected.
// The item keeps its previous amount and stays in edit mode.
type ValidationError struct {
	*shared.DomainError
	Reason    RejectReason
	ItemIndex int
}

// NewValidationError creates a validation error for the given reason
func NewValidationError(index int, reason RejectReason, message string) *ValidationError {
	return &ValidationError{
		DomainError: shared.NewDomainError(CodeValidationRejected, message),
		Reason:      reason,
		ItemIndex:   index,
	}
}

// Unwrap exposes the embedded domain error
func (e *ValidationError) Unwrap() error {
	return e.DomainError
}

// ReasonOf extracts the reject reason from err, if any
func ReasonOf(err error) (RejectReason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}

// CodeOf returns the domain error code carried by err, or an empty string
func CodeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
