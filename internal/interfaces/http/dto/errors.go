package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the size limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeSessionNotFound = "ERR_SESSION_NOT_FOUND"
	ErrCodeItemNotFound    = "ERR_ITEM_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeInvalidState    = "ERR_INVALID_STATE"
)

// Settlement error codes
const (
	// ErrCodeFetchFailed is used when the due ledger could not be read
	ErrCodeFetchFailed = "ERR_FETCH_FAILED"
	// ErrCodeAmountRejected is used when a candidate amount to pay is invalid
	ErrCodeAmountRejected = "ERR_AMOUNT_REJECTED"
	// ErrCodeNotInEdit is used when an edit operation targets an idle item
	ErrCodeNotInEdit = "ERR_NOT_IN_EDIT"
	// ErrCodeSessionLocked is used while a settlement is under review
	ErrCodeSessionLocked = "ERR_SESSION_LOCKED"
	// ErrCodeSelectionLocked is used for selection changes under review
	ErrCodeSelectionLocked = "ERR_SELECTION_LOCKED"
	// ErrCodeNothingToSettle is used when proceed has nothing selected
	ErrCodeNothingToSettle = "ERR_NOTHING_TO_SETTLE"
	// ErrCodeAdvanceModeActive is used for document operations in advance mode
	ErrCodeAdvanceModeActive = "ERR_ADVANCE_MODE_ACTIVE"
	// ErrCodeAdvanceModeInactive is used for advance requests outside advance mode
	ErrCodeAdvanceModeInactive = "ERR_ADVANCE_MODE_INACTIVE"
	// ErrCodeNoCustomer is used when no customer was selected
	ErrCodeNoCustomer = "ERR_NO_CUSTOMER"
	// ErrCodeSettled is used after the settlement completed
	ErrCodeSettled = "ERR_SETTLED"
	// ErrCodeStaleFetch is used when a newer fetch superseded the request
	ErrCodeStaleFetch = "ERR_STALE_FETCH"
	// ErrCodeSnapshotMismatch is used when an acknowledgement names another snapshot
	ErrCodeSnapshotMismatch = "ERR_SNAPSHOT_MISMATCH"
	// ErrCodeAlreadyAcknowledged is used for repeated acknowledgements
	ErrCodeAlreadyAcknowledged = "ERR_ALREADY_ACKNOWLEDGED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Request errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeSessionNotFound: http.StatusNotFound,
	ErrCodeItemNotFound:    http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,

	// Ledger unavailable -> 502 Bad Gateway
	ErrCodeFetchFailed: http.StatusBadGateway,

	// Rejected amounts and rule violations -> 422 Unprocessable Entity
	ErrCodeAmountRejected:      http.StatusUnprocessableEntity,
	ErrCodeNotInEdit:           http.StatusUnprocessableEntity,
	ErrCodeNothingToSettle:     http.StatusUnprocessableEntity,
	ErrCodeAdvanceModeActive:   http.StatusUnprocessableEntity,
	ErrCodeAdvanceModeInactive: http.StatusUnprocessableEntity,
	ErrCodeNoCustomer:          http.StatusUnprocessableEntity,

	// Gate and concurrency conflicts -> 409 Conflict
	ErrCodeSessionLocked:       http.StatusConflict,
	ErrCodeSelectionLocked:     http.StatusConflict,
	ErrCodeSettled:             http.StatusConflict,
	ErrCodeStaleFetch:          http.StatusConflict,
	ErrCodeSnapshotMismatch:    http.StatusConflict,
	ErrCodeAlreadyAcknowledged: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"FETCH_FAILED":          ErrCodeFetchFailed,
	"VALIDATION_REJECTED":   ErrCodeAmountRejected,
	"ITEM_NOT_FOUND":        ErrCodeItemNotFound,
	"NOT_IN_EDIT":           ErrCodeNotInEdit,
	"SESSION_LOCKED":        ErrCodeSessionLocked,
	"SELECTION_LOCKED":      ErrCodeSelectionLocked,
	"NOTHING_TO_SETTLE":     ErrCodeNothingToSettle,
	"ADVANCE_MODE_ACTIVE":   ErrCodeAdvanceModeActive,
	"ADVANCE_MODE_INACTIVE": ErrCodeAdvanceModeInactive,
	"NO_CUSTOMER":           ErrCodeNoCustomer,
	"SETTLED":               ErrCodeSettled,
	"STALE_FETCH":           ErrCodeStaleFetch,
	"SNAPSHOT_MISMATCH":     ErrCodeSnapshotMismatch,
	"ALREADY_ACKNOWLEDGED":  ErrCodeAlreadyAcknowledged,
	"SESSION_NOT_FOUND":     ErrCodeSessionNotFound,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
