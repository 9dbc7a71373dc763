package settlement

import (
	"context"

	"github.com/google/uuid"
)

// LedgerQuery identifies whose open documents to fetch
type LedgerQuery struct {
	TenantID   uuid.UUID
	CompanyID  int64
	CustomerID int64
}

// DueLedgerFetcher returns the open documents of a customer, oldest first.
// Any error is reported to the operator as a failed fetch.
type DueLedgerFetcher interface {
	FetchDues(ctx context.Context, query LedgerQuery) ([]LedgerRow, error)
}

// PaymentCapturer opens the payment capture flow for a snapshot.
// The outcome arrives later as an acknowledgement or a return.
type PaymentCapturer interface {
	OpenCapture(ctx context.Context, snapshot SettlementSnapshot) error
}

// AdvanceCollector opens the advance collection flow
type AdvanceCollector interface {
	OpenAdvance(ctx context.Context, req AdvanceRequest) error
}

// NotificationKind classifies operator notifications
type NotificationKind string

const (
	NotificationFetchSucceeded NotificationKind = "FETCH_SUCCEEDED"
	NotificationEmptyResult    NotificationKind = "EMPTY_RESULT"
	NotificationFetchFailed    NotificationKind = "FETCH_FAILED"
)

// Notification is a fire-and-forget message for the operator
type Notification struct {
	Kind       NotificationKind `json:"kind"`
	SessionID  uuid.UUID        `json:"session_id"`
	TenantID   uuid.UUID        `json:"tenant_id"`
	CustomerID int64            `json:"customer_id"`
	Message    string           `json:"message"`
	ItemCount  int              `json:"item_count"`
}

// Notifier delivers notifications. Failures never affect the engine.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// SettlementArchive keeps acknowledged snapshots for audit.
// Archive returns the location the snapshot was written to.
type SettlementArchive interface {
	Archive(ctx context.Context, snapshot SettlementSnapshot) (string, error)
}
