package settlement

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind distinguishes invoices from credit notes
type DocumentKind string

const (
	// DocumentKindInvoice is an amount the customer owes the business
	DocumentKindInvoice DocumentKind = "INVOICE"
	// DocumentKindCreditNote is an amount the business owes the customer
	DocumentKindCreditNote DocumentKind = "CREDIT_NOTE"
)

// IsValid checks if the document kind is valid
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindInvoice, DocumentKindCreditNote:
		return true
	}
	return false
}

// String returns the string representation of the kind
func (k DocumentKind) String() string {
	return string(k)
}

// LedgerRow is a raw open document as returned by the due ledger.
// DueAmount is unsigned; the sign is implied by IsInvoice.
type LedgerRow struct {
	ID           uuid.UUID
	IsInvoice    bool
	DocumentRef  string
	DocumentDate time.Time
	TotalValue   decimal.Decimal
	DueAmount    decimal.Decimal
	LocationRef  string
}

// DueItem is one outstanding document in signed-amount form.
//
// Amount is positive for money owed by the customer and negative for money
// owed to the customer. AmountToPay is the part of Amount settled now and
// always lies between zero and Amount at rest.
type DueItem struct {
	ID           uuid.UUID       `json:"id"`
	Kind         DocumentKind    `json:"kind"`
	DocumentRef  string          `json:"document_ref"`
	DocumentDate time.Time       `json:"document_date"`
	TotalValue   decimal.Decimal `json:"total_value"`
	Amount       decimal.Decimal `json:"amount"`
	AmountToPay  decimal.Decimal `json:"amount_to_pay"`
	LocationRef  string          `json:"location_ref"`
}

// IsInvoice reports whether the item is backed by an invoice
func (d DueItem) IsInvoice() bool {
	return d.Kind == DocumentKindInvoice
}

// IsRefund reports whether the item carries money owed to the customer
func (d DueItem) IsRefund() bool {
	return d.Amount.IsNegative()
}

// Normalize converts raw ledger rows into due items.
// Every item starts with AmountToPay equal to its full Amount.
func Normalize(rows []LedgerRow) []DueItem {
	items := make([]DueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeRow(row))
	}
	return items
}

func normalizeRow(row LedgerRow) DueItem {
	due := row.DueAmount.Abs()
	kind := DocumentKindInvoice
	amount := due
	if !row.IsInvoice {
		kind = DocumentKindCreditNote
		amount = due.Neg()
	}
	// a zero due has no sign
	if amount.IsZero() {
		amount = decimal.Zero
	}
	id := row.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return DueItem{
		ID:           id,
		Kind:         kind,
		DocumentRef:  row.DocumentRef,
		DocumentDate: row.DocumentDate,
		TotalValue:   row.TotalValue.Abs(),
		Amount:       amount,
		AmountToPay:  amount,
		LocationRef:  row.LocationRef,
	}
}

// Money amounts follow the ledger's DECIMAL(18,4) columns
const (
	MaxAmountScale         = 4
	MaxAmountIntegerDigits = 14
)

var plainAmount = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// ParseAmount parses operator input written in plain fixed-point notation.
// Exponent forms such as 1e-9 are refused. Trailing fractional zeros are
// dropped so "10.50000" parses as 10.5.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if !plainAmount.MatchString(raw) {
		return decimal.Zero, false
	}
	if strings.Contains(raw, ".") {
		raw = strings.TrimSuffix(strings.TrimRight(raw, "0"), ".")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// WithinMoneyScale reports whether d fits the ledger's money columns.
// It reads only the exponent and digit count, so it is cheap for any input.
func WithinMoneyScale(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -MaxAmountScale || exp > MaxAmountIntegerDigits {
		return false
	}
	return d.NumDigits()+exp <= MaxAmountIntegerDigits
}

// ValidateAmountToPay checks a candidate amount against the item's bounds.
// It returns the reject reason, or an empty reason when the amount is valid.
func (d DueItem) ValidateAmountToPay(candidate decimal.Decimal) RejectReason {
	if !WithinMoneyScale(candidate) {
		return RejectPrecisionExceeded
	}
	if !d.Amount.IsNegative() {
		if candidate.GreaterThan(d.Amount) {
			return RejectExceedsDue
		}
		if candidate.IsNegative() {
			return RejectNegative
		}
		return ""
	}
	if candidate.IsPositive() {
		return RejectRefundMustBeNonPositive
	}
	if candidate.LessThan(d.Amount) {
		return RejectRefundExceedsCredit
	}
	return ""
}
