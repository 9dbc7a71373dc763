package models

import (
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/shopspring/decimal"
)

// DocumentStatus is the payment status of a receivable document
type DocumentStatus string

const (
	DocumentStatusOpen    DocumentStatus = "OPEN"
	DocumentStatusPartial DocumentStatus = "PARTIAL"
	DocumentStatusPaid    DocumentStatus = "PAID"
	DocumentStatusVoid    DocumentStatus = "VOID"
)

// OutstandingStatuses are the statuses that still carry a due amount
func OutstandingStatuses() []DocumentStatus {
	return []DocumentStatus{DocumentStatusOpen, DocumentStatusPartial}
}

// ReceivableDocument holds the columns shared by invoices and credit notes.
// DueAmount is stored unsigned for both kinds.
type ReceivableDocument struct {
	TenantModel
	CustomerID   int64           `gorm:"not null;index:idx_tenant_company_customer,priority:3"`
	DocumentRef  string          `gorm:"type:varchar(50);not null"`
	DocumentDate time.Time       `gorm:"not null;index"`
	TotalValue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LocationRef  string          `gorm:"type:varchar(100)"`
	Status       DocumentStatus  `gorm:"type:varchar(20);not null;default:'OPEN';index"`
}

func (d *ReceivableDocument) toLedgerRow(isInvoice bool) settlement.LedgerRow {
	return settlement.LedgerRow{
		ID:           d.ID,
		IsInvoice:    isInvoice,
		DocumentRef:  d.DocumentRef,
		DocumentDate: d.DocumentDate,
		TotalValue:   d.TotalValue,
		DueAmount:    d.DueAmount,
		LocationRef:  d.LocationRef,
	}
}

// SalesInvoiceModel is an issued sales invoice
type SalesInvoiceModel struct {
	ReceivableDocument
}

// TableName returns the table name for GORM
func (SalesInvoiceModel) TableName() string {
	return "sales_invoices"
}

// ToLedgerRow converts the model to fetcher output
func (m *SalesInvoiceModel) ToLedgerRow() settlement.LedgerRow {
	return m.toLedgerRow(true)
}

// CreditNoteModel is an issued credit note
type CreditNoteModel struct {
	ReceivableDocument
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToLedgerRow converts the model to fetcher output
func (m *CreditNoteModel) ToLedgerRow() settlement.LedgerRow {
	return m.toLedgerRow(false)
}
