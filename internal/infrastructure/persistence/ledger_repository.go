package persistence

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDueLedgerRepository reads a customer's open invoices and credit notes
type GormDueLedgerRepository struct {
	db *gorm.DB
}

// NewGormDueLedgerRepository creates a new repository
func NewGormDueLedgerRepository(db *gorm.DB) *GormDueLedgerRepository {
	return &GormDueLedgerRepository{db: db}
}

// FetchDues returns the outstanding documents of a customer ordered by
// document date then reference
func (r *GormDueLedgerRepository) FetchDues(ctx context.Context, q settlement.LedgerQuery) ([]settlement.LedgerRow, error) {
	if q.TenantID == uuid.Nil {
		return nil, fmt.Errorf("ledger query requires a tenant id")
	}

	var invoices []models.SalesInvoiceModel
	if err := r.outstanding(ctx, q).Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales invoices: %w", err)
	}
	var credits []models.CreditNoteModel
	if err := r.outstanding(ctx, q).Find(&credits).Error; err != nil {
		return nil, fmt.Errorf("failed to load credit notes: %w", err)
	}

	rows := make([]settlement.LedgerRow, 0, len(invoices)+len(credits))
	for i := range invoices {
		rows = append(rows, invoices[i].ToLedgerRow())
	}
	for i := range credits {
		rows = append(rows, credits[i].ToLedgerRow())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DocumentDate.Equal(rows[j].DocumentDate) {
			return rows[i].DocumentDate.Before(rows[j].DocumentDate)
		}
		return rows[i].DocumentRef < rows[j].DocumentRef
	})
	return rows, nil
}

func (r *GormDueLedgerRepository) outstanding(ctx context.Context, q settlement.LedgerQuery) *gorm.DB {
	return scopeTenant(r.db.WithContext(ctx), q.TenantID).
		Where("company_id = ? AND customer_id = ?", q.CompanyID, q.CustomerID).
		Where("due_amount > 0").
		Where("status IN ?", models.OutstandingStatuses()).
		Order("document_date ASC, document_ref ASC")
}

var _ settlement.DueLedgerFetcher = (*GormDueLedgerRepository)(nil)
