package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLedgerDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SalesInvoiceModel{}, &models.CreditNoteModel{}))
	return db
}

type docFixture struct {
	tenantID   uuid.UUID
	companyID  int64
	customerID int64
	ref        string
	date       time.Time
	due        string
	status     models.DocumentStatus
}

func (f docFixture) document() models.ReceivableDocument {
	now := time.Now()
	status := f.status
	if status == "" {
		status = models.DocumentStatusOpen
	}
	return models.ReceivableDocument{
		TenantModel: models.TenantModel{
			BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			TenantID:  f.tenantID,
			CompanyID: f.companyID,
		},
		CustomerID:   f.customerID,
		DocumentRef:  f.ref,
		DocumentDate: f.date,
		TotalValue:   decimal.RequireFromString(f.due),
		DueAmount:    decimal.RequireFromString(f.due),
		LocationRef:  "MAIN",
		Status:       status,
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestGormDueLedgerRepository_FetchDues(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	query := settlement.LedgerQuery{TenantID: tenantID, CompanyID: 1, CustomerID: 42}

	t.Run("merges invoices and credit notes oldest first", func(t *testing.T) {
		db := setupLedgerDB(t)
		invoices := []models.SalesInvoiceModel{
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-002", day(5), "200", ""}.document()},
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-001", day(1), "100", models.DocumentStatusPartial}.document()},
		}
		credits := []models.CreditNoteModel{
			{ReceivableDocument: docFixture{tenantID, 1, 42, "CN-001", day(5), "30", ""}.document()},
		}
		require.NoError(t, db.Create(&invoices).Error)
		require.NoError(t, db.Create(&credits).Error)

		rows, err := NewGormDueLedgerRepository(db).FetchDues(ctx, query)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "INV-001", rows[0].DocumentRef)
		assert.Equal(t, "CN-001", rows[1].DocumentRef)
		assert.Equal(t, "INV-002", rows[2].DocumentRef)
		assert.True(t, rows[0].IsInvoice)
		assert.False(t, rows[1].IsInvoice)
		assert.True(t, rows[1].DueAmount.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, "MAIN", rows[2].LocationRef)
	})

	t.Run("skips settled, void and zero-due documents", func(t *testing.T) {
		db := setupLedgerDB(t)
		invoices := []models.SalesInvoiceModel{
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-PAID", day(1), "50", models.DocumentStatusPaid}.document()},
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-VOID", day(2), "50", models.DocumentStatusVoid}.document()},
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-ZERO", day(3), "0", ""}.document()},
			{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-OPEN", day(4), "10", ""}.document()},
		}
		require.NoError(t, db.Create(&invoices).Error)

		rows, err := NewGormDueLedgerRepository(db).FetchDues(ctx, query)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "INV-OPEN", rows[0].DocumentRef)
	})

	t.Run("isolates customers, companies and tenants", func(t *testing.T) {
		db := setupLedgerDB(t)
		invoices := []models.SalesInvoiceModel{
			{ReceivableDocument: docFixture{tenantID, 1, 7, "OTHER-CUSTOMER", day(1), "10", ""}.document()},
			{ReceivableDocument: docFixture{tenantID, 2, 42, "OTHER-COMPANY", day(1), "10", ""}.document()},
			{ReceivableDocument: docFixture{uuid.New(), 1, 42, "OTHER-TENANT", day(1), "10", ""}.document()},
		}
		require.NoError(t, db.Create(&invoices).Error)

		rows, err := NewGormDueLedgerRepository(db).FetchDues(ctx, query)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("requires tenant", func(t *testing.T) {
		db := setupLedgerDB(t)
		_, err := NewGormDueLedgerRepository(db).FetchDues(ctx, settlement.LedgerQuery{CompanyID: 1, CustomerID: 42})
		assert.Error(t, err)
	})
}

var ledgerColumns = []string{
	"id", "created_at", "updated_at", "tenant_id", "company_id", "customer_id",
	"document_ref", "document_date", "total_value", "due_amount", "location_ref", "status",
}

func TestGormDueLedgerRepository_FetchDues_SQL(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	query := settlement.LedgerQuery{TenantID: tenantID, CompanyID: 3, CustomerID: 9}

	t.Run("issues one tenant scoped query per table", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "sales_invoices" WHERE tenant_id = \$1 AND .*company_id = \$2 AND customer_id = \$3.*due_amount > 0.*status IN \(\$4,\$5\) ORDER BY document_date ASC, document_ref ASC`).
			WithArgs(tenantID, int64(3), int64(9), "OPEN", "PARTIAL").
			WillReturnRows(sqlmock.NewRows(ledgerColumns).
				AddRow(uuid.New(), now, now, tenantID, 3, 9, "INV-9", day(2), "80", "80", "", "OPEN"))
		mock.ExpectQuery(`SELECT \* FROM "credit_notes" WHERE tenant_id = \$1`).
			WithArgs(tenantID, int64(3), int64(9), "OPEN", "PARTIAL").
			WillReturnRows(sqlmock.NewRows(ledgerColumns).
				AddRow(uuid.New(), now, now, tenantID, 3, 9, "CN-9", day(1), "15", "15", "", "OPEN"))

		rows, err := NewGormDueLedgerRepository(db.DB).FetchDues(ctx, query)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "CN-9", rows[0].DocumentRef)
		assert.Equal(t, "INV-9", rows[1].DocumentRef)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps query errors", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "sales_invoices"`).WillReturnError(errors.New("relation does not exist"))

		_, err := NewGormDueLedgerRepository(db.DB).FetchDues(ctx, query)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sales invoices")
	})
}
