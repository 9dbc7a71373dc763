//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/settlement/internal/domain/settlement"
	"github.com/erp/settlement/internal/infrastructure/migration"
	"github.com/erp/settlement/internal/infrastructure/persistence/models"
	"github.com/erp/settlement/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostgresLedger(t *testing.T) (*gorm.DB, *migration.Migrator) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("settlement_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migration.FromFS(migrations.FS, "."), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db, m
}

func TestGormDueLedgerRepository_Postgres(t *testing.T) {
	db, m := newPostgresLedger(t)
	ctx := context.Background()
	tenantID := uuid.New()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	invoices := []models.SalesInvoiceModel{
		{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-2", day(3), "120.50", ""}.document()},
		{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-1", day(1), "80", models.DocumentStatusPartial}.document()},
		{ReceivableDocument: docFixture{tenantID, 1, 42, "INV-0", day(1), "10", models.DocumentStatusPaid}.document()},
	}
	credits := []models.CreditNoteModel{
		{ReceivableDocument: docFixture{tenantID, 1, 42, "CN-1", day(2), "25", ""}.document()},
	}
	require.NoError(t, db.Create(&invoices).Error)
	require.NoError(t, db.Create(&credits).Error)

	rows, err := NewGormDueLedgerRepository(db).FetchDues(ctx, settlement.LedgerQuery{
		TenantID: tenantID, CompanyID: 1, CustomerID: 42,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"INV-1", "CN-1", "INV-2"}, []string{rows[0].DocumentRef, rows[1].DocumentRef, rows[2].DocumentRef})
	assert.Equal(t, "120.5", rows[2].DueAmount.String())

	items := settlement.Normalize(rows)
	assert.True(t, items[1].IsRefund())

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
