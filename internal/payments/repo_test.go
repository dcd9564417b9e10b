package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_item_id TEXT NOT NULL,
  retailer_id TEXT NOT NULL,
  retailer_name TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  supplier_name TEXT NOT NULL,
  amount TEXT NOT NULL,
  method TEXT NOT NULL,
  reference_number TEXT,
  status TEXT NOT NULL DEFAULT 'locked',
  lock_expires_at DATETIME NOT NULL,
  released_at DATETIME,
  dispute_reason TEXT,
  dispute_raised_at DATETIME,
  resolved_at DATETIME,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func createPayment(t *testing.T, db *gorm.DB, status enums.PaymentStatus, lockExpiresAt time.Time) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		ID:            uuid.New(),
		OrderItemID:   uuid.New(),
		RetailerID:    uuid.New(),
		RetailerName:  "Test Kirana",
		SupplierID:    uuid.New(),
		SupplierName:  "Test Supplier",
		Amount:        decimal.NewFromInt(1200),
		Method:        enums.PaymentMethodUPI,
		Status:        status,
		LockExpiresAt: lockExpiresAt,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestRepositoryListExpiredLocked(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	expired := createPayment(t, db, enums.PaymentStatusLocked, now.Add(-time.Hour))
	createPayment(t, db, enums.PaymentStatusLocked, now.Add(time.Hour))
	createPayment(t, db, enums.PaymentStatusReleased, now.Add(-time.Hour))

	list, err := repo.ListExpiredLocked(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expired.ID, list[0].ID)
}

func TestRepositoryReleaseIfLockedWinsOnce(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	payment := createPayment(t, db, enums.PaymentStatusLocked, now.Add(-time.Hour))

	won, err := repo.ReleaseIfLocked(context.Background(), payment.ID, now)
	require.NoError(t, err)
	assert.True(t, won)

	again, err := repo.ReleaseIfLocked(context.Background(), payment.ID, now)
	require.NoError(t, err)
	assert.False(t, again)

	reloaded, err := repo.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusReleased, reloaded.Status)
	require.NotNil(t, reloaded.ReleasedAt)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	mine := createPayment(t, db, enums.PaymentStatusLocked, now.Add(time.Hour))
	createPayment(t, db, enums.PaymentStatusLocked, now.Add(time.Hour))

	list, err := repo.List(context.Background(), ListFilters{RetailerID: &mine.RetailerID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	disputed := enums.PaymentStatusDisputed
	empty, err := repo.List(context.Background(), ListFilters{Status: &disputed})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
