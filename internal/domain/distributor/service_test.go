// internal/domain/distributor/service_test.go
package distributor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Location{}, &Store{}, &Distributor{}))

	notifier := notification.NewService(nil, "test", nil, nil)
	return NewService(db, notifier), db
}

func seedPlant(t *testing.T, db *gorm.DB) *Location {
	t.Helper()
	plant := &Location{Name: "Central Plant", Kind: LocationKindPlant}
	require.NoError(t, db.Create(plant).Error)
	return plant
}

func TestOnboardDistributor(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Onboard(&OnboardRequest{
		Name:        "Acme",
		ExecID:      "EX-1",
		CreditLimit: decimal.NewFromInt(-5),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	dist, err := svc.Onboard(&OnboardRequest{
		Name:        "Acme",
		ExecID:      "EX-1",
		CreditLimit: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)
	assert.True(t, dist.WalletBalance.IsZero())
	assert.True(t, dist.IsActive)

	// An unknown store assignment is rejected.
	missing := uint(99)
	_, err = svc.Onboard(&OnboardRequest{Name: "Beta", ExecID: "EX-2", StoreID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateStoreCreatesLocation(t *testing.T) {
	svc, db := newTestService(t)

	store, err := svc.CreateStore(&CreateStoreRequest{Name: "Downtown", Code: "DT-01"})
	require.NoError(t, err)
	require.NotZero(t, store.LocationID)

	var loc Location
	require.NoError(t, db.First(&loc, store.LocationID).Error)
	assert.Equal(t, LocationKindStore, loc.Kind)

	// Store codes are unique.
	_, err = svc.CreateStore(&CreateStoreRequest{Name: "Other", Code: "DT-01"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestResolveLocationID(t *testing.T) {
	svc, db := newTestService(t)
	plant := seedPlant(t, db)

	store, err := svc.CreateStore(&CreateStoreRequest{Name: "Downtown", Code: "DT-01"})
	require.NoError(t, err)

	attached, err := svc.Onboard(&OnboardRequest{Name: "Acme", ExecID: "EX-1", StoreID: &store.ID})
	require.NoError(t, err)

	locID, err := svc.ResolveLocationID(attached)
	require.NoError(t, err)
	assert.Equal(t, store.LocationID, locID)

	// Without a store the order draws from the plant.
	plain, err := svc.Onboard(&OnboardRequest{Name: "Beta", ExecID: "EX-2"})
	require.NoError(t, err)

	locID, err = svc.ResolveLocationID(plain)
	require.NoError(t, err)
	assert.Equal(t, plant.ID, locID)
}
