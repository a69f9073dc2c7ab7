// internal/domain/scheme/service_test.go
package scheme

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Scheme{}))

	notifier := notification.NewService(nil, "test", nil, clock.Fixed{Time: now})
	return NewService(db, notifier, clock.Fixed{Time: now})
}

func validCreateRequest() *CreateSchemeRequest {
	return &CreateSchemeRequest{
		BuySKUID:  10,
		BuyQty:    100,
		GetSKUID:  20,
		GetQty:    10,
		StartDate: schemeStart,
		EndDate:   schemeEnd,
		Scope:     ScopeGlobal,
	}
}

func TestCreateSchemeValidation(t *testing.T) {
	svc := newTestService(t, evalDate)

	req := validCreateRequest()
	req.BuyQty = 0
	_, err := svc.Create(req, "admin@test")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req = validCreateRequest()
	req.GetQty = 0
	_, err = svc.Create(req, "admin@test")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req = validCreateRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)
	_, err = svc.Create(req, "admin@test")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req = validCreateRequest()
	req.Scope = ScopeStore
	_, err = svc.Create(req, "admin@test")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req = validCreateRequest()
	sc, err := svc.Create(req, "admin@test")
	require.NoError(t, err)
	assert.Equal(t, "admin@test", sc.CreatedBy)
	assert.True(t, sc.IsActive(evalDate))
}

func TestStopScheme(t *testing.T) {
	svc := newTestService(t, evalDate)

	sc, err := svc.Create(validCreateRequest(), "admin@test")
	require.NoError(t, err)

	stopped, err := svc.Stop(sc.ID, "ops@test")
	require.NoError(t, err)
	assert.True(t, stopped.IsStopped())
	require.NotNil(t, stopped.StoppedBy)
	assert.Equal(t, "ops@test", *stopped.StoppedBy)
	assert.True(t, stopped.EndDate.Equal(evalDate))
	assert.False(t, stopped.IsActive(evalDate))

	// Stopping twice is rejected.
	_, err = svc.Stop(sc.ID, "ops@test")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestReactivateScheme(t *testing.T) {
	svc := newTestService(t, evalDate)

	sc, err := svc.Create(validCreateRequest(), "admin@test")
	require.NoError(t, err)
	_, err = svc.Stop(sc.ID, "ops@test")
	require.NoError(t, err)

	// Past end dates are rejected.
	_, err = svc.Reactivate(sc.ID, evalDate.AddDate(0, -1, 0), "admin@test")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	newEnd := evalDate.AddDate(0, 3, 0)
	reactivated, err := svc.Reactivate(sc.ID, newEnd, "admin@test")
	require.NoError(t, err)
	assert.False(t, reactivated.IsStopped())
	assert.Nil(t, reactivated.StoppedBy)
	assert.True(t, reactivated.EndDate.Equal(newEnd))
	assert.True(t, reactivated.IsActive(evalDate))

	// The cleared markers survive a reload.
	fresh, err := svc.Get(sc.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.StoppedAt)
}

func TestMigratedColumnNames(t *testing.T) {
	svc := newTestService(t, schemeStart)

	assert.True(t, svc.db.Migrator().HasColumn(&Scheme{}, "buy_sku_id"))
	assert.True(t, svc.db.Migrator().HasColumn(&Scheme{}, "get_sku_id"))
}
