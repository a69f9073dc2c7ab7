// internal/domain/catalog/service_test.go
package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&SKU{}, &PriceTier{}, &PriceTierItem{}))
	return NewService(db)
}

func TestCreateSKU(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateSKU(&CreateSKURequest{
		Name:      "Widget",
		UnitPrice: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	sku, err := svc.CreateSKU(&CreateSKURequest{
		Name:           "Widget",
		UnitPrice:      decimal.NewFromInt(100),
		TaxRate:        decimal.NewFromInt(18),
		Classification: "hardware",
	})
	require.NoError(t, err)
	assert.True(t, sku.IsActive)
	assert.True(t, sku.TaxMultiplier().Equal(decimal.RequireFromString("1.18")))
}

func TestResolveUnitPriceTierPrecedence(t *testing.T) {
	svc := newTestService(t)

	sku, err := svc.CreateSKU(&CreateSKURequest{
		Name:      "Widget",
		UnitPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	tier, err := svc.CreateTier("wholesale")
	require.NoError(t, err)

	// No tier: base price.
	price, err := svc.ResolveUnitPrice(nil, sku.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))

	// Tier without an override: base price.
	price, err = svc.ResolveUnitPrice(&tier.ID, sku.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))

	// Tier override takes precedence.
	_, err = svc.SetTierPrice(tier.ID, &SetTierPriceRequest{SKUID: sku.ID, UnitPrice: decimal.NewFromInt(85)})
	require.NoError(t, err)

	price, err = svc.ResolveUnitPrice(&tier.ID, sku.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(85)))
}

func TestSetTierPriceUpserts(t *testing.T) {
	svc := newTestService(t)

	sku, err := svc.CreateSKU(&CreateSKURequest{Name: "Widget", UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	tier, err := svc.CreateTier("wholesale")
	require.NoError(t, err)

	first, err := svc.SetTierPrice(tier.ID, &SetTierPriceRequest{SKUID: sku.ID, UnitPrice: decimal.NewFromInt(90)})
	require.NoError(t, err)

	second, err := svc.SetTierPrice(tier.ID, &SetTierPriceRequest{SKUID: sku.ID, UnitPrice: decimal.NewFromInt(80)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	loaded, err := svc.GetTier(tier.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(decimal.NewFromInt(80)))

	// Unknown tier or SKU is rejected.
	_, err = svc.SetTierPrice(999, &SetTierPriceRequest{SKUID: sku.ID, UnitPrice: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.SetTierPrice(tier.ID, &SetTierPriceRequest{SKUID: 999, UnitPrice: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateSKU(t *testing.T) {
	svc := newTestService(t)

	sku, err := svc.CreateSKU(&CreateSKURequest{Name: "Widget", UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)

	inactive := false
	newPrice := decimal.NewFromInt(120)
	_, err = svc.UpdateSKU(sku.ID, &UpdateSKURequest{UnitPrice: &newPrice, IsActive: &inactive})
	require.NoError(t, err)

	reloaded, err := svc.GetSKU(sku.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.UnitPrice.Equal(newPrice))
	assert.False(t, reloaded.IsActive)

	// Inactive SKUs drop out of the listing but remain fetchable.
	skus, err := svc.GetSKUs()
	require.NoError(t, err)
	assert.Empty(t, skus)

	_, err = svc.GetSKU(sku.ID)
	assert.NoError(t, err)
}

func TestMigratedColumnNames(t *testing.T) {
	svc := newTestService(t)

	// Tier price lookups query the column by name.
	assert.True(t, svc.db.Migrator().HasColumn(&PriceTierItem{}, "sku_id"))
}
