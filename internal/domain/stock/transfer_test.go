// internal/domain/stock/transfer_test.go
package stock

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/catalog"
	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

type transferEnv struct {
	db       *gorm.DB
	stock    *Service
	engine   *TransferEngine
	plant    *distributor.Location
	store    *distributor.Store
	skuA     *catalog.SKU
	skuB     *catalog.SKU
}

func newTransferEnv(t *testing.T) *transferEnv {
	t.Helper()

	db := newTestDB(t)
	keyedLocker := locker.New()
	clk := clock.Fixed{Time: testTime}

	catalogSvc := catalog.NewService(db)
	notifier := notification.NewService(nil, "test", nil, clk)
	distSvc := distributor.NewService(db, notifier)
	stockSvc := NewService(db, keyedLocker, clk)
	engine := NewTransferEngine(db, stockSvc, catalogSvc, distSvc, keyedLocker, clk)

	plant := &distributor.Location{Name: "Central Plant", Kind: distributor.LocationKindPlant}
	require.NoError(t, db.Create(plant).Error)

	store, err := distSvc.CreateStore(&distributor.CreateStoreRequest{Name: "Downtown", Code: "DT-01"})
	require.NoError(t, err)

	skuA, err := catalogSvc.CreateSKU(&catalog.CreateSKURequest{Name: "Widget", UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	skuB, err := catalogSvc.CreateSKU(&catalog.CreateSKURequest{Name: "Gadget", UnitPrice: decimal.NewFromInt(40)})
	require.NoError(t, err)

	require.NoError(t, stockSvc.Restock(&RestockRequest{LocationID: plant.ID, SKUID: skuA.ID, Quantity: 50}, "ops"))
	require.NoError(t, stockSvc.Restock(&RestockRequest{LocationID: plant.ID, SKUID: skuB.ID, Quantity: 10}, "ops"))

	return &transferEnv{db: db, stock: stockSvc, engine: engine, plant: plant, store: store, skuA: skuA, skuB: skuB}
}

func TestCreateTransferReservesPlantStock(t *testing.T) {
	env := newTransferEnv(t)

	transfer, err := env.engine.CreateTransfer(&CreateTransferRequest{
		StoreID: env.store.ID,
		Items: []TransferItemRequest{
			{SKUID: env.skuA.ID, Quantity: 20},
			{SKUID: env.skuB.ID, Quantity: 5},
		},
	}, "ops")
	require.NoError(t, err)

	assert.Equal(t, TransferStatusPending, transfer.Status)
	assert.Equal(t, env.store.LocationID, transfer.DestinationLocationID)
	// 20*100 + 5*40, valued at SKU base prices
	assert.True(t, transfer.TotalValue.Equal(decimal.NewFromInt(2200)))

	itemA, err := env.stock.ItemFor(env.db, env.plant.ID, env.skuA.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, itemA.Quantity)
	assert.Equal(t, 20, itemA.Reserved)
}

func TestCreateTransferInsufficientPlantStock(t *testing.T) {
	env := newTransferEnv(t)

	_, err := env.engine.CreateTransfer(&CreateTransferRequest{
		StoreID: env.store.ID,
		Items: []TransferItemRequest{
			{SKUID: env.skuA.ID, Quantity: 20},
			{SKUID: env.skuB.ID, Quantity: 11},
		},
	}, "ops")
	var stockErr *apperrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, env.skuB.ID, stockErr.SKUID)

	// All-or-nothing: the first line's reservation did not survive.
	itemA, err := env.stock.ItemFor(env.db, env.plant.ID, env.skuA.ID)
	require.NoError(t, err)
	assert.Zero(t, itemA.Reserved)

	transfers, err := env.engine.ListTransfers()
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestMarkTransferDelivered(t *testing.T) {
	env := newTransferEnv(t)

	transfer, err := env.engine.CreateTransfer(&CreateTransferRequest{
		StoreID: env.store.ID,
		Items:   []TransferItemRequest{{SKUID: env.skuA.ID, Quantity: 20}},
	}, "ops")
	require.NoError(t, err)

	require.NoError(t, env.engine.MarkDelivered(transfer.ID, "ops"))

	src, err := env.stock.ItemFor(env.db, env.plant.ID, env.skuA.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, src.Quantity)
	assert.Zero(t, src.Reserved)

	dst, err := env.stock.ItemFor(env.db, env.store.LocationID, env.skuA.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, dst.Quantity)
	assert.Zero(t, dst.Reserved)

	// Paired ledger entries share one event timestamp.
	outEntries, err := env.stock.Ledger(env.plant.ID, env.skuA.ID)
	require.NoError(t, err)
	out := outEntries[len(outEntries)-1]
	assert.Equal(t, MovementTransferOut, out.MovementType)
	assert.Equal(t, -20, out.QuantityChange)

	inEntries, err := env.stock.Ledger(env.store.LocationID, env.skuA.ID)
	require.NoError(t, err)
	in := inEntries[len(inEntries)-1]
	assert.Equal(t, MovementTransferIn, in.MovementType)
	assert.Equal(t, 20, in.QuantityChange)
	assert.True(t, out.Date.Equal(in.Date))

	reloaded, err := env.engine.GetTransfer(transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, TransferStatusDelivered, reloaded.Status)
	require.NotNil(t, reloaded.DeliveredDate)

	// Delivery is idempotent.
	require.NoError(t, env.engine.MarkDelivered(transfer.ID, "ops"))
	again, err := env.stock.ItemFor(env.db, env.store.LocationID, env.skuA.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, again.Quantity)
}
