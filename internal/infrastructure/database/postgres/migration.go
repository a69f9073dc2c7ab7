// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/catalog"
	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/domain/identity"
	"github.com/your-org/distribution-backend/internal/domain/order"
	"github.com/your-org/distribution-backend/internal/domain/scheme"
	"github.com/your-org/distribution-backend/internal/domain/stock"
	"github.com/your-org/distribution-backend/internal/domain/wallet"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Identity
		&identity.ExecUser{},

		// Catalog
		&catalog.SKU{},
		&catalog.PriceTier{},
		&catalog.PriceTierItem{},

		// Distributors and locations
		&distributor.Location{},
		&distributor.Store{},
		&distributor.Distributor{},

		// Schemes
		&scheme.Scheme{},

		// Stock
		&stock.StockItem{},
		&stock.LedgerEntry{},
		&stock.Transfer{},
		&stock.TransferItem{},

		// Wallet
		&wallet.Transaction{},

		// Orders and returns
		&order.Order{},
		&order.LineItem{},
		&order.Return{},
		&order.ReturnLine{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for hot query paths
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Stock ledger is read per (location, sku) in chronological order
		"CREATE INDEX IF NOT EXISTS idx_stock_ledger_location_sku ON stock_ledger_entries(location_id, sku_id, id)",

		// Wallet statements are read per account in chronological order
		"CREATE INDEX IF NOT EXISTS idx_wallet_txns_account ON wallet_transactions(account_type, account_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_wallet_txns_order ON wallet_transactions(order_id)",

		// Order listings filter by distributor and status
		"CREATE INDEX IF NOT EXISTS idx_orders_distributor_status ON orders(distributor_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Scheme evaluation scans active schemes by window
		"CREATE INDEX IF NOT EXISTS idx_schemes_dates ON schemes(start_date, end_date)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("Created %d indexes (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts the plant location and a default admin account
func (m *Migration) SeedInitialData() error {
	log.Println("Seeding initial data...")

	if err := m.seedPlantLocation(); err != nil {
		return fmt.Errorf("failed to seed plant location: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("Initial data seeded")
	return nil
}

// seedPlantLocation ensures the single central plant location exists
func (m *Migration) seedPlantLocation() error {
	var count int64
	if err := m.db.Model(&distributor.Location{}).
		Where("kind = ?", distributor.LocationKindPlant).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plant := &distributor.Location{
		Name: "Central Plant",
		Kind: distributor.LocationKindPlant,
	}
	return m.db.Create(plant).Error
}

// seedAdminUser creates a development admin account if none exists
func (m *Migration) seedAdminUser() error {
	var count int64
	if err := m.db.Model(&identity.ExecUser{}).
		Where("role = ?", identity.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Admin#2024!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &identity.ExecUser{
		Email:    "admin@example.com",
		Password: string(hashed),
		Name:     "Default Admin",
		Role:     identity.RoleAdmin,
		IsActive: true,
	}
	return m.db.Create(admin).Error
}
