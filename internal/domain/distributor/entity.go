// internal/domain/distributor/entity.go
package distributor

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LocationKind distinguishes the central plant from store locations.
type LocationKind string

const (
	LocationKindPlant LocationKind = "plant"
	LocationKindStore LocationKind = "store"
)

// Location is the unit at which stock is tracked: the central plant or a
// specific store.
type Location struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;size:100" json:"name"`
	Kind      LocationKind `gorm:"not null;size:20;index" json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Store is a retail outlet with its own stock location and wallet.
type Store struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null;size:100" json:"name"`
	Code          string          `gorm:"uniqueIndex;not null;size:20" json:"code"`
	LocationID    uint            `gorm:"not null;index" json:"location_id"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"wallet_balance"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Location Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// Distributor represents an onboarded distributor. WalletBalance is a cache
// of the running sum of the account's wallet transactions.
type Distributor struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null;size:255" json:"name"`
	ExecID        string          `gorm:"not null;size:100;index" json:"exec_id"`
	StoreID       *uint           `gorm:"index" json:"store_id"`
	TierID        *uint           `gorm:"index" json:"tier_id"`
	SpecialScheme bool            `gorm:"default:false" json:"special_scheme"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"wallet_balance"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"credit_limit"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Store *Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

// TableName overrides
func (Location) TableName() string    { return "locations" }
func (Store) TableName() string       { return "stores" }
func (Distributor) TableName() string { return "distributors" }
