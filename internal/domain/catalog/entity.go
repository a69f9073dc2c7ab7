// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SKU represents a stock keeping unit. Price and tax are immutable from the
// engine's point of view; only explicit admin updates change them.
type SKU struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"not null;size:255" json:"name"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"tax_rate"` // Percent
	Classification string          `gorm:"size:50" json:"classification"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// PriceTier is a named distributor price group.
type PriceTier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []PriceTierItem `gorm:"foreignKey:TierID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// PriceTierItem overrides a SKU's unit price for one tier.
type PriceTierItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TierID    uint            `gorm:"not null;index:idx_tier_sku,unique" json:"tier_id"`
	SKUID     uint            `gorm:"column:sku_id;not null;index:idx_tier_sku,unique" json:"sku_id"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName overrides
func (SKU) TableName() string           { return "skus" }
func (PriceTier) TableName() string     { return "price_tiers" }
func (PriceTierItem) TableName() string { return "price_tier_items" }

// TaxMultiplier returns 1 + taxRate/100 for line-level tax computation.
func (s *SKU) TaxMultiplier() decimal.Decimal {
	return decimal.NewFromInt(1).Add(s.TaxRate.Div(decimal.NewFromInt(100)))
}
