// internal/domain/scheme/entity.go
package scheme

import (
	"time"

	"gorm.io/gorm"
)

// Scope controls which distributors a scheme applies to.
type Scope string

const (
	ScopeGlobal      Scope = "global"
	ScopeStore       Scope = "store"
	ScopeDistributor Scope = "distributor"
)

// Scheme is a buy-X-get-Y promotional rule. Stopping a scheme sets EndDate
// to the stop time and records who stopped it; reactivation clears the stop
// markers and sets a new end date.
type Scheme struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	BuySKUID      uint           `gorm:"column:buy_sku_id;not null;index" json:"buy_sku_id"`
	BuyQty        int            `gorm:"not null" json:"buy_qty"`
	GetSKUID      uint           `gorm:"column:get_sku_id;not null" json:"get_sku_id"`
	GetQty        int            `gorm:"not null" json:"get_qty"`
	StartDate     time.Time      `gorm:"not null" json:"start_date"`
	EndDate       time.Time      `gorm:"not null" json:"end_date"`
	Scope         Scope          `gorm:"not null;size:20;index" json:"scope"`
	StoreID       *uint          `gorm:"index" json:"store_id"`       // Set for store scope
	DistributorID *uint          `gorm:"index" json:"distributor_id"` // Set for distributor scope
	StoppedBy     *string        `gorm:"size:100" json:"stopped_by"`
	StoppedAt     *time.Time     `json:"stopped_at"`
	CreatedBy     string         `gorm:"size:100" json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Scheme) TableName() string { return "schemes" }

// IsActive reports whether the scheme applies as of the given date.
func (s *Scheme) IsActive(asOf time.Time) bool {
	if s.StoppedAt != nil {
		return false
	}
	return !asOf.Before(s.StartDate) && !asOf.After(s.EndDate)
}

// IsStopped reports whether the scheme was administratively stopped.
func (s *Scheme) IsStopped() bool {
	return s.StoppedAt != nil
}
