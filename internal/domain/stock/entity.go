// internal/domain/stock/entity.go
package stock

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType classifies stock ledger entries. Reservation movements do not
// change physical quantity and carry a zero QuantityChange.
type MovementType string

const (
	MovementReserved    MovementType = "reserved"
	MovementUnreserved  MovementType = "unreserved"
	MovementSale        MovementType = "sale"
	MovementReturn      MovementType = "return"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementInbound     MovementType = "inbound"
	MovementAdjustment  MovementType = "adjustment"
)

// TransferStatus represents the stock transfer lifecycle
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusDelivered TransferStatus = "delivered"
)

// StockItem tracks physical and reserved quantity for one SKU at one
// location. Quantity and Reserved are caches derivable by replaying the
// ledger; 0 <= Reserved <= Quantity must hold after every committed
// operation.
type StockItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LocationID uint      `gorm:"not null;index:idx_location_sku,unique" json:"location_id"`
	SKUID      uint      `gorm:"column:sku_id;not null;index:idx_location_sku,unique" json:"sku_id"`
	Quantity   int       `gorm:"not null;default:0" json:"quantity"`
	Reserved   int       `gorm:"not null;default:0" json:"reserved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Available is the only quantity offered to new commitments.
func (si *StockItem) Available() int {
	return si.Quantity - si.Reserved
}

// LedgerEntry is an append-only stock movement record. Immutable once
// written; the source of truth for audit.
type LedgerEntry struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Date           time.Time    `gorm:"not null;index" json:"date"`
	SKUID          uint         `gorm:"column:sku_id;not null;index:idx_ledger_location_sku" json:"sku_id"`
	LocationID     uint         `gorm:"not null;index:idx_ledger_location_sku" json:"location_id"`
	QuantityChange int          `gorm:"not null" json:"quantity_change"`
	BalanceAfter   int          `gorm:"not null" json:"balance_after"`
	MovementType   MovementType `gorm:"not null;size:20" json:"movement_type"`
	Actor          string       `gorm:"size:100" json:"actor"`
	Notes          string       `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Transfer is a plant-to-store stock dispatch. It mirrors the order
// reserve/finalize lifecycle but moves stock instead of money.
type Transfer struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	DestinationLocationID uint            `gorm:"not null;index" json:"destination_location_id"`
	Status                TransferStatus  `gorm:"not null;default:'pending'" json:"status"`
	TotalValue            decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"total_value"`
	CreatedBy             string          `gorm:"size:100" json:"created_by"`
	DeliveredDate         *time.Time      `json:"delivered_date"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []TransferItem `gorm:"foreignKey:TransferID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// TransferItem is one SKU line of a transfer.
type TransferItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TransferID uint            `gorm:"not null;index" json:"transfer_id"`
	SKUID      uint            `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitValue  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_value"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName overrides
func (StockItem) TableName() string    { return "stock_items" }
func (LedgerEntry) TableName() string  { return "stock_ledger_entries" }
func (Transfer) TableName() string     { return "stock_transfers" }
func (TransferItem) TableName() string { return "stock_transfer_items" }
