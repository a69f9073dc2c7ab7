// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status represents the order lifecycle
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

// ReturnStatus represents the return lifecycle. Confirmed is terminal.
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusConfirmed ReturnStatus = "confirmed"
)

// Order represents a distributor order. TotalAmount is tax-inclusive, summed
// per line. LocationID is the stock location the order draws from, resolved
// at placement.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DistributorID uint            `gorm:"not null;index" json:"distributor_id"`
	LocationID    uint            `gorm:"not null;index" json:"location_id"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"total_amount"`
	Status        Status          `gorm:"not null;default:'pending'" json:"status"`
	PlacedBy      string          `gorm:"not null;size:100" json:"placed_by"`
	DeliveredDate *time.Time      `json:"delivered_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []LineItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// LineItem is one SKU line of an order. Freebie lines carry a zero unit
// price and are never returnable; ReturnedQuantity never exceeds Quantity.
type LineItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"not null;index" json:"order_id"`
	SKUID            uint            `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"tax_rate"` // Percent
	IsFreebie        bool            `gorm:"not null;default:false" json:"is_freebie"`
	ReturnedQuantity int             `gorm:"not null;default:0" json:"returned_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineTotal is qty * unitPrice * (1 + taxRate/100); zero for freebie lines.
func (li *LineItem) LineTotal() decimal.Decimal {
	if li.IsFreebie {
		return decimal.Zero
	}
	multiplier := decimal.NewFromInt(1).Add(li.TaxRate.Div(decimal.NewFromInt(100)))
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity))).Mul(multiplier)
}

// Returnable is the quantity still open for return on this line.
func (li *LineItem) Returnable() int {
	if li.IsFreebie {
		return 0
	}
	return li.Quantity - li.ReturnedQuantity
}

// Return represents a reversal of part of an order's effects. Confirmation
// restores stock and credits the wallet; the transition is one-way.
type Return struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	DistributorID uint            `gorm:"not null;index" json:"distributor_id"`
	Status        ReturnStatus    `gorm:"not null;default:'pending'" json:"status"`
	InitiatedBy   string          `gorm:"not null;size:100" json:"initiated_by"`
	InitiatedDate time.Time       `gorm:"not null" json:"initiated_date"`
	ConfirmedBy   *string         `gorm:"size:100" json:"confirmed_by"`
	ConfirmedDate *time.Time      `json:"confirmed_date"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"credit_amount"`
	Remarks       string          `gorm:"type:text" json:"remarks"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Items []ReturnLine `gorm:"foreignKey:ReturnID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// ReturnLine is one returned SKU line, priced as it was on the order.
type ReturnLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ReturnID  uint            `gorm:"not null;index" json:"return_id"`
	SKUID     uint            `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"unit_price"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"tax_rate"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string      { return "orders" }
func (LineItem) TableName() string   { return "order_line_items" }
func (Return) TableName() string     { return "order_returns" }
func (ReturnLine) TableName() string { return "order_return_lines" }
