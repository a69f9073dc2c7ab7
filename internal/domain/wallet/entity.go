// internal/domain/wallet/entity.go
package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes the two wallet-holding account kinds. A
// transaction belongs to a distributor or a store, never both.
type AccountType string

const (
	AccountDistributor AccountType = "distributor"
	AccountStore       AccountType = "store"
)

// TransactionType classifies wallet transactions.
type TransactionType string

const (
	TypeRecharge        TransactionType = "recharge"
	TypeOrderPayment    TransactionType = "order_payment"
	TypeOrderRefund     TransactionType = "order_refund"
	TypeReturnCredit    TransactionType = "return_credit"
	TypeTransferPayment TransactionType = "transfer_payment"
)

// Transaction is an append-only wallet movement. Amount is signed; the
// account's cached balance equals the running sum of its transactions in
// chronological order. The only sanctioned in-place edit is adjusting an
// order's payment when its line items are edited, followed by a full replay.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	AccountType  AccountType     `gorm:"not null;size:20;index:idx_wallet_account" json:"account_type"`
	AccountID    uint            `gorm:"not null;index:idx_wallet_account" json:"account_id"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	Type         TransactionType `gorm:"not null;size:30" json:"type"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"balance_after"`
	OrderID      *uint           `gorm:"index" json:"order_id"`
	Actor        string          `gorm:"size:100" json:"actor"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName overrides
func (Transaction) TableName() string { return "wallet_transactions" }
