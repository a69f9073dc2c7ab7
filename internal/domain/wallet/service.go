// internal/domain/wallet/service.go
package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

// Service owns wallet transactions and the cached balances on distributor
// and store rows. Engine operations append through the caller's transaction;
// Recharge is the one standalone mutation and takes its own lock.
type Service struct {
	db       *gorm.DB
	locker   *locker.KeyedLocker
	notifier *notification.Service
	clock    clock.Clock
}

// NewService creates a new wallet service
func NewService(db *gorm.DB, l *locker.KeyedLocker, notifier *notification.Service, clk clock.Clock) *Service {
	return &Service{db: db, locker: l, notifier: notifier, clock: clk}
}

// LockKey returns the locker key for one wallet account.
func LockKey(accountType AccountType, accountID uint) string {
	return fmt.Sprintf("wallet/%s/%d", accountType, accountID)
}

// Balance reads the cached balance of an account.
func (s *Service) Balance(tx *gorm.DB, accountType AccountType, accountID uint) (decimal.Decimal, error) {
	switch accountType {
	case AccountDistributor:
		var dist distributor.Distributor
		if err := tx.Select("wallet_balance").First(&dist, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, fmt.Errorf("distributor %d: %w", accountID, apperrors.ErrNotFound)
			}
			return decimal.Zero, fmt.Errorf("failed to read wallet balance: %w", err)
		}
		return dist.WalletBalance, nil
	case AccountStore:
		var store distributor.Store
		if err := tx.Select("wallet_balance").First(&store, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, fmt.Errorf("store %d: %w", accountID, apperrors.ErrNotFound)
			}
			return decimal.Zero, fmt.Errorf("failed to read wallet balance: %w", err)
		}
		return store.WalletBalance, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, accountType)
	}
}

// CachedBalance reads the cached balance outside any engine transaction.
func (s *Service) CachedBalance(accountType AccountType, accountID uint) (decimal.Decimal, error) {
	return s.Balance(s.db, accountType, accountID)
}

// Append writes one transaction and moves the cached balance. amount is
// signed: debits are negative.
func (s *Service) Append(tx *gorm.DB, accountType AccountType, accountID uint, txType TransactionType, amount decimal.Decimal, orderID *uint, actor string) (*Transaction, error) {
	balance, err := s.Balance(tx, accountType, accountID)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(amount)
	txn := &Transaction{
		AccountType:  accountType,
		AccountID:    accountID,
		Date:         s.clock.Now(),
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		OrderID:      orderID,
		Actor:        actor,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, fmt.Errorf("failed to append wallet transaction: %w", err)
	}

	if err := s.writeBalance(tx, accountType, accountID, newBalance); err != nil {
		return nil, err
	}

	return txn, nil
}

// AdjustOrderPayment edits the amount of the order's OrderPayment
// transaction in place, then replays the whole ledger so every subsequent
// BalanceAfter and the cached balance are consistent again.
func (s *Service) AdjustOrderPayment(tx *gorm.DB, accountType AccountType, accountID, orderID uint, newAmount decimal.Decimal) error {
	var txn Transaction
	err := tx.Where("account_type = ? AND account_id = ? AND order_id = ? AND type = ?",
		accountType, accountID, orderID, TypeOrderPayment).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order payment for order %d: %w", orderID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to find order payment: %w", err)
	}

	if err := tx.Model(&txn).Update("amount", newAmount).Error; err != nil {
		return fmt.Errorf("failed to adjust order payment: %w", err)
	}

	return s.Replay(tx, accountType, accountID)
}

// Replay recomputes every BalanceAfter chronologically from zero and writes
// the resulting balance back to the account row.
func (s *Service) Replay(tx *gorm.DB, accountType AccountType, accountID uint) error {
	var txns []Transaction
	err := tx.Where("account_type = ? AND account_id = ?", accountType, accountID).
		Order("id").Find(&txns).Error
	if err != nil {
		return fmt.Errorf("failed to load wallet transactions: %w", err)
	}

	balance := decimal.Zero
	for i := range txns {
		balance = balance.Add(txns[i].Amount)
		if !txns[i].BalanceAfter.Equal(balance) {
			if err := tx.Model(&txns[i]).Update("balance_after", balance).Error; err != nil {
				return fmt.Errorf("failed to rewrite balance after: %w", err)
			}
		}
	}

	return s.writeBalance(tx, accountType, accountID, balance)
}

// ReplayBalance derives an account's balance from its full transaction
// history without touching any state. Test hook and reconciliation check.
func (s *Service) ReplayBalance(accountType AccountType, accountID uint) (decimal.Decimal, error) {
	var txns []Transaction
	err := s.db.Where("account_type = ? AND account_id = ?", accountType, accountID).
		Order("id").Find(&txns).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load wallet transactions: %w", err)
	}

	balance := decimal.Zero
	for _, txn := range txns {
		balance = balance.Add(txn.Amount)
	}
	return balance, nil
}

// Statement lists an account's transactions in chronological order.
func (s *Service) Statement(accountType AccountType, accountID uint) ([]Transaction, error) {
	var txns []Transaction
	err := s.db.Where("account_type = ? AND account_id = ?", accountType, accountID).
		Order("id").Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wallet statement: %w", err)
	}
	return txns, nil
}

// RechargeRequest represents a wallet top-up
type RechargeRequest struct {
	AccountType AccountType     `json:"account_type" binding:"required"`
	AccountID   uint            `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// Recharge tops up an account. Replenishing a zero or negative balance emits
// a notification.
func (s *Service) Recharge(req *RechargeRequest, actor string) (*Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: recharge amount must be positive", apperrors.ErrValidation)
	}

	release := s.locker.Acquire(LockKey(req.AccountType, req.AccountID))
	defer release()

	var txn *Transaction
	var priorBalance decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		priorBalance, err = s.Balance(tx, req.AccountType, req.AccountID)
		if err != nil {
			return err
		}
		txn, err = s.Append(tx, req.AccountType, req.AccountID, TypeRecharge, req.Amount, nil, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if priorBalance.LessThanOrEqual(decimal.Zero) {
		s.notifier.Notify(notification.TypeWalletReplenished,
			fmt.Sprintf("%s %d wallet replenished with %s", req.AccountType, req.AccountID, req.Amount.StringFixed(2)))
	}

	return txn, nil
}

func (s *Service) writeBalance(tx *gorm.DB, accountType AccountType, accountID uint, balance decimal.Decimal) error {
	var err error
	switch accountType {
	case AccountDistributor:
		err = tx.Model(&distributor.Distributor{}).Where("id = ?", accountID).
			Update("wallet_balance", balance).Error
	case AccountStore:
		err = tx.Model(&distributor.Store{}).Where("id = ?", accountID).
			Update("wallet_balance", balance).Error
	default:
		return fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, accountType)
	}
	if err != nil {
		return fmt.Errorf("failed to write wallet balance: %w", err)
	}
	return nil
}
