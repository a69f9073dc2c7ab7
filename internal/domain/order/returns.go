// internal/domain/order/returns.go
package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/stock"
	"github.com/your-org/distribution-backend/internal/domain/wallet"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
)

// ReturnEngine reverses a subset of a delivered or pending order's effects.
// Initiation only records intent; confirmation restores stock and credits
// the wallet with the amount computed at initiation.
type ReturnEngine struct {
	db     *gorm.DB
	orders *Service
	stock  *stock.Service
	wallet *wallet.Service
	locker *locker.KeyedLocker
	clock  clock.Clock
}

// NewReturnEngine creates a new return engine
func NewReturnEngine(db *gorm.DB, orders *Service, stockSvc *stock.Service, walletSvc *wallet.Service, l *locker.KeyedLocker, clk clock.Clock) *ReturnEngine {
	return &ReturnEngine{
		db:     db,
		orders: orders,
		stock:  stockSvc,
		wallet: walletSvc,
		locker: l,
		clock:  clk,
	}
}

// ReturnLineRequest is one requested return line
type ReturnLineRequest struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// InitiateReturnRequest represents return initiation data
type InitiateReturnRequest struct {
	OrderID uint                `json:"order_id" binding:"required"`
	Lines   []ReturnLineRequest `json:"lines" binding:"required"`
	Remarks string              `json:"remarks"`
}

// InitiateReturn validates the requested lines against the order's
// returnable quantities and creates a pending return. Credit mirrors the
// order's per-line tax computation. Stock and wallet stay untouched.
func (e *ReturnEngine) InitiateReturn(req *InitiateReturnRequest, actor string) (*Return, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: return requires at least one line", apperrors.ErrValidation)
	}

	ord, err := e.orders.GetOrder(req.OrderID)
	if err != nil {
		return nil, err
	}

	credit := decimal.Zero
	lines := make([]ReturnLine, 0, len(req.Lines))
	for _, reqLine := range req.Lines {
		if reqLine.Quantity <= 0 {
			return nil, fmt.Errorf("%w: return quantity must be positive", apperrors.ErrValidation)
		}

		orderLine := findReturnableLine(ord.Items, reqLine.SKUID)
		if orderLine == nil {
			return nil, fmt.Errorf("no returnable line for SKU %d on order %d: %w",
				reqLine.SKUID, ord.ID, apperrors.ErrNotFound)
		}
		if reqLine.Quantity > orderLine.Returnable() {
			return nil, fmt.Errorf("SKU %d: requested %d, returnable %d: %w",
				reqLine.SKUID, reqLine.Quantity, orderLine.Returnable(), apperrors.ErrExceedsReturnable)
		}

		multiplier := decimal.NewFromInt(1).Add(orderLine.TaxRate.Div(decimal.NewFromInt(100)))
		credit = credit.Add(orderLine.UnitPrice.
			Mul(decimal.NewFromInt(int64(reqLine.Quantity))).
			Mul(multiplier))

		lines = append(lines, ReturnLine{
			SKUID:     reqLine.SKUID,
			Quantity:  reqLine.Quantity,
			UnitPrice: orderLine.UnitPrice,
			TaxRate:   orderLine.TaxRate,
		})
	}

	ret := &Return{
		OrderID:       ord.ID,
		DistributorID: ord.DistributorID,
		Status:        ReturnStatusPending,
		InitiatedBy:   actor,
		InitiatedDate: e.clock.Now(),
		CreditAmount:  credit,
		Remarks:       req.Remarks,
		Items:         lines,
	}
	if err := e.db.Create(ret).Error; err != nil {
		return nil, fmt.Errorf("failed to create return: %w", err)
	}

	return ret, nil
}

// ConfirmReturn applies a pending return: order lines accrue returned
// quantity, physical stock comes back at the order's location (reserved is
// untouched, returned stock was never reserved), and the wallet is credited
// the precomputed amount. One-way; a second confirmation fails.
func (e *ReturnEngine) ConfirmReturn(returnID uint, actor string) (*Return, error) {
	ret, err := e.GetReturn(returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != ReturnStatusPending {
		return nil, fmt.Errorf("return %d is %s: %w", returnID, ret.Status, apperrors.ErrAlreadyProcessed)
	}

	ord, err := e.orders.GetOrder(ret.OrderID)
	if err != nil {
		return nil, err
	}

	keys := []string{wallet.LockKey(wallet.AccountDistributor, ret.DistributorID)}
	for _, line := range ret.Items {
		keys = append(keys, stock.LockKey(ord.LocationID, line.SKUID))
	}
	release := e.locker.Acquire(keys...)
	defer release()

	confirmedAt := e.clock.Now()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		// Status can have moved between the read and the lock.
		var current Return
		if err := tx.First(&current, returnID).Error; err != nil {
			return fmt.Errorf("failed to reload return: %w", err)
		}
		if current.Status != ReturnStatusPending {
			return fmt.Errorf("return %d is %s: %w", returnID, current.Status, apperrors.ErrAlreadyProcessed)
		}

		// Returnable quantities may have shrunk since initiation; revalidate
		// against the lines as they stand now.
		var orderLines []LineItem
		if err := tx.Where("order_id = ?", ord.ID).Find(&orderLines).Error; err != nil {
			return fmt.Errorf("failed to reload order lines: %w", err)
		}

		for _, line := range ret.Items {
			orderLine := findReturnableLine(orderLines, line.SKUID)
			if orderLine == nil {
				return fmt.Errorf("no returnable line for SKU %d on order %d: %w",
					line.SKUID, ord.ID, apperrors.ErrNotFound)
			}
			if line.Quantity > orderLine.Returnable() {
				return fmt.Errorf("SKU %d: requested %d, returnable %d: %w",
					line.SKUID, line.Quantity, orderLine.Returnable(), apperrors.ErrExceedsReturnable)
			}
			if err := tx.Model(&LineItem{}).Where("id = ?", orderLine.ID).
				Update("returned_quantity", gorm.Expr("returned_quantity + ?", line.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to update returned quantity: %w", err)
			}

			if err := e.stock.AddStock(tx, ord.LocationID, line.SKUID, line.Quantity,
				stock.MovementReturn, actor, fmt.Sprintf("return %d for order %d", returnID, ord.ID)); err != nil {
				return err
			}
		}

		refID := ord.ID
		if _, err := e.wallet.Append(tx, wallet.AccountDistributor, ret.DistributorID,
			wallet.TypeReturnCredit, ret.CreditAmount, &refID, actor); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":         ReturnStatusConfirmed,
			"confirmed_by":   actor,
			"confirmed_date": confirmedAt,
		}
		if err := tx.Model(&Return{}).Where("id = ?", returnID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to confirm return: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e.GetReturn(returnID)
}

// GetReturn retrieves a return with its lines
func (e *ReturnEngine) GetReturn(id uint) (*Return, error) {
	var ret Return
	if err := e.db.Preload("Items").First(&ret, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("return %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve return: %w", err)
	}
	return &ret, nil
}

// ListReturns retrieves returns, optionally filtered by order
func (e *ReturnEngine) ListReturns(orderID *uint) ([]Return, error) {
	query := e.db.Preload("Items").Order("id DESC")
	if orderID != nil {
		query = query.Where("order_id = ?", *orderID)
	}

	var returns []Return
	if err := query.Find(&returns).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve returns: %w", err)
	}
	return returns, nil
}

// findReturnableLine locates the non-freebie order line for a SKU. Freebie
// lines are never returnable.
func findReturnableLine(items []LineItem, skuID uint) *LineItem {
	for i := range items {
		if items[i].SKUID == skuID && !items[i].IsFreebie {
			return &items[i]
		}
	}
	return nil
}
