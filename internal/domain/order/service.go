// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/catalog"
	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/domain/scheme"
	"github.com/your-org/distribution-backend/internal/domain/stock"
	"github.com/your-org/distribution-backend/internal/domain/wallet"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

// Service is the order engine. It orchestrates pricing, scheme application,
// fund and stock checks, and the coordinated commit across the stock and
// wallet ledgers. Every operation validates fully before mutating anything:
// the engine computes, then commits, and never partially applies.
type Service struct {
	db           *gorm.DB
	catalog      *catalog.Service
	schemes      *scheme.Service
	stock        *stock.Service
	wallet       *wallet.Service
	distributors *distributor.Service
	locker       *locker.KeyedLocker
	notifier     *notification.Service
	clock        clock.Clock
}

// NewService creates a new order service
func NewService(db *gorm.DB, catalogSvc *catalog.Service, schemeSvc *scheme.Service, stockSvc *stock.Service, walletSvc *wallet.Service, distSvc *distributor.Service, l *locker.KeyedLocker, notifier *notification.Service, clk clock.Clock) *Service {
	return &Service{
		db:           db,
		catalog:      catalogSvc,
		schemes:      schemeSvc,
		stock:        stockSvc,
		wallet:       walletSvc,
		distributors: distSvc,
		locker:       l,
		notifier:     notifier,
		clock:        clk,
	}
}

// BasketLine is one requested SKU with its paid quantity
type BasketLine struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// PlaceOrderRequest represents order placement data
type PlaceOrderRequest struct {
	DistributorID uint         `json:"distributor_id" binding:"required"`
	Basket        []BasketLine `json:"basket" binding:"required"`
}

// pricedBasket is the computed shape of an order before commit.
type pricedBasket struct {
	lines   []LineItem // Paid lines first, then freebie lines
	total   decimal.Decimal
	perSKU  map[uint]int // Combined paid+freebie quantity per SKU
	paidQty map[uint]int
}

// PlaceOrder prices the basket, applies schemes, validates funds and stock,
// and commits the order, stock reservations and wallet debit atomically.
// Nothing is observable from a failed call.
func (s *Service) PlaceOrder(req *PlaceOrderRequest, actor string) (*Order, error) {
	if len(req.Basket) == 0 {
		return nil, fmt.Errorf("%w: basket is empty", apperrors.ErrValidation)
	}
	for _, line := range req.Basket {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", apperrors.ErrValidation)
		}
	}

	dist, err := s.distributors.Get(req.DistributorID)
	if err != nil {
		return nil, err
	}
	locationID, err := s.distributors.ResolveLocationID(dist)
	if err != nil {
		return nil, err
	}

	basket, err := s.priceBasket(dist, req.Basket)
	if err != nil {
		return nil, err
	}

	release := s.locker.Acquire(s.lockKeys(dist, locationID, basket.perSKU)...)
	defer release()

	var placed *Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkFunds(tx, dist, basket.total, decimal.Zero); err != nil {
			return err
		}
		if err := s.checkStock(tx, locationID, basket.perSKU); err != nil {
			return err
		}

		placed = &Order{
			DistributorID: dist.ID,
			LocationID:    locationID,
			Date:          s.clock.Now(),
			TotalAmount:   basket.total,
			Status:        StatusPending,
			PlacedBy:      actor,
			Items:         basket.lines,
		}
		if err := tx.Create(placed).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range placed.Items {
			if err := s.stock.Reserve(tx, locationID, line.SKUID, line.Quantity, actor,
				fmt.Sprintf("order %d", placed.ID)); err != nil {
				return err
			}
		}

		orderID := placed.ID
		if _, err := s.wallet.Append(tx, wallet.AccountDistributor, dist.ID,
			wallet.TypeOrderPayment, basket.total.Neg(), &orderID, actor); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.notifyFailure(dist, err)
		return nil, err
	}

	s.notifier.Notify(notification.TypeOrderPlaced,
		fmt.Sprintf("Order %d placed for distributor '%s' (%s)", placed.ID, dist.Name, basket.total.StringFixed(2)))

	return placed, nil
}

// UpdateOrderItems replaces a pending order's basket. Pricing and freebies
// are recomputed exactly as at placement; stock is checked on the per-SKU
// quantity delta and funds as if the prior debit were reversed first. The
// original OrderPayment is edited in place and the wallet ledger replayed.
func (s *Service) UpdateOrderItems(orderID uint, newBasket []BasketLine, actor string) (*Order, error) {
	if len(newBasket) == 0 {
		return nil, fmt.Errorf("%w: basket is empty", apperrors.ErrValidation)
	}
	for _, line := range newBasket {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", apperrors.ErrValidation)
		}
	}

	existing, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if existing.Status != StatusPending {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, existing.Status, apperrors.ErrInvalidState)
	}

	dist, err := s.distributors.Get(existing.DistributorID)
	if err != nil {
		return nil, err
	}

	basket, err := s.priceBasket(dist, newBasket)
	if err != nil {
		return nil, err
	}

	oldPerSKU := perSKUQuantities(existing.Items)
	involved := make(map[uint]int, len(basket.perSKU)+len(oldPerSKU))
	for skuID := range basket.perSKU {
		involved[skuID] = 0
	}
	for skuID := range oldPerSKU {
		involved[skuID] = 0
	}

	release := s.locker.Acquire(s.lockKeys(dist, existing.LocationID, involved)...)
	defer release()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The order can have been delivered, deleted or re-edited between
		// the read and the lock; recompute the deltas from its current
		// lines.
		var current Order
		if err := tx.Preload("Items").First(&current, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to reload order: %w", err)
		}
		if current.Status != StatusPending {
			return fmt.Errorf("order %d is %s: %w", orderID, current.Status, apperrors.ErrInvalidState)
		}
		oldPerSKU = perSKUQuantities(current.Items)
		deltaSKUs := make(map[uint]int, len(basket.perSKU)+len(oldPerSKU))
		for skuID := range basket.perSKU {
			deltaSKUs[skuID] = 0
		}
		for skuID := range oldPerSKU {
			deltaSKUs[skuID] = 0
		}

		// Funds as if the old debit were credited back first.
		if err := s.checkFunds(tx, dist, basket.total, current.TotalAmount); err != nil {
			return err
		}

		// Availability applies only to quantity growth per SKU.
		for _, skuID := range sortedKeys(deltaSKUs) {
			delta := basket.perSKU[skuID] - oldPerSKU[skuID]
			if delta <= 0 {
				continue
			}
			available, err := s.stock.Available(tx, current.LocationID, skuID)
			if err != nil {
				return err
			}
			if delta > available {
				return &apperrors.InsufficientStockError{
					SKUID:      skuID,
					LocationID: current.LocationID,
					Requested:  delta,
					Available:  available,
				}
			}
		}

		for _, skuID := range sortedKeys(deltaSKUs) {
			delta := basket.perSKU[skuID] - oldPerSKU[skuID]
			note := fmt.Sprintf("order %d edited", orderID)
			switch {
			case delta > 0:
				if err := s.stock.Reserve(tx, current.LocationID, skuID, delta, actor, note); err != nil {
					return err
				}
			case delta < 0:
				if err := s.stock.Unreserve(tx, current.LocationID, skuID, -delta, actor, note); err != nil {
					return err
				}
			}
		}

		// Replace line items wholesale.
		if err := tx.Where("order_id = ?", orderID).Delete(&LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order lines: %w", err)
		}
		for i := range basket.lines {
			basket.lines[i].OrderID = orderID
		}
		if err := tx.Create(&basket.lines).Error; err != nil {
			return fmt.Errorf("failed to create order lines: %w", err)
		}
		if err := tx.Model(&Order{}).Where("id = ?", orderID).
			Update("total_amount", basket.total).Error; err != nil {
			return fmt.Errorf("failed to update order total: %w", err)
		}

		return s.wallet.AdjustOrderPayment(tx, wallet.AccountDistributor, dist.ID, orderID, basket.total.Neg())
	})
	if err != nil {
		s.notifyFailure(dist, err)
		return nil, err
	}

	return s.GetOrder(orderID)
}

// MarkDelivered finalizes a pending order: reservations become consumption
// and each line gets a Sale ledger entry. Payment was taken at placement, so
// the wallet is untouched. A no-op when the order is already delivered.
func (s *Service) MarkDelivered(orderID uint, actor string) error {
	ord, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}
	if ord.Status == StatusDelivered {
		return nil
	}

	keys := make([]string, 0, len(ord.Items))
	for _, line := range ord.Items {
		keys = append(keys, stock.LockKey(ord.LocationID, line.SKUID))
	}
	release := s.locker.Acquire(keys...)
	defer release()

	deliveredAt := s.clock.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Status and lines can have moved between the read and the lock.
		var current Order
		if err := tx.Preload("Items").First(&current, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to reload order: %w", err)
		}
		if current.Status == StatusDelivered {
			return nil
		}

		for _, line := range current.Items {
			if err := s.stock.ConsumeReservation(tx, current.LocationID, line.SKUID, line.Quantity, actor,
				fmt.Sprintf("order %d delivered", orderID)); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":         StatusDelivered,
			"delivered_date": deliveredAt,
		}
		if err := tx.Model(&Order{}).Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
}

// DeleteOrder removes an order in any status. A pending order's reservations
// are released first; the wallet is always refunded the full original total
// through a fresh OrderRefund transaction. Deleting a delivered order does
// not restore consumed stock.
func (s *Service) DeleteOrder(orderID uint, reason, actor string) error {
	ord, err := s.GetOrder(orderID)
	if err != nil {
		return err
	}

	keys := []string{wallet.LockKey(wallet.AccountDistributor, ord.DistributorID)}
	if ord.Status == StatusPending {
		for _, line := range ord.Items {
			keys = append(keys, stock.LockKey(ord.LocationID, line.SKUID))
		}
	}
	release := s.locker.Acquire(keys...)
	defer release()

	return s.db.Transaction(func(tx *gorm.DB) error {
		// A concurrent delete or edit can land between the read and the
		// lock; refund the order as it stands now, once.
		var current Order
		if err := tx.Preload("Items").First(&current, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to reload order: %w", err)
		}

		if current.Status == StatusPending {
			for _, line := range current.Items {
				if err := s.stock.Unreserve(tx, current.LocationID, line.SKUID, line.Quantity, actor,
					fmt.Sprintf("order %d deleted: %s", orderID, reason)); err != nil {
					return err
				}
			}
		}

		refID := current.ID
		if _, err := s.wallet.Append(tx, wallet.AccountDistributor, current.DistributorID,
			wallet.TypeOrderRefund, current.TotalAmount, &refID, actor); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order lines: %w", err)
		}
		if err := tx.Delete(&Order{}, orderID).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
}

// GetOrder retrieves an order with its line items
func (s *Service) GetOrder(id uint) (*Order, error) {
	var ord Order
	if err := s.db.Preload("Items").First(&ord, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// ListOrders retrieves orders, optionally filtered by distributor, newest
// first.
func (s *Service) ListOrders(distributorID *uint) ([]Order, error) {
	query := s.db.Preload("Items").Order("id DESC")
	if distributorID != nil {
		query = query.Where("distributor_id = ?", *distributorID)
	}

	var orders []Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// priceBasket resolves unit prices and taxes per line, then appends the
// freebie lines earned on the paid quantities. Duplicate basket SKUs merge.
func (s *Service) priceBasket(dist *distributor.Distributor, basket []BasketLine) (*pricedBasket, error) {
	paidQty := make(map[uint]int, len(basket))
	for _, line := range basket {
		paidQty[line.SKUID] += line.Quantity
	}

	total := decimal.Zero
	lines := make([]LineItem, 0, len(paidQty))
	for _, skuID := range sortedKeys(paidQty) {
		qty := paidQty[skuID]
		sku, err := s.catalog.GetSKU(skuID)
		if err != nil {
			return nil, err
		}
		price, err := s.catalog.ResolveUnitPrice(dist.TierID, skuID)
		if err != nil {
			return nil, err
		}

		lines = append(lines, LineItem{
			SKUID:     skuID,
			Quantity:  qty,
			UnitPrice: price,
			TaxRate:   sku.TaxRate,
		})
		// Each line is taxed individually and summed, preserving mixed tax
		// rates across the basket.
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))).Mul(sku.TaxMultiplier()))
	}

	freebies, err := s.schemes.FreebiesFor(dist, paidQty, s.clock.Now())
	if err != nil {
		return nil, err
	}
	for _, skuID := range sortedKeys(freebies) {
		sku, err := s.catalog.GetSKU(skuID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, LineItem{
			SKUID:     skuID,
			Quantity:  freebies[skuID],
			UnitPrice: decimal.Zero,
			TaxRate:   sku.TaxRate,
			IsFreebie: true,
		})
	}

	return &pricedBasket{
		lines:   lines,
		total:   total,
		perSKU:  perSKUQuantities(lines),
		paidQty: paidQty,
	}, nil
}

// checkFunds validates total <= balance + creditLimit + credit, where
// credit is the prior order total when editing. The boundary is inclusive.
func (s *Service) checkFunds(tx *gorm.DB, dist *distributor.Distributor, total, credit decimal.Decimal) error {
	balance, err := s.wallet.Balance(tx, wallet.AccountDistributor, dist.ID)
	if err != nil {
		return err
	}

	available := balance.Add(dist.CreditLimit).Add(credit)
	if total.GreaterThan(available) {
		return &apperrors.InsufficientFundsError{Required: total, Available: available}
	}
	return nil
}

// checkStock validates availability for the combined paid+freebie quantity
// of every SKU before anything is reserved.
func (s *Service) checkStock(tx *gorm.DB, locationID uint, perSKU map[uint]int) error {
	for _, skuID := range sortedKeys(perSKU) {
		required := perSKU[skuID]
		available, err := s.stock.Available(tx, locationID, skuID)
		if err != nil {
			return err
		}
		if available < required {
			return &apperrors.InsufficientStockError{
				SKUID:      skuID,
				LocationID: locationID,
				Requested:  required,
				Available:  available,
			}
		}
	}
	return nil
}

// lockKeys returns the wallet and stock keys an order operation touches.
func (s *Service) lockKeys(dist *distributor.Distributor, locationID uint, perSKU map[uint]int) []string {
	keys := []string{wallet.LockKey(wallet.AccountDistributor, dist.ID)}
	for skuID := range perSKU {
		keys = append(keys, stock.LockKey(locationID, skuID))
	}
	return keys
}

// notifyFailure emits a notification for funds/stock rejections only.
func (s *Service) notifyFailure(dist *distributor.Distributor, err error) {
	if apperrors.IsInsufficientFunds(err) || apperrors.IsInsufficientStock(err) {
		s.notifier.Notify(notification.TypeOrderFailed,
			fmt.Sprintf("Order for distributor '%s' failed: %v", dist.Name, err))
	}
}

func perSKUQuantities(lines []LineItem) map[uint]int {
	out := make(map[uint]int, len(lines))
	for _, line := range lines {
		out[line.SKUID] += line.Quantity
	}
	return out
}

func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
