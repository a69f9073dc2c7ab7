// internal/domain/stock/service.go
package stock

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
)

// Service owns stock items and the append-only stock ledger. All mutating
// methods take the caller's transaction so an engine operation commits its
// stock, wallet and order effects together.
type Service struct {
	db     *gorm.DB
	locker *locker.KeyedLocker
	clock  clock.Clock
}

// NewService creates a new stock service
func NewService(db *gorm.DB, l *locker.KeyedLocker, clk clock.Clock) *Service {
	return &Service{db: db, locker: l, clock: clk}
}

// RestockRequest represents an inbound stock receipt
type RestockRequest struct {
	LocationID uint   `json:"location_id" binding:"required"`
	SKUID      uint   `json:"sku_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
	Notes      string `json:"notes"`
}

// Restock records an inbound receipt at a location.
func (s *Service) Restock(req *RestockRequest, actor string) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", apperrors.ErrValidation)
	}

	release := s.locker.Acquire(LockKey(req.LocationID, req.SKUID))
	defer release()

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.AddStock(tx, req.LocationID, req.SKUID, req.Quantity, MovementInbound, actor, req.Notes)
	})
}

// LockKey returns the locker key for one (location, SKU) stock row.
func LockKey(locationID, skuID uint) string {
	return fmt.Sprintf("stock/%d/%d", locationID, skuID)
}

// ItemFor retrieves the stock item for a (location, SKU) pair.
func (s *Service) ItemFor(tx *gorm.DB, locationID, skuID uint) (*StockItem, error) {
	var item StockItem
	err := tx.Where("location_id = ? AND sku_id = ?", locationID, skuID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("stock item for SKU %d at location %d: %w", skuID, locationID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve stock item: %w", err)
	}
	return &item, nil
}

// EnsureItem retrieves or creates the stock item for a (location, SKU) pair.
func (s *Service) EnsureItem(tx *gorm.DB, locationID, skuID uint) (*StockItem, error) {
	item, err := s.ItemFor(tx, locationID, skuID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	item = &StockItem{LocationID: locationID, SKUID: skuID}
	if err := tx.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	return item, nil
}

// Available returns the available quantity for a (location, SKU) pair; a
// missing stock item counts as zero.
func (s *Service) Available(tx *gorm.DB, locationID, skuID uint) (int, error) {
	item, err := s.ItemFor(tx, locationID, skuID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return item.Available(), nil
}

// Reserve earmarks qty units for a pending order or transfer. Fails with
// InsufficientStockError when availability is short; physical quantity is
// unchanged and the ledger entry carries a zero quantity change.
func (s *Service) Reserve(tx *gorm.DB, locationID, skuID uint, qty int, actor, notes string) error {
	item, err := s.ItemFor(tx, locationID, skuID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &apperrors.InsufficientStockError{SKUID: skuID, LocationID: locationID, Requested: qty, Available: 0}
		}
		return err
	}

	if item.Available() < qty {
		return &apperrors.InsufficientStockError{
			SKUID:      skuID,
			LocationID: locationID,
			Requested:  qty,
			Available:  item.Available(),
		}
	}

	item.Reserved += qty
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	return s.appendEntry(tx, item, 0, MovementReserved, actor,
		fmt.Sprintf("reserved %d units; %s", qty, notes))
}

// Unreserve releases qty reserved units, clamping reserved at zero.
func (s *Service) Unreserve(tx *gorm.DB, locationID, skuID uint, qty int, actor, notes string) error {
	item, err := s.ItemFor(tx, locationID, skuID)
	if err != nil {
		return err
	}

	item.Reserved -= qty
	if item.Reserved < 0 {
		item.Reserved = 0
	}
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}

	return s.appendEntry(tx, item, 0, MovementUnreserved, actor,
		fmt.Sprintf("released %d units; %s", qty, notes))
}

// ConsumeReservation converts a reservation into consumption on delivery:
// physical quantity and reserved both drop by qty (reserved clamped at
// zero), with a Sale ledger entry.
func (s *Service) ConsumeReservation(tx *gorm.DB, locationID, skuID uint, qty int, actor, notes string) error {
	return s.consume(tx, locationID, skuID, qty, MovementSale, actor, notes)
}

// AddStock increases physical quantity, e.g. return of sold goods or an
// inbound restock. Reserved is untouched: returned stock was never reserved.
func (s *Service) AddStock(tx *gorm.DB, locationID, skuID uint, qty int, movement MovementType, actor, notes string) error {
	item, err := s.EnsureItem(tx, locationID, skuID)
	if err != nil {
		return err
	}

	item.Quantity += qty
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("failed to add stock: %w", err)
	}

	return s.appendEntry(tx, item, qty, movement, actor, notes)
}

// consume removes qty physical units that were reserved, stamping the given
// movement type.
func (s *Service) consume(tx *gorm.DB, locationID, skuID uint, qty int, movement MovementType, actor, notes string) error {
	item, err := s.ItemFor(tx, locationID, skuID)
	if err != nil {
		return err
	}

	item.Quantity -= qty
	item.Reserved -= qty
	if item.Reserved < 0 {
		item.Reserved = 0
	}
	if err := tx.Save(item).Error; err != nil {
		return fmt.Errorf("failed to consume stock: %w", err)
	}

	return s.appendEntry(tx, item, -qty, movement, actor, notes)
}

// appendEntry writes one immutable ledger row with the post-mutation balance.
func (s *Service) appendEntry(tx *gorm.DB, item *StockItem, change int, movement MovementType, actor, notes string) error {
	return s.appendEntryAt(tx, item, change, movement, actor, notes, s.clock.Now())
}

func (s *Service) appendEntryAt(tx *gorm.DB, item *StockItem, change int, movement MovementType, actor, notes string, at time.Time) error {
	entry := &LedgerEntry{
		Date:           at,
		SKUID:          item.SKUID,
		LocationID:     item.LocationID,
		QuantityChange: change,
		BalanceAfter:   item.Quantity,
		MovementType:   movement,
		Actor:          actor,
		Notes:          notes,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append stock ledger entry: %w", err)
	}
	return nil
}

// Ledger lists a (location, SKU) pair's ledger entries in chronological
// order.
func (s *Service) Ledger(locationID, skuID uint) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := s.db.Where("location_id = ? AND sku_id = ?", locationID, skuID).
		Order("id").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock ledger: %w", err)
	}
	return entries, nil
}

// ReplayQuantity recomputes physical quantity by replaying the ledger from
// zero. Used by tests and reconciliation checks against the cached value.
func (s *Service) ReplayQuantity(locationID, skuID uint) (int, error) {
	entries, err := s.Ledger(locationID, skuID)
	if err != nil {
		return 0, err
	}

	quantity := 0
	for _, e := range entries {
		quantity += e.QuantityChange
	}
	return quantity, nil
}
