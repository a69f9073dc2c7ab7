// internal/domain/stock/transfer.go
package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/catalog"
	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/locker"
)

// TransferEngine dispatches stock from the central plant to stores. The
// lifecycle mirrors orders: create reserves plant stock, delivery moves it.
type TransferEngine struct {
	db           *gorm.DB
	stock        *Service
	catalog      *catalog.Service
	distributors *distributor.Service
	locker       *locker.KeyedLocker
	clock        clock.Clock
}

// NewTransferEngine creates a new transfer engine
func NewTransferEngine(db *gorm.DB, stockSvc *Service, catalogSvc *catalog.Service, distSvc *distributor.Service, l *locker.KeyedLocker, clk clock.Clock) *TransferEngine {
	return &TransferEngine{
		db:           db,
		stock:        stockSvc,
		catalog:      catalogSvc,
		distributors: distSvc,
		locker:       l,
		clock:        clk,
	}
}

// TransferItemRequest is one requested line of a transfer
type TransferItemRequest struct {
	SKUID    uint `json:"sku_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// CreateTransferRequest represents transfer creation data
type CreateTransferRequest struct {
	StoreID uint                  `json:"store_id" binding:"required"`
	Items   []TransferItemRequest `json:"items" binding:"required"`
}

// CreateTransfer checks plant availability, reserves plant stock and creates
// a Pending transfer valued at SKU base prices. All-or-nothing.
func (e *TransferEngine) CreateTransfer(req *CreateTransferRequest, actor string) (*Transfer, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: transfer requires at least one item", apperrors.ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: transfer quantity must be positive", apperrors.ErrValidation)
		}
	}

	store, err := e.distributors.GetStore(req.StoreID)
	if err != nil {
		return nil, err
	}
	plant, err := e.distributors.PlantLocation()
	if err != nil {
		return nil, err
	}

	// Value the lines before locking; the transaction below only checks and
	// mutates stock.
	totalValue := decimal.Zero
	items := make([]TransferItem, 0, len(req.Items))
	for _, item := range req.Items {
		sku, err := e.catalog.GetSKU(item.SKUID)
		if err != nil {
			return nil, err
		}
		items = append(items, TransferItem{
			SKUID:     item.SKUID,
			Quantity:  item.Quantity,
			UnitValue: sku.UnitPrice,
		})
		totalValue = totalValue.Add(sku.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	keys := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		keys = append(keys, LockKey(plant.ID, item.SKUID))
	}
	release := e.locker.Acquire(keys...)
	defer release()

	var transfer *Transfer
	err = e.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Items {
			available, err := e.stock.Available(tx, plant.ID, item.SKUID)
			if err != nil {
				return err
			}
			if available < item.Quantity {
				return &apperrors.InsufficientStockError{
					SKUID:      item.SKUID,
					LocationID: plant.ID,
					Requested:  item.Quantity,
					Available:  available,
				}
			}
		}

		transfer = &Transfer{
			DestinationLocationID: store.LocationID,
			Status:                TransferStatusPending,
			TotalValue:            totalValue,
			CreatedBy:             actor,
			Items:                 items,
		}
		if err := tx.Create(transfer).Error; err != nil {
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		for _, item := range transfer.Items {
			if err := e.stock.Reserve(tx, plant.ID, item.SKUID, item.Quantity, actor,
				fmt.Sprintf("transfer %d to store %d", transfer.ID, store.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfer, nil
}

// GetTransfer retrieves a transfer with its items
func (e *TransferEngine) GetTransfer(id uint) (*Transfer, error) {
	var transfer Transfer
	if err := e.db.Preload("Items").First(&transfer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transfer %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve transfer: %w", err)
	}
	return &transfer, nil
}

// ListTransfers retrieves all transfers, newest first
func (e *TransferEngine) ListTransfers() ([]Transfer, error) {
	var transfers []Transfer
	if err := e.db.Preload("Items").Order("id DESC").Find(&transfers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve transfers: %w", err)
	}
	return transfers, nil
}

// MarkDelivered moves a pending transfer's stock: the plant loses physical
// quantity and reservation, the destination gains physical quantity, with
// paired TransferOut/TransferIn ledger entries sharing one event timestamp.
// A no-op when the transfer is already delivered.
func (e *TransferEngine) MarkDelivered(id uint, actor string) error {
	transfer, err := e.GetTransfer(id)
	if err != nil {
		return err
	}
	if transfer.Status == TransferStatusDelivered {
		return nil
	}

	plant, err := e.distributors.PlantLocation()
	if err != nil {
		return err
	}

	keys := make([]string, 0, 2*len(transfer.Items))
	for _, item := range transfer.Items {
		keys = append(keys, LockKey(plant.ID, item.SKUID), LockKey(transfer.DestinationLocationID, item.SKUID))
	}
	release := e.locker.Acquire(keys...)
	defer release()

	eventTime := e.clock.Now()

	return e.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range transfer.Items {
			src, err := e.stock.ItemFor(tx, plant.ID, item.SKUID)
			if err != nil {
				return err
			}
			src.Quantity -= item.Quantity
			src.Reserved -= item.Quantity
			if src.Reserved < 0 {
				src.Reserved = 0
			}
			if err := tx.Save(src).Error; err != nil {
				return fmt.Errorf("failed to deduct plant stock: %w", err)
			}
			if err := e.stock.appendEntryAt(tx, src, -item.Quantity, MovementTransferOut, actor,
				fmt.Sprintf("transfer %d dispatched", transfer.ID), eventTime); err != nil {
				return err
			}

			dst, err := e.stock.EnsureItem(tx, transfer.DestinationLocationID, item.SKUID)
			if err != nil {
				return err
			}
			dst.Quantity += item.Quantity
			if err := tx.Save(dst).Error; err != nil {
				return fmt.Errorf("failed to credit destination stock: %w", err)
			}
			if err := e.stock.appendEntryAt(tx, dst, item.Quantity, MovementTransferIn, actor,
				fmt.Sprintf("transfer %d received", transfer.ID), eventTime); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":         TransferStatusDelivered,
			"delivered_date": eventTime,
		}
		if err := tx.Model(&Transfer{}).Where("id = ?", transfer.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update transfer status: %w", err)
		}
		return nil
	})
}
