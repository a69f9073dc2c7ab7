// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
)

// Service handles catalog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateSKURequest represents SKU creation data
type CreateSKURequest struct {
	Name           string          `json:"name" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price" binding:"required"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Classification string          `json:"classification"`
}

// UpdateSKURequest represents SKU update data
type UpdateSKURequest struct {
	Name           *string          `json:"name,omitempty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	Classification *string          `json:"classification,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// SetTierPriceRequest represents a tier price override
type SetTierPriceRequest struct {
	SKUID     uint            `json:"sku_id" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateSKU creates a new SKU
func (s *Service) CreateSKU(req *CreateSKURequest) (*SKU, error) {
	if req.UnitPrice.IsNegative() || req.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: price and tax rate must not be negative", apperrors.ErrValidation)
	}

	sku := &SKU{
		Name:           req.Name,
		UnitPrice:      req.UnitPrice,
		TaxRate:        req.TaxRate,
		Classification: req.Classification,
		IsActive:       true,
	}

	if err := s.db.Create(sku).Error; err != nil {
		return nil, fmt.Errorf("failed to create SKU: %w", err)
	}

	return sku, nil
}

// GetSKU retrieves a SKU by id
func (s *Service) GetSKU(id uint) (*SKU, error) {
	var sku SKU
	if err := s.db.First(&sku, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("SKU %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve SKU: %w", err)
	}
	return &sku, nil
}

// GetSKUs retrieves all active SKUs
func (s *Service) GetSKUs() ([]SKU, error) {
	var skus []SKU
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&skus).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve SKUs: %w", err)
	}
	return skus, nil
}

// UpdateSKU applies an explicit admin update to a SKU
func (s *Service) UpdateSKU(id uint, req *UpdateSKURequest) (*SKU, error) {
	sku, err := s.GetSKU(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price must not be negative", apperrors.ErrValidation)
		}
		updates["unit_price"] = *req.UnitPrice
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() {
			return nil, fmt.Errorf("%w: tax rate must not be negative", apperrors.ErrValidation)
		}
		updates["tax_rate"] = *req.TaxRate
	}
	if req.Classification != nil {
		updates["classification"] = *req.Classification
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return sku, nil
	}

	if err := s.db.Model(sku).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update SKU: %w", err)
	}

	return sku, nil
}

// CreateTier creates a named price tier
func (s *Service) CreateTier(name string) (*PriceTier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: tier name is required", apperrors.ErrValidation)
	}

	tier := &PriceTier{Name: name}
	if err := s.db.Create(tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create price tier: %w", err)
	}
	return tier, nil
}

// GetTier retrieves a tier with its overrides
func (s *Service) GetTier(id uint) (*PriceTier, error) {
	var tier PriceTier
	if err := s.db.Preload("Items").First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("price tier %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve price tier: %w", err)
	}
	return &tier, nil
}

// SetTierPrice creates or updates the (tier, SKU) price override
func (s *Service) SetTierPrice(tierID uint, req *SetTierPriceRequest) (*PriceTierItem, error) {
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must not be negative", apperrors.ErrValidation)
	}

	if _, err := s.GetTier(tierID); err != nil {
		return nil, err
	}
	if _, err := s.GetSKU(req.SKUID); err != nil {
		return nil, err
	}

	var item PriceTierItem
	err := s.db.Where("tier_id = ? AND sku_id = ?", tierID, req.SKUID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = PriceTierItem{TierID: tierID, SKUID: req.SKUID, UnitPrice: req.UnitPrice}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create tier price: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to check tier price: %w", err)
	default:
		if err := s.db.Model(&item).Update("unit_price", req.UnitPrice).Error; err != nil {
			return nil, fmt.Errorf("failed to update tier price: %w", err)
		}
		item.UnitPrice = req.UnitPrice
	}

	return &item, nil
}

// ResolveUnitPrice resolves the effective unit price of a SKU for a
// distributor's tier. The tier override takes precedence over the SKU base
// price; a nil tier always resolves to the base price. Read-only.
func (s *Service) ResolveUnitPrice(tierID *uint, skuID uint) (decimal.Decimal, error) {
	sku, err := s.GetSKU(skuID)
	if err != nil {
		return decimal.Zero, err
	}

	if tierID != nil {
		var item PriceTierItem
		err := s.db.Where("tier_id = ? AND sku_id = ?", *tierID, skuID).First(&item).Error
		if err == nil {
			return item.UnitPrice, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("failed to resolve tier price: %w", err)
		}
	}

	return sku.UnitPrice, nil
}
