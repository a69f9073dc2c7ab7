// internal/domain/distributor/service.go
package distributor

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

// Service handles distributor and store business logic
type Service struct {
	db       *gorm.DB
	notifier *notification.Service
}

// NewService creates a new distributor service
func NewService(db *gorm.DB, notifier *notification.Service) *Service {
	return &Service{db: db, notifier: notifier}
}

// OnboardRequest represents distributor onboarding data
type OnboardRequest struct {
	Name          string          `json:"name" binding:"required"`
	ExecID        string          `json:"exec_id" binding:"required"`
	StoreID       *uint           `json:"store_id,omitempty"`
	TierID        *uint           `json:"tier_id,omitempty"`
	SpecialScheme bool            `json:"special_scheme"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
}

// CreateStoreRequest represents store creation data
type CreateStoreRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// Onboard creates a new distributor with a zero wallet
func (s *Service) Onboard(req *OnboardRequest) (*Distributor, error) {
	if req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: credit limit must not be negative", apperrors.ErrValidation)
	}

	if req.StoreID != nil {
		if _, err := s.GetStore(*req.StoreID); err != nil {
			return nil, err
		}
	}

	dist := &Distributor{
		Name:          req.Name,
		ExecID:        req.ExecID,
		StoreID:       req.StoreID,
		TierID:        req.TierID,
		SpecialScheme: req.SpecialScheme,
		WalletBalance: decimal.Zero,
		CreditLimit:   req.CreditLimit,
		IsActive:      true,
	}

	if err := s.db.Create(dist).Error; err != nil {
		return nil, fmt.Errorf("failed to create distributor: %w", err)
	}

	s.notifier.Notify(notification.TypeDistributorOnboard,
		fmt.Sprintf("Distributor '%s' onboarded", dist.Name))

	return dist, nil
}

// Get retrieves a distributor with its store
func (s *Service) Get(id uint) (*Distributor, error) {
	var dist Distributor
	if err := s.db.Preload("Store").First(&dist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("distributor %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve distributor: %w", err)
	}
	return &dist, nil
}

// List retrieves all active distributors
func (s *Service) List() ([]Distributor, error) {
	var dists []Distributor
	if err := s.db.Preload("Store").Where("is_active = ?", true).Order("name").Find(&dists).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve distributors: %w", err)
	}
	return dists, nil
}

// CreateStore creates a store together with its stock location
func (s *Service) CreateStore(req *CreateStoreRequest) (*Store, error) {
	var existing Store
	if err := s.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: store with code '%s' already exists", apperrors.ErrValidation, req.Code)
	}

	var store *Store
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loc := Location{Name: req.Name, Kind: LocationKindStore}
		if err := tx.Create(&loc).Error; err != nil {
			return fmt.Errorf("failed to create store location: %w", err)
		}

		store = &Store{
			Name:          req.Name,
			Code:          req.Code,
			LocationID:    loc.ID,
			WalletBalance: decimal.Zero,
			IsActive:      true,
		}
		if err := tx.Create(store).Error; err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// GetStore retrieves a store by id
func (s *Service) GetStore(id uint) (*Store, error) {
	var store Store
	if err := s.db.Preload("Location").First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve store: %w", err)
	}
	return &store, nil
}

// PlantLocation returns the central plant location.
func (s *Service) PlantLocation() (*Location, error) {
	var loc Location
	if err := s.db.Where("kind = ?", LocationKindPlant).First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plant location: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve plant location: %w", err)
	}
	return &loc, nil
}

// ResolveLocationID resolves the stock location an order against this
// distributor draws from: the assigned store's location, else the plant.
func (s *Service) ResolveLocationID(dist *Distributor) (uint, error) {
	if dist.StoreID != nil {
		store, err := s.GetStore(*dist.StoreID)
		if err != nil {
			return 0, err
		}
		return store.LocationID, nil
	}

	plant, err := s.PlantLocation()
	if err != nil {
		return 0, err
	}
	return plant.ID, nil
}
