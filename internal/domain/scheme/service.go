// internal/domain/scheme/service.go
package scheme

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/distribution-backend/internal/domain/distributor"
	"github.com/your-org/distribution-backend/internal/pkg/apperrors"
	"github.com/your-org/distribution-backend/internal/pkg/clock"
	"github.com/your-org/distribution-backend/internal/pkg/notification"
)

// Service handles scheme administration and freebie evaluation
type Service struct {
	db       *gorm.DB
	notifier *notification.Service
	clock    clock.Clock
}

// NewService creates a new scheme service
func NewService(db *gorm.DB, notifier *notification.Service, clk clock.Clock) *Service {
	return &Service{db: db, notifier: notifier, clock: clk}
}

// CreateSchemeRequest represents scheme creation data
type CreateSchemeRequest struct {
	BuySKUID      uint      `json:"buy_sku_id" binding:"required"`
	BuyQty        int       `json:"buy_qty" binding:"required"`
	GetSKUID      uint      `json:"get_sku_id" binding:"required"`
	GetQty        int       `json:"get_qty" binding:"required"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	Scope         Scope     `json:"scope" binding:"required"`
	StoreID       *uint     `json:"store_id,omitempty"`
	DistributorID *uint     `json:"distributor_id,omitempty"`
}

// Create creates a new promotional scheme. BuyQty of zero is rejected here
// so the evaluation algorithm never sees it.
func (s *Service) Create(req *CreateSchemeRequest, actor string) (*Scheme, error) {
	if req.BuyQty < 1 {
		return nil, fmt.Errorf("%w: buy quantity must be at least 1", apperrors.ErrValidation)
	}
	if req.GetQty < 1 {
		return nil, fmt.Errorf("%w: get quantity must be at least 1", apperrors.ErrValidation)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	switch req.Scope {
	case ScopeGlobal:
	case ScopeStore:
		if req.StoreID == nil {
			return nil, fmt.Errorf("%w: store scope requires a store id", apperrors.ErrValidation)
		}
	case ScopeDistributor:
		if req.DistributorID == nil {
			return nil, fmt.Errorf("%w: distributor scope requires a distributor id", apperrors.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: unknown scope '%s'", apperrors.ErrValidation, req.Scope)
	}

	sc := &Scheme{
		BuySKUID:      req.BuySKUID,
		BuyQty:        req.BuyQty,
		GetSKUID:      req.GetSKUID,
		GetQty:        req.GetQty,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Scope:         req.Scope,
		StoreID:       req.StoreID,
		DistributorID: req.DistributorID,
		CreatedBy:     actor,
	}

	if err := s.db.Create(sc).Error; err != nil {
		return nil, fmt.Errorf("failed to create scheme: %w", err)
	}

	return sc, nil
}

// Get retrieves a scheme by id
func (s *Service) Get(id uint) (*Scheme, error) {
	var sc Scheme
	if err := s.db.First(&sc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("scheme %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve scheme: %w", err)
	}
	return &sc, nil
}

// List retrieves all schemes
func (s *Service) List() ([]Scheme, error) {
	var schemes []Scheme
	if err := s.db.Order("id").Find(&schemes).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve schemes: %w", err)
	}
	return schemes, nil
}

// Stop terminates a scheme: end date becomes now and the stopper identity
// and time are recorded. One-way unless Reactivate is called.
func (s *Service) Stop(id uint, actor string) (*Scheme, error) {
	sc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sc.IsStopped() {
		return nil, fmt.Errorf("scheme %d is already stopped: %w", id, apperrors.ErrInvalidState)
	}

	now := s.clock.Now()
	updates := map[string]interface{}{
		"end_date":   now,
		"stopped_by": actor,
		"stopped_at": now,
	}
	if err := s.db.Model(sc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to stop scheme: %w", err)
	}

	sc.EndDate = now
	sc.StoppedBy = &actor
	sc.StoppedAt = &now
	return sc, nil
}

// Reactivate clears the stop markers and extends the scheme to a new end
// date.
func (s *Service) Reactivate(id uint, newEndDate time.Time, actor string) (*Scheme, error) {
	sc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if newEndDate.Before(s.clock.Now()) {
		return nil, fmt.Errorf("%w: new end date is in the past", apperrors.ErrValidation)
	}

	updates := map[string]interface{}{
		"end_date":   newEndDate,
		"stopped_by": nil,
		"stopped_at": nil,
	}
	if err := s.db.Model(sc).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reactivate scheme: %w", err)
	}

	sc.EndDate = newEndDate
	sc.StoppedBy = nil
	sc.StoppedAt = nil

	s.notifier.Notify(notification.TypeSchemeReactivated,
		fmt.Sprintf("Scheme %d reactivated until %s", sc.ID, newEndDate.Format("2006-01-02")))

	return sc, nil
}

// FreebiesFor evaluates all schemes against the paid quantities of an order
// for the given distributor.
func (s *Service) FreebiesFor(dist *distributor.Distributor, purchased map[uint]int, asOf time.Time) (map[uint]int, error) {
	schemes, err := s.List()
	if err != nil {
		return nil, err
	}
	return ComputeFreebies(dist, schemes, purchased, asOf), nil
}
