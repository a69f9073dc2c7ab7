// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a SKU, order, distributor, scheme or other
	// record does not exist.
	ErrNotFound = errors.New("requested record not found")

	// ErrInvalidState is returned when an operation is not legal for the
	// current lifecycle state, e.g. editing a delivered order.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrAlreadyProcessed is returned when confirming a return that has
	// already been confirmed.
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrExceedsReturnable is returned when a return requests more units than
	// remain returnable on an order line.
	ErrExceedsReturnable = errors.New("return quantity exceeds returnable quantity")

	// ErrPermissionDenied is returned for role-gated admin operations.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidation is returned for malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
)

// InsufficientFundsError is returned when an order total exceeds the wallet
// balance plus credit limit. The failed check mutates nothing.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// InsufficientStockError identifies the offending SKU and the numbers that
// failed the availability check.
type InsufficientStockError struct {
	SKUID      uint
	LocationID uint
	Requested  int
	Available  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for SKU %d at location %d: requested %d, available %d",
		e.SKUID, e.LocationID, e.Requested, e.Available)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
