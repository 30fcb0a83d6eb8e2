package repository

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrReservationConflict marks a decrement that found less stock than the
// locked read promised. With row locks in place it should not fire; it is
// the last line of defence against over-commit.
var ErrReservationConflict = errors.New("reservation conflict")

// InsufficientStockError carries the shortfall amounts so callers can
// report exactly how much was available at reserve time.
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient inventory. Available: %d, Requested: %d", e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
