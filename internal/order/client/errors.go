package client

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInventoryUnavailable covers both an unreachable inventory service and
// a response whose shape could not be decoded. It is never folded into
// insufficiency.
var ErrInventoryUnavailable = errors.New("inventory service unavailable")

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
