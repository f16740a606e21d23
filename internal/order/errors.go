package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotCancellable    = errors.New("order can no longer be cancelled")
)

// ValidationError marks a malformed checkout request. Nothing is mutated when
// one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UnknownProductError aborts checkout when a line item references a product
// that is absent from the catalog. Missing products are never silently
// dropped from a draft.
type UnknownProductError struct {
	ProductID int
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// Shortage describes one product that cannot cover the requested quantity.
type Shortage struct {
	ProductID int    `json:"productId"`
	Name      string `json:"productName,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError rejects a whole order; it names every short product
// with the quantity still available.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("product %d", s.ProductID)
		}
		parts = append(parts, fmt.Sprintf("%s: requested %d, only %d available", name, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
