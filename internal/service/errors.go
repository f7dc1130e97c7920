package service

import (
	"errors"
	"fmt"
	"strings"

	"jewelshop/internal/model"
)

// Sentinel errors. Services wrap them with fmt.Errorf("%w: …") so handlers can
// map the failure to a status code with errors.Is while keeping the message.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// InsufficientStockError reports a sale line that asks for more than the
// stock pool of its product and material holds.
type InsufficientStockError struct {
	Product   string
	Material  model.Material
	Requested int
	Available int
	// Missing is set when the product has no stock record at all.
	Missing bool
}

func (e *InsufficientStockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("No stock record found for product %s", e.Product)
	}
	return fmt.Sprintf("Product %s (%s), requested %d, available %d",
		e.Product, e.Material, e.Requested, e.Available)
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Message returns the client-facing text of err: the wrapped message with the
// sentinel prefix removed.
func Message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrForbidden, ErrValidation, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, sentinel) {
			return strings.Replace(msg, sentinel.Error()+": ", "", 1)
		}
	}
	return msg
}
