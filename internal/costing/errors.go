package costing

import "errors"

var (
	// ErrInvalidQuantity is returned when an operation is requested with a
	// zero or negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// ErrInvalidSKU is returned when an operation is requested with an
	// empty SKU.
	ErrInvalidSKU = errors.New("sku must not be empty")

	// ErrUnknownSKU is returned when a consumption or cost lookup targets a
	// SKU with no recorded layers at all.
	ErrUnknownSKU = errors.New("no cost layers recorded for sku")

	// ErrInsufficientStock is returned by Consume under the reject policy
	// when recorded layers cannot back the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock in cost layers")
)
