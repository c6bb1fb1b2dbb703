package shared

import (
	"errors"
	"fmt"
)

// Category classifies domain failures for callers and the HTTP layer.
type Category string

const (
	// CategoryValidation marks malformed or missing input, rejected before any store access.
	CategoryValidation Category = "validation"
	// CategoryNotFound marks a missing item, recipient or record.
	CategoryNotFound Category = "not_found"
	// CategoryInactive marks an item or recipient that exists but is disabled.
	CategoryInactive Category = "inactive"
	// CategoryInsufficientStock marks a movement that would drive stock below zero.
	CategoryInsufficientStock Category = "insufficient_stock"
	// CategoryReferentialIntegrity marks a delete rejected because history references the row.
	CategoryReferentialIntegrity Category = "referential_integrity"
	// CategoryConflict marks duplicate keys and idempotency replays.
	CategoryConflict Category = "conflict"
	// CategoryStore marks infrastructure failures; never partially applied.
	CategoryStore Category = "store"
)

// Error carries a category alongside a human-readable message.
type Error struct {
	Category Category
	Message  string
}

func (e *Error) Error() string { return e.Message }

// E builds a categorised error.
func E(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// CategoryOf extracts the category from err, defaulting to CategoryStore.
func CategoryOf(err error) Category {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Category
	}
	return CategoryStore
}
