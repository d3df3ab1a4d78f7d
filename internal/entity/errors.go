package entity

import "errors"

var (
	// ErrProductNotFound indicates a referenced product id does not resolve.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductUnavailable indicates the product exists but is not active.
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInsufficientStock indicates the requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition indicates the requested status change is not allowed
	// from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotAuthorized indicates the actor is neither the order owner nor an admin.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrVersionConflict indicates a concurrent update won the race for the
	// order record; the caller should reload and retry.
	ErrVersionConflict = errors.New("order was modified concurrently")

	// ErrDuplicateRequest indicates the idempotency key was already used.
	ErrDuplicateRequest = errors.New("duplicate request")

	ErrUserNotFound = errors.New("user not found")
	ErrEmptyOrder   = errors.New("order must contain at least one item")
)
