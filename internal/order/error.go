package order

import "ordersetu-be/internal/apperror"

var (
	// -- Validation & Input --
	ErrInvalidData     = apperror.Validation("Invalid data")
	ErrInvalidQuantity = apperror.Validation("Quantity must be a non-negative integer")
	ErrMissingFields   = apperror.Validation("Missing fields")

	// -- Resource State --
	ErrOrderNotFound   = apperror.NotFound("Confirmed order not found")
	ErrItemNotFound    = apperror.NotFound("Item not found in order")
	ErrAlreadyAccepted = apperror.Conflict("Order already accepted")
	ErrTableOccupied   = apperror.Conflict("Table already has an open order")

	// -- Authorization --
	ErrForbidden = apperror.Forbidden("Access denied")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
