package billing

import "ordersetu-be/internal/apperror"

var (
	ErrMissingFields    = apperror.Validation("Missing required billing fields")
	ErrInvalidStatus    = apperror.Validation("Status must be 'Accepted' or 'Rejected'")
	ErrInitialStatus    = apperror.Validation("A new bill must be Pending")
	ErrBillNotFound     = apperror.NotFound("Bill not found")
	ErrDuplicateRequest = apperror.Conflict("Bill request already exists")
	ErrAlreadyResolved  = apperror.Conflict("Bill already resolved")
	ErrForbidden        = apperror.Forbidden("Access denied")

	PgUniqueViolation = "23505"
)
