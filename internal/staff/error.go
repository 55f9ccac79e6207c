package staff

import "ordersetu-be/internal/apperror"

var (
	ErrWorkerNotFound = apperror.NotFound("Worker not found")
	ErrInvalidWorker  = apperror.Validation("Invalid workerId")
	ErrInvalidSalary  = apperror.Validation("Salary must be a non-negative number")
)
