package restaurant

import "ordersetu-be/internal/apperror"

var (
	ErrRestaurantNotFound = apperror.NotFound("Restaurant not found")
	ErrInvalidRestaurant  = apperror.Validation("Invalid restaurant id")
	ErrInvalidTable       = apperror.Validation("Invalid table number")
)
