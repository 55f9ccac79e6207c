package staff

import "github.com/google/uuid"

type Worker struct {
	ID           uuid.UUID `json:"_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Salary       float64   `json:"salary"`
}

type SalaryInput struct {
	Salary *float64 `json:"salary"`
}
