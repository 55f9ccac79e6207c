package restaurant

import "github.com/google/uuid"

type Restaurant struct {
	ID                  uuid.UUID `json:"_id"`
	Name                string    `json:"restaurantName"`
	TableCount          int       `json:"noOfTables"`
	AcceptedOrdersCount int64     `json:"acceptedOrdersCount"`
}

// Stats are the platform totals shown on the public landing page.
type Stats struct {
	Restaurants int64 `json:"restaurants"`
	Users       int64 `json:"users"`
	Orders      int64 `json:"orders"`
	Items       int64 `json:"items"`
}
