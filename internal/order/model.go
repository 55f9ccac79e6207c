package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateOpen       State = "OPEN"
	StateAccepted   State = "ACCEPTED"
	StateDelivering State = "DELIVERING"
)

const (
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

type Item struct {
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalPrice float64 `json:"total_price"`
}

// ConfirmedOrder is the open order of one table. Settled orders are deleted,
// so every stored row is open.
type ConfirmedOrder struct {
	ID           uuid.UUID  `json:"_id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	TableNumber  int        `json:"table_number"`
	Items        []Item     `json:"confirmed_items"`
	IsAccepted   bool       `json:"isAccepted"`
	AcceptedBy   *uuid.UUID `json:"acceptedBy"`
	DeliveredAt  *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ItemChange is one entry of the diff pushed to the customer.
type ItemChange struct {
	ItemName string `json:"itemName"`
	OldQty   int    `json:"oldQty"`
	NewQty   int    `json:"newQty"`
	Action   string `json:"action"`
}

// TableView is the waiter dashboard row: one per table, quantities merged
// by item name.
type TableView struct {
	Table            int          `json:"table"`
	RestaurantID     uuid.UUID    `json:"restaurant_id"`
	ConfirmedOrderID uuid.UUID    `json:"confirmedOrderId"`
	IsAccepted       bool         `json:"isAccepted"`
	AcceptedBy       *uuid.UUID   `json:"acceptedBy"`
	Items            []ItemAmount `json:"items"`
}

type ItemAmount struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// KitchenLine is one row of the chef summary.
type KitchenLine struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

type ItemInput struct {
	ItemName string  `json:"item_name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CreateInput struct {
	RestaurantID string      `json:"restaurant_id"`
	TableNumber  int         `json:"table_number"`
	Items        []ItemInput `json:"confirmed_items"`
}

// NewConfirmedOrder validates in and builds an Open order. Repeated item
// names fold into one line at the first entry's price.
func NewConfirmedOrder(in CreateInput, now time.Time) (*ConfirmedOrder, error) {
	restaurantID, err := uuid.Parse(in.RestaurantID)
	if err != nil || in.TableNumber <= 0 || len(in.Items) == 0 {
		return nil, ErrInvalidData
	}

	index := make(map[string]int, len(in.Items))
	items := make([]Item, 0, len(in.Items))
	for _, it := range in.Items {
		name := strings.TrimSpace(it.ItemName)
		if name == "" || it.Quantity <= 0 || it.Price < 0 {
			return nil, ErrInvalidData
		}
		if i, ok := index[name]; ok {
			items[i].Quantity += it.Quantity
			items[i].TotalPrice = items[i].Price * float64(items[i].Quantity)
			continue
		}
		index[name] = len(items)
		items = append(items, Item{
			ItemName:   name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.Price * float64(it.Quantity),
		})
	}

	return &ConfirmedOrder{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		TableNumber:  in.TableNumber,
		Items:        items,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (o *ConfirmedOrder) State() State {
	switch {
	case o.DeliveredAt != nil:
		return StateDelivering
	case o.IsAccepted:
		return StateAccepted
	default:
		return StateOpen
	}
}

func (o *ConfirmedOrder) indexOf(name string) int {
	for i := range o.Items {
		if o.Items[i].ItemName == name {
			return i
		}
	}
	return -1
}

// SetItemQuantity overwrites the quantity of name. Zero removes the item.
func (o *ConfirmedOrder) SetItemQuantity(name string, qty int) (ItemChange, error) {
	if qty < 0 {
		return ItemChange{}, ErrInvalidQuantity
	}
	i := o.indexOf(name)
	if i < 0 {
		return ItemChange{}, ErrItemNotFound
	}

	change := ItemChange{ItemName: name, OldQty: o.Items[i].Quantity, NewQty: qty}
	if qty == 0 {
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		change.Action = ActionRemoved
		return change, nil
	}

	o.Items[i].Quantity = qty
	o.Items[i].TotalPrice = o.Items[i].Price * float64(qty)
	change.Action = ActionUpdated
	return change, nil
}

// Deliver subtracts qty from name and drops the item once nothing remains.
// The first delivery moves the order into the Delivering state.
func (o *ConfirmedOrder) Deliver(name string, qty int, at time.Time) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	i := o.indexOf(name)
	if i < 0 {
		return ErrItemNotFound
	}

	remaining := o.Items[i].Quantity - qty
	if remaining <= 0 {
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
	} else {
		o.Items[i].Quantity = remaining
		o.Items[i].TotalPrice = o.Items[i].Price * float64(remaining)
	}

	if o.DeliveredAt == nil {
		t := at
		o.DeliveredAt = &t
	}
	return nil
}
