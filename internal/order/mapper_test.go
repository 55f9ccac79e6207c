package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGroupByTable(t *testing.T) {
	restaurantID := uuid.New()
	waiter := uuid.New()
	first := &ConfirmedOrder{
		ID: uuid.New(), RestaurantID: restaurantID, TableNumber: 2,
		Items: []Item{{ItemName: "Pizza", Quantity: 1}, {ItemName: "Coke", Quantity: 2}},
	}
	second := &ConfirmedOrder{
		ID: uuid.New(), RestaurantID: restaurantID, TableNumber: 2,
		Items: []Item{{ItemName: "Pizza", Quantity: 3}},
	}
	other := &ConfirmedOrder{
		ID: uuid.New(), RestaurantID: restaurantID, TableNumber: 5,
		IsAccepted: true, AcceptedBy: &waiter,
		Items: []Item{{ItemName: "Soup", Quantity: 1}},
	}

	views := groupByTable([]*ConfirmedOrder{first, second, other})

	assert.Len(t, views, 2)
	assert.Equal(t, 2, views[0].Table)
	assert.Equal(t, first.ID, views[0].ConfirmedOrderID)
	assert.Equal(t, []ItemAmount{{Name: "Pizza", Quantity: 4}, {Name: "Coke", Quantity: 2}}, views[0].Items)

	assert.Equal(t, 5, views[1].Table)
	assert.True(t, views[1].IsAccepted)
	assert.Equal(t, &waiter, views[1].AcceptedBy)
}

func TestGroupByTable_Empty(t *testing.T) {
	views := groupByTable(nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestSummarize(t *testing.T) {
	orders := []*ConfirmedOrder{
		{TableNumber: 1, Items: []Item{{ItemName: "Pizza", Quantity: 2}, {ItemName: "Coke", Quantity: 1}}},
		{TableNumber: 2, Items: []Item{{ItemName: "Pizza", Quantity: 1}, {ItemName: "Soup", Quantity: 1}}},
	}

	lines := summarize(orders)

	assert.Equal(t, []KitchenLine{
		{Item: "Pizza", Quantity: 3},
		{Item: "Coke", Quantity: 1},
		{Item: "Soup", Quantity: 1},
	}, lines)
}
