package order

import "sort"

// groupByTable keeps the first order seen per table as the row identity and
// merges item quantities by name.
func groupByTable(orders []*ConfirmedOrder) []TableView {
	views := []TableView{}
	index := map[int]int{}

	for _, o := range orders {
		i, ok := index[o.TableNumber]
		if !ok {
			views = append(views, TableView{
				Table:            o.TableNumber,
				RestaurantID:     o.RestaurantID,
				ConfirmedOrderID: o.ID,
				IsAccepted:       o.IsAccepted,
				AcceptedBy:       o.AcceptedBy,
				Items:            []ItemAmount{},
			})
			i = len(views) - 1
			index[o.TableNumber] = i
		}

		view := &views[i]
		for _, it := range o.Items {
			merged := false
			for j := range view.Items {
				if view.Items[j].Name == it.ItemName {
					view.Items[j].Quantity += it.Quantity
					merged = true
					break
				}
			}
			if !merged {
				view.Items = append(view.Items, ItemAmount{Name: it.ItemName, Quantity: it.Quantity})
			}
		}
	}
	return views
}

func summarize(orders []*ConfirmedOrder) []KitchenLine {
	totals := map[string]int{}
	for _, o := range orders {
		for _, it := range o.Items {
			totals[it.ItemName] += it.Quantity
		}
	}

	lines := make([]KitchenLine, 0, len(totals))
	for name, qty := range totals {
		lines = append(lines, KitchenLine{Item: name, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Quantity != lines[j].Quantity {
			return lines[i].Quantity > lines[j].Quantity
		}
		return lines[i].Item < lines[j].Item
	})
	return lines
}
