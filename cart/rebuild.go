package cart

import "github.com/quickplate/quickplate-go/core"

// Rebuild resolves a past order's item snapshots against the live catalog.
// Snapshots whose meal id no longer exists in the catalog are silently
// dropped: reconstruction degrades rather than fails when the menu has
// moved on. The resolved items carry current catalog data (price, name,
// availability) with the ordered quantities.
func Rebuild(items []core.OrderItem, catalog []core.Meal) []core.CartItem {
	byID := make(map[string]core.Meal, len(catalog))
	for _, meal := range catalog {
		byID[meal.ID] = meal
	}

	resolved := make([]core.CartItem, 0, len(items))
	for _, item := range items {
		meal, ok := byID[item.MealID]
		if !ok {
			continue
		}
		resolved = append(resolved, core.CartItem{Meal: meal, Quantity: item.Quantity})
	}
	return resolved
}
