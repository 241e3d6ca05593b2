// Package cart implements the in-session selection of meals: quantities,
// the single active offer slot, and derived totals. All mutations are pure
// in-memory operations that cannot fail; quantity handling self-clamps so
// no item ever survives with a non-positive quantity.
package cart

import (
	"sync"

	"github.com/quickplate/quickplate-go/core"
)

// Cart holds the meals a user intends to purchase in the current session.
// Items keep insertion order for display; totals are recomputed on every
// read, never cached. Safe for concurrent use.
type Cart struct {
	mu          sync.RWMutex
	items       []core.CartItem
	activeOffer *core.Offer
	logger      core.Logger
}

// New creates an empty cart
func New() *Cart {
	return &Cart{logger: &core.NoOpLogger{}}
}

// SetLogger configures the logger for this cart
func (c *Cart) SetLogger(logger core.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// AddToCart inserts a meal with the given quantity, or increments the
// existing entry when the meal is already present. Quantity is not
// validated here; callers are expected to pass positive values, and
// UpdateQuantity is the sanctioned path for decrements.
func (c *Cart) AddToCart(meal core.Meal, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == meal.ID {
			c.items[i].Quantity += quantity
			c.logger.Debug("Cart quantity merged", map[string]interface{}{
				"operation": "cart_add",
				"meal_id":   meal.ID,
				"quantity":  c.items[i].Quantity,
			})
			return
		}
	}

	c.items = append(c.items, core.CartItem{Meal: meal, Quantity: quantity})
	c.logger.Debug("Cart item added", map[string]interface{}{
		"operation": "cart_add",
		"meal_id":   meal.ID,
		"quantity":  quantity,
	})
}

// RemoveFromCart deletes the entry unconditionally. Removing an absent meal
// is a no-op, not an error.
func (c *Cart) RemoveFromCart(mealID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == mealID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.logger.Debug("Cart item removed", map[string]interface{}{
				"operation": "cart_remove",
				"meal_id":   mealID,
			})
			return
		}
	}
}

// UpdateQuantity applies a delta to an item's quantity, clamping at zero.
// An item clamped to zero is removed. Updating an absent meal is a no-op.
func (c *Cart) UpdateQuantity(mealID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != mealID {
			continue
		}
		quantity := c.items[i].Quantity + delta
		if quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.logger.Debug("Cart item clamped out", map[string]interface{}{
				"operation": "cart_update_quantity",
				"meal_id":   mealID,
			})
			return
		}
		c.items[i].Quantity = quantity
		c.logger.Debug("Cart quantity updated", map[string]interface{}{
			"operation": "cart_update_quantity",
			"meal_id":   mealID,
			"quantity":  quantity,
		})
		return
	}
}

// Clear empties the cart and drops the active offer. Called after a
// confirmed checkout or on explicit user action.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.activeOffer = nil
	c.logger.Debug("Cart cleared", map[string]interface{}{
		"operation": "cart_clear",
	})
}

// ApplyOffer sets the single active-offer slot. Applying a new offer
// replaces any prior one; offers never stack.
func (c *Cart) ApplyOffer(offer core.Offer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeOffer = &offer
	c.logger.Debug("Offer applied", map[string]interface{}{
		"operation": "cart_apply_offer",
		"offer_id":  offer.ID,
	})
}

// RemoveOffer clears the active-offer slot
func (c *Cart) RemoveOffer() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeOffer = nil
}

// ActiveOffer returns a copy of the active offer, or nil when none is set
func (c *Cart) ActiveOffer() *core.Offer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.activeOffer == nil {
		return nil
	}
	offer := *c.activeOffer
	return &offer
}

// Reorder replaces the entire cart contents with the given items and clears
// any active offer; an offer from a prior session is never implicitly
// carried into a new cart.
func (c *Cart) Reorder(items []core.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]core.CartItem, len(items))
	copy(c.items, items)
	c.activeOffer = nil

	c.logger.Debug("Cart rebuilt from past order", map[string]interface{}{
		"operation":  "cart_reorder",
		"item_count": len(items),
	})
}

// Items returns a copy of the cart contents in insertion order
func (c *Cart) Items() []core.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]core.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Total is the sum of price x quantity over all items, recomputed on every
// call.
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, item := range c.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Count is the sum of all quantities, used for cart-badge display
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Snapshot converts the current contents into order-item snapshots for a
// checkout request.
func (c *Cart) Snapshot() []core.OrderItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]core.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, core.OrderItem{
			MealID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return items
}
