package core

import "time"

// MealCategory classifies catalog entries by meal period.
type MealCategory string

const (
	CategoryBreakfast MealCategory = "Breakfast"
	CategoryLunch     MealCategory = "Lunch"
	CategoryDinner    MealCategory = "Dinner"
	CategorySnacks    MealCategory = "Snacks"
)

// Meal is a catalog entry. The backend owns the catalog; the client treats
// meals as immutable snapshots of whatever the last fetch returned.
type Meal struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    MealCategory `json:"category"`
	Price       float64      `json:"price"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	PrepTime    int          `json:"prepTime"` // minutes
}

// CartItem is a meal selected into the cart. Quantity is always >= 1 while
// the item is present; an item whose quantity reaches zero is removed.
type CartItem struct {
	Meal
	Quantity int `json:"quantity"`
}

// Offer is a loyalty-points-redeemable discount. At most one offer is active
// on a cart at a time.
type Offer struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	PointsRequired int     `json:"pointsRequired"`
	DiscountAmount float64 `json:"discountAmount"`
	Active         bool    `json:"active"`
}

// OrderStatus follows the backend's order lifecycle.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "Placed"
	OrderPreparing OrderStatus = "Preparing"
	OrderReady     OrderStatus = "Ready"
	OrderCompleted OrderStatus = "Completed"
)

// OrderItem is a point-in-time snapshot of a meal at order creation.
// It is decoupled from the live catalog so historical orders stay stable
// even when meals are renamed, repriced, or removed.
type OrderItem struct {
	MealID   string  `json:"mealId"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order mirrors an order record owned by the backend. The client only ever
// reads orders; it never mutates them locally.
type Order struct {
	ID            string      `json:"id"`
	UserID        int         `json:"userId"`
	Date          time.Time   `json:"date"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	PickupTime    string      `json:"pickupTime,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
}

// Tier is the loyalty rank label. It is computed and owned by the backend;
// the client never derives tier transitions from points.
type Tier string

const (
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// UserProfile is the signed-in account as last reported by the backend.
// LoyaltyPoints is authoritative on the server; local adjustments are a
// projection reconciled on the next authoritative fetch.
type UserProfile struct {
	ID            int    `json:"id"`
	SAPID         string `json:"sapId"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
	Tier          Tier   `json:"tier,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// TierLabel returns the display tier, defaulting to Bronze when the backend
// has not assigned one.
func (u *UserProfile) TierLabel() Tier {
	if u == nil || u.Tier == "" {
		return TierBronze
	}
	return u.Tier
}

// SignupRequest carries a new-account registration.
type SignupRequest struct {
	SAPID           string `json:"sapId"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left
// untouched by the backend.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// OrderRequest is the checkout payload sent to the backend.
type OrderRequest struct {
	UserID        int         `json:"userId"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	PickupTime    string      `json:"pickupTime,omitempty"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	PointsUsed    int         `json:"pointsUsed"`
}

// ChatExchange is one completed turn of assistant conversation, in the
// shape the backend consumes as history.
type ChatExchange struct {
	User      string `json:"user,omitempty"`
	Assistant string `json:"assistant,omitempty"`
}

// Recommendation is a personalized meal suggestion from the backend.
type Recommendation struct {
	Name     string       `json:"name"`
	Reason   string       `json:"reason"`
	Category MealCategory `json:"category"`
}
