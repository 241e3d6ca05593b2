package api

import (
	"time"

	"github.com/quickplate/quickplate-go/core"
)

// Wire envelopes. The backend wraps most successful responses in
// {"success": true, ...}; user and meal GETs return the bare object.

type userEnvelope struct {
	Success bool              `json:"success"`
	User    *core.UserProfile `json:"user"`
	Message string            `json:"message,omitempty"`
}

type mealsEnvelope struct {
	Success bool        `json:"success"`
	Meals   []core.Meal `json:"meals"`
}

// orderDTO carries the wire shape of an order; the date is an ISO-8601
// string that may or may not carry a zone suffix.
type orderDTO struct {
	ID            string           `json:"id"`
	UserID        int              `json:"userId"`
	Items         []core.OrderItem `json:"items"`
	Total         float64          `json:"total"`
	Status        core.OrderStatus `json:"status"`
	PickupTime    string           `json:"pickupTime"`
	PaymentMethod string           `json:"paymentMethod"`
	Date          string           `json:"date"`
}

func (d orderDTO) toOrder() core.Order {
	return core.Order{
		ID:            d.ID,
		UserID:        d.UserID,
		Date:          parseTimestamp(d.Date),
		Items:         d.Items,
		Total:         d.Total,
		Status:        d.Status,
		PickupTime:    d.PickupTime,
		PaymentMethod: d.PaymentMethod,
	}
}

type createOrderEnvelope struct {
	Success      bool     `json:"success"`
	Order        orderDTO `json:"order"`
	PointsEarned int      `json:"pointsEarned"`
}

type ordersEnvelope struct {
	Success bool       `json:"success"`
	Orders  []orderDTO `json:"orders"`
}

type orderEnvelope struct {
	Success bool     `json:"success"`
	Order   orderDTO `json:"order"`
}

type balanceEnvelope struct {
	Success       bool `json:"success"`
	LoyaltyPoints int  `json:"loyaltyPoints"`
}

type offersEnvelope struct {
	Success bool         `json:"success"`
	Offers  []core.Offer `json:"offers"`
}

type redeemEnvelope struct {
	Success         bool    `json:"success"`
	RemainingPoints int     `json:"remainingPoints"`
	DiscountAmount  float64 `json:"discountAmount"`
}

type chatEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type recommendationsEnvelope struct {
	Success         bool                  `json:"success"`
	Recommendations []core.Recommendation `json:"recommendations"`
}

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RedeemResult reports the outcome of redeeming points for an offer.
type RedeemResult struct {
	RemainingPoints int
	DiscountAmount  float64
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp is lenient: a malformed date degrades to the zero time
// rather than failing the whole order fetch.
func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
