package api

import (
	"context"
	"fmt"

	"github.com/quickplate/quickplate-go/core"
)

// LoyaltyBalance fetches the authoritative point balance for a user.
func (c *Client) LoyaltyBalance(ctx context.Context, userID int) (int, error) {
	var out balanceEnvelope
	path := fmt.Sprintf("/api/loyalty/%d", userID)
	if err := c.do(ctx, "api.LoyaltyBalance", "GET", path, nil, &out); err != nil {
		return 0, err
	}
	return out.LoyaltyPoints, nil
}

// ListOffers fetches the active loyalty offers.
func (c *Client) ListOffers(ctx context.Context) ([]core.Offer, error) {
	var out offersEnvelope
	if err := c.do(ctx, "api.ListOffers", "GET", "/api/loyalty/offers", nil, &out); err != nil {
		return nil, err
	}
	return out.Offers, nil
}

// RedeemOffer spends points on an offer. The backend checks the balance;
// an insufficient balance comes back as a server rejection carrying
// core.ErrInsufficientPoints.
func (c *Client) RedeemOffer(ctx context.Context, userID int, offerID string) (*RedeemResult, error) {
	body := map[string]interface{}{
		"userId":  userID,
		"offerId": offerID,
	}

	var out redeemEnvelope
	if err := c.do(ctx, "api.RedeemOffer", "POST", "/api/loyalty/redeem", body, &out); err != nil {
		return nil, err
	}
	return &RedeemResult{
		RemainingPoints: out.RemainingPoints,
		DiscountAmount:  out.DiscountAmount,
	}, nil
}
