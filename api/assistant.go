package api

import (
	"context"
	"fmt"

	"github.com/quickplate/quickplate-go/core"
)

// Chat sends one assistant message with prior exchanges as history and
// returns the reply text.
func (c *Client) Chat(ctx context.Context, message string, history []core.ChatExchange) (string, error) {
	if history == nil {
		history = []core.ChatExchange{}
	}
	body := map[string]interface{}{
		"message": message,
		"history": history,
	}

	var out chatEnvelope
	if err := c.do(ctx, "api.Chat", "POST", "/api/ai/chat", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Recommendations fetches personalized meal suggestions derived from the
// user's order history.
func (c *Client) Recommendations(ctx context.Context, userID int) ([]core.Recommendation, error) {
	var out recommendationsEnvelope
	path := fmt.Sprintf("/api/ai/recommendations/%d", userID)
	if err := c.do(ctx, "api.Recommendations", "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}
