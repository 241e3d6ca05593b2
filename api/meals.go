package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quickplate/quickplate-go/core"
)

// ListMeals fetches the available catalog, optionally filtered by category.
// An empty category returns everything.
func (c *Client) ListMeals(ctx context.Context, category core.MealCategory) ([]core.Meal, error) {
	path := "/api/meals"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}

	var out mealsEnvelope
	if err := c.do(ctx, "api.ListMeals", "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Meals, nil
}

// GetMeal fetches a single catalog entry by id.
func (c *Client) GetMeal(ctx context.Context, mealID string) (*core.Meal, error) {
	var meal core.Meal
	path := fmt.Sprintf("/api/meals/%s", url.PathEscape(mealID))
	if err := c.do(ctx, "api.GetMeal", "GET", path, nil, &meal); err != nil {
		return nil, err
	}
	return &meal, nil
}
