package api

import (
	"context"
	"fmt"

	"github.com/quickplate/quickplate-go/core"
)

// CreateOrder submits a checkout request. On success it returns the created
// order and the loyalty points earned for it. The order record is owned by
// the backend from this point on.
func (c *Client) CreateOrder(ctx context.Context, req core.OrderRequest) (*core.Order, int, error) {
	var out createOrderEnvelope
	if err := c.do(ctx, "api.CreateOrder", "POST", "/api/orders", req, &out); err != nil {
		return nil, 0, err
	}
	order := out.Order.toOrder()
	return &order, out.PointsEarned, nil
}

// ListUserOrders fetches a user's order history, newest first.
func (c *Client) ListUserOrders(ctx context.Context, userID int) ([]core.Order, error) {
	var out ordersEnvelope
	path := fmt.Sprintf("/api/orders/user/%d", userID)
	if err := c.do(ctx, "api.ListUserOrders", "GET", path, nil, &out); err != nil {
		return nil, err
	}

	orders := make([]core.Order, 0, len(out.Orders))
	for _, dto := range out.Orders {
		orders = append(orders, dto.toOrder())
	}
	return orders, nil
}

// UpdateOrderStatus moves an order through the backend lifecycle. Used by
// counter-side tooling, not the ordering flow.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int, status core.OrderStatus) (*core.Order, error) {
	body := map[string]string{"status": string(status)}

	var out orderEnvelope
	path := fmt.Sprintf("/api/orders/%d/status", orderID)
	if err := c.do(ctx, "api.UpdateOrderStatus", "PUT", path, body, &out); err != nil {
		return nil, err
	}
	order := out.Order.toOrder()
	return &order, nil
}
