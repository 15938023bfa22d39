package api

import (
	"context"
	"fmt"
	"net/http"

	"tradegate/internal/gateway"
	"tradegate/internal/models"
)

// Orders lists the open orders of the authenticated user.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	return gateway.Call[[]models.Order](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodGet,
		Path:         "/orders",
		RequiresAuth: true,
	}, ordersSchema)
}

// PlaceOrder places a single order.
func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (models.Order, error) {
	return gateway.Call[models.Order](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodPost,
		Path:         "/orders",
		Body:         req,
		RequiresAuth: true,
	}, orderSchema)
}

// CancelOrder cancels an order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	_, err := c.gw.Do(ctx, gateway.Descriptor{
		Method:       http.MethodDelete,
		Path:         fmt.Sprintf("/orders/%d", orderID),
		RequiresAuth: true,
	}, nil)
	return err
}
