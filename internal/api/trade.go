package api

import (
	"context"
	"net/http"

	"tradegate/internal/gateway"
	"tradegate/internal/models"
)

// Trades lists the trades of the authenticated user.
func (c *Client) Trades(ctx context.Context) ([]models.Trade, error) {
	return gateway.Call[[]models.Trade](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodGet,
		Path:         "/trades",
		RequiresAuth: true,
	}, tradesSchema)
}

// PlaceTrade records a single trade for the authenticated user's own
// account. Fan-out to multiple accounts goes through the bulk orchestrator
// instead.
func (c *Client) PlaceTrade(ctx context.Context, req models.OrderRequest) (models.Trade, error) {
	return gateway.Call[models.Trade](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodPost,
		Path:         "/trades",
		Body:         req,
		RequiresAuth: true,
	}, tradeSchema)
}
