package api

import (
	"context"
	"net/http"

	"tradegate/internal/gateway"
	"tradegate/internal/models"
)

// Dashboard returns the aggregated account summary.
func (c *Client) Dashboard(ctx context.Context) (models.DashboardSummary, error) {
	return gateway.Call[models.DashboardSummary](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodGet,
		Path:         "/dashboard",
		RequiresAuth: true,
	}, dashboardSchema)
}
