package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gocarina/gocsv"

	terrors "tradegate/internal/errors"
	"tradegate/internal/gateway"
	"tradegate/internal/models"
)

// Watchlist returns the user's watchlist with current prices.
func (c *Client) Watchlist(ctx context.Context) ([]models.WatchlistItem, error) {
	return gateway.Call[[]models.WatchlistItem](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodGet,
		Path:         "/watchlist",
		RequiresAuth: true,
	}, watchlistSchema)
}

// AddToWatchlist adds a symbol to the user's watchlist.
func (c *Client) AddToWatchlist(ctx context.Context, symbol string) (models.WatchlistItem, error) {
	return gateway.Call[models.WatchlistItem](ctx, c.gw, gateway.Descriptor{
		Method:       http.MethodPost,
		Path:         "/watchlist",
		Body:         map[string]string{"symbol": symbol},
		RequiresAuth: true,
	}, watchlistItemSchema)
}

// RemoveFromWatchlist removes a watchlist entry by ID.
func (c *Client) RemoveFromWatchlist(ctx context.Context, itemID int64) error {
	_, err := c.gw.Do(ctx, gateway.Descriptor{
		Method:       http.MethodDelete,
		Path:         fmt.Sprintf("/watchlist/%d", itemID),
		RequiresAuth: true,
	}, nil)
	return err
}

// ExportWatchlistCSV writes the given watchlist entries as CSV.
func ExportWatchlistCSV(w io.Writer, items []models.WatchlistItem) error {
	if err := gocsv.Marshal(items, w); err != nil {
		return terrors.Wrap(err, "failed to write watchlist CSV")
	}
	return nil
}
