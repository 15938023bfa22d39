// Package models provides domain models shared by the gateway and its callers.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend declares money and percent fields as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Side represents the side of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderKind represents the kind of an order.
type OrderKind string

const (
	OrderKindMarket   OrderKind = "MARKET"
	OrderKindLimit    OrderKind = "LIMIT"
	OrderKindStopLoss OrderKind = "SL"
)

// TargetID identifies a downstream client account a trade can be fanned out to.
type TargetID int64

// TradeIntent is a single trading intention, optionally fanned out to
// multiple target accounts via the bulk execution endpoint.
type TradeIntent struct {
	Symbol            string          `json:"stock_symbol"`
	PercentAllocation decimal.Decimal `json:"percent_quantity"`
	Side              Side            `json:"side"`
	OrderKind         OrderKind       `json:"order_kind"`
	BrokerType        string          `json:"broker_type"`
	Targets           []TargetID      `json:"user_ids"`
}

// Trade represents a trade as reported by the backend.
type Trade struct {
	ID          int64           `json:"id"`
	Symbol      string          `json:"stock_ticker"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	Quantity    int             `json:"quantity"`
	CapitalUsed decimal.Decimal `json:"capital_used"`
	Status      string          `json:"status"`
	PlacedAt    time.Time       `json:"created_at"`
}

// Order represents an order as reported by the backend.
type Order struct {
	ID       int64           `json:"id"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Kind     OrderKind       `json:"order_kind"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Status   string          `json:"status"`
}

// OrderRequest is the payload for placing an order on behalf of one account.
// Price is nil for market orders so the field is omitted from the request.
type OrderRequest struct {
	Symbol   string           `json:"symbol"`
	Side     Side             `json:"side"`
	Kind     OrderKind        `json:"order_kind"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// WatchlistItem represents one entry of the user's watchlist.
type WatchlistItem struct {
	ID            int64           `json:"id"`
	Symbol        string          `json:"symbol" csv:"symbol"`
	Name          string          `json:"name" csv:"name"`
	LastPrice     decimal.Decimal `json:"current_price" csv:"last_price"`
	ChangePercent decimal.Decimal `json:"change_percent" csv:"change_percent"`
}

// DashboardSummary is the aggregated account view served by the backend.
type DashboardSummary struct {
	TotalCapital  decimal.Decimal `json:"total_capital"`
	AvailableCash decimal.Decimal `json:"available_cash"`
	BlockedFunds  decimal.Decimal `json:"blocked_funds"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	OpenTrades    int             `json:"open_trades"`
	LinkedClients int             `json:"linked_clients"`
}

// StreamEvent is a single message from the realtime websocket feed.
type StreamEvent struct {
	Type      string          `json:"type"`
	Symbol    string          `json:"symbol,omitempty"`
	OrderID   int64           `json:"order_id,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
