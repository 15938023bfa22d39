package api

import "tradegate/internal/schema"

// Declared response shapes, checked at the gateway boundary before any
// payload reaches a caller.
var (
	tokenPairSchema = schema.New("TokenPair", schema.Object(
		schema.F("access_token", schema.String()),
		schema.F("refresh_token", schema.String()),
		schema.Opt("token_type", schema.String()),
	))

	messageSchema = schema.New("Message", schema.Object(
		schema.F("message", schema.String()),
	))

	tradeShape = schema.Object(
		schema.F("id", schema.Number()),
		schema.F("stock_ticker", schema.String()),
		schema.F("buy_price", schema.Number()),
		schema.F("quantity", schema.Number()),
		schema.F("capital_used", schema.Number()),
		schema.F("status", schema.String()),
		schema.Opt("created_at", schema.String()),
	)

	tradeSchema  = schema.New("Trade", tradeShape)
	tradesSchema = schema.New("TradeList", schema.Array(tradeShape))

	orderShape = schema.Object(
		schema.F("id", schema.Number()),
		schema.F("symbol", schema.String()),
		schema.F("side", schema.Enum("BUY", "SELL")),
		schema.F("order_kind", schema.Enum("MARKET", "LIMIT", "SL")),
		schema.F("quantity", schema.Number()),
		schema.Opt("price", schema.Number()),
		schema.F("status", schema.String()),
	)

	orderSchema  = schema.New("Order", orderShape)
	ordersSchema = schema.New("OrderList", schema.Array(orderShape))

	watchlistItemShape = schema.Object(
		schema.F("id", schema.Number()),
		schema.F("symbol", schema.String()),
		schema.Opt("name", schema.String()),
		schema.Opt("current_price", schema.Number()),
		schema.Opt("change_percent", schema.Number()),
	)

	watchlistSchema     = schema.New("Watchlist", schema.Array(watchlistItemShape))
	watchlistItemSchema = schema.New("WatchlistItem", watchlistItemShape)

	dashboardSchema = schema.New("DashboardSummary", schema.Object(
		schema.F("total_capital", schema.Number()),
		schema.F("available_cash", schema.Number()),
		schema.Opt("blocked_funds", schema.Number()),
		schema.Opt("realized_pnl", schema.Number()),
		schema.Opt("unrealized_pnl", schema.Number()),
		schema.F("open_trades", schema.Number()),
		schema.Opt("linked_clients", schema.Number()),
	))
)
