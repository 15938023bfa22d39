package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tradegate/internal/models"
)

// addTradeCommands adds trade and order commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newSellCmd(app))
	rootCmd.AddCommand(newOrdersCmd(app))
	rootCmd.AddCommand(newCancelOrderCmd(app))
}

func newTradesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trades",
		Short: "List your trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			trades, err := app.API.Trades(ctx)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Dim("No trades")
				return nil
			}
			output.Printf("%-8s %-12s %-10s %-8s %-12s %s\n", "ID", "SYMBOL", "PRICE", "QTY", "CAPITAL", "STATUS")
			for _, t := range trades {
				output.Printf("%-8d %-12s %-10s %-8d %-12s %s\n",
					t.ID, t.Symbol, t.BuyPrice.StringFixed(2), t.Quantity, t.CapitalUsed.StringFixed(2), t.Status)
			}
			return nil
		},
	}
}

func newBuyCmd(app *App) *cobra.Command {
	cmd := newOrderCmd(app, "buy", models.SideBuy)
	cmd.Short = "Place a buy order"
	cmd.Example = `  tradegate buy RELIANCE 10
  tradegate buy INFY 5 --price 1500`
	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	cmd := newOrderCmd(app, "sell", models.SideSell)
	cmd.Short = "Place a sell order"
	cmd.Example = `  tradegate sell RELIANCE 10
  tradegate sell INFY 5 --price 1600`
	return cmd
}

func newOrderCmd(app *App, use string, side models.Side) *cobra.Command {
	cmd := &cobra.Command{
		Use:  use + " <symbol> <quantity>",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			qty, err := strconv.Atoi(args[1])
			if err != nil || qty <= 0 {
				output.Error("Invalid quantity: %s", args[1])
				return fmt.Errorf("invalid quantity")
			}

			priceFlag, _ := cmd.Flags().GetString("price")
			kind := models.OrderKindMarket
			var price *decimal.Decimal
			if priceFlag != "" {
				parsed, err := decimal.NewFromString(priceFlag)
				if err != nil {
					output.Error("Invalid price: %s", priceFlag)
					return fmt.Errorf("invalid price")
				}
				price = &parsed
				kind = models.OrderKindLimit
			}

			order, err := app.API.PlaceOrder(ctx, models.OrderRequest{
				Symbol:   symbol,
				Side:     side,
				Kind:     kind,
				Quantity: qty,
				Price:    price,
			})
			if err != nil {
				output.Error("Order failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(order)
			}
			output.Success("Order %d placed: %s %d %s (%s)", order.ID, order.Side, order.Quantity, order.Symbol, order.Status)
			return nil
		},
	}

	cmd.Flags().String("price", "", "Limit price (market order when omitted)")
	return cmd
}

func newOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your open orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			orders, err := app.API.Orders(ctx)
			if err != nil {
				output.Error("Failed to fetch orders: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(orders)
			}

			if len(orders) == 0 {
				output.Dim("No open orders")
				return nil
			}
			output.Printf("%-8s %-12s %-6s %-8s %-8s %-10s %s\n", "ID", "SYMBOL", "SIDE", "KIND", "QTY", "PRICE", "STATUS")
			for _, o := range orders {
				output.Printf("%-8d %-12s %-6s %-8s %-8d %-10s %s\n",
					o.ID, o.Symbol, o.Side, o.Kind, o.Quantity, o.Price.StringFixed(2), o.Status)
			}
			return nil
		},
	}
}

func newCancelOrderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an open order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				output.Error("Invalid order ID: %s", args[0])
				return fmt.Errorf("invalid order id")
			}

			if err := app.API.CancelOrder(ctx, orderID); err != nil {
				output.Error("Cancel failed: %v", err)
				return err
			}
			output.Success("Order %d cancelled", orderID)
			return nil
		},
	}
}
