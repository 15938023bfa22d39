package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradegate/internal/api"
	"tradegate/pkg/utils"
)

// addWatchlistCommands adds watchlist commands.
func addWatchlistCommands(rootCmd *cobra.Command, app *App) {
	watchlistCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage your watchlist",
	}

	watchlistCmd.AddCommand(newWatchlistShowCmd(app))
	watchlistCmd.AddCommand(newWatchlistAddCmd(app))
	watchlistCmd.AddCommand(newWatchlistRemoveCmd(app))
	watchlistCmd.AddCommand(newWatchlistExportCmd(app))
	rootCmd.AddCommand(watchlistCmd)
}

func newWatchlistShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the watchlist with current prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			items, err := app.API.Watchlist(ctx)
			if err != nil {
				output.Error("Failed to fetch watchlist: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}

			if len(items) == 0 {
				output.Dim("Watchlist is empty")
				return nil
			}
			output.Printf("%-8s %-12s %-24s %-10s %s\n", "ID", "SYMBOL", "NAME", "PRICE", "CHANGE")
			for _, item := range items {
				output.Printf("%-8d %-12s %-24s %-12s %s\n",
					item.ID, item.Symbol, item.Name, item.LastPrice.StringFixed(2), utils.FormatPercent(item.ChangePercent))
			}
			return nil
		},
	}
}

func newWatchlistAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			item, err := app.API.AddToWatchlist(ctx, strings.ToUpper(args[0]))
			if err != nil {
				output.Error("Failed to add %s: %v", args[0], err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(item)
			}
			output.Success("%s added to watchlist", item.Symbol)
			return nil
		},
	}
}

func newWatchlistRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a watchlist entry by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				output.Error("Invalid watchlist ID: %s", args[0])
				return fmt.Errorf("invalid watchlist id")
			}

			if err := app.API.RemoveFromWatchlist(ctx, itemID); err != nil {
				output.Error("Failed to remove entry %d: %v", itemID, err)
				return err
			}
			output.Success("Entry %d removed", itemID)
			return nil
		},
	}
}

func newWatchlistExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the watchlist as CSV",
		Example: `  tradegate watchlist export
  tradegate watchlist export --file watchlist.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			items, err := app.API.Watchlist(ctx)
			if err != nil {
				output.Error("Failed to fetch watchlist: %v", err)
				return err
			}

			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return api.ExportWatchlistCSV(cmd.OutOrStdout(), items)
			}

			f, err := os.Create(file)
			if err != nil {
				output.Error("Failed to create %s: %v", file, err)
				return err
			}
			defer f.Close()

			if err := api.ExportWatchlistCSV(f, items); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			output.Success("Watchlist exported to %s", file)
			return nil
		},
	}

	cmd.Flags().String("file", "", "Output file (stdout when omitted)")
	return cmd
}
