package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradegate/pkg/utils"
)

// addDashboardCommands adds the dashboard command.
func addDashboardCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Show the aggregated account summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			summary, err := app.API.Dashboard(ctx)
			if err != nil {
				output.Error("Failed to fetch dashboard: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Printf("Total capital:   %s\n", utils.FormatCurrency(summary.TotalCapital))
			output.Printf("Available cash:  %s\n", utils.FormatCurrency(summary.AvailableCash))
			output.Printf("Blocked funds:   %s\n", utils.FormatCurrency(summary.BlockedFunds))
			output.Printf("Realized PnL:    %s\n", utils.FormatPnL(summary.RealizedPnL))
			output.Printf("Unrealized PnL:  %s\n", utils.FormatPnL(summary.UnrealizedPnL))
			output.Printf("Open trades:     %d\n", summary.OpenTrades)
			output.Printf("Linked clients:  %d\n", summary.LinkedClients)
			return nil
		},
	})
}
