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

// addBulkCommands adds bulk trade commands.
func addBulkCommands(rootCmd *cobra.Command, app *App) {
	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Fan a trade out to multiple client accounts",
	}

	bulkCmd.AddCommand(newBulkSubmitCmd(app))
	bulkCmd.AddCommand(newBulkStatusCmd(app))
	bulkCmd.AddCommand(newBulkWatchCmd(app))
	rootCmd.AddCommand(bulkCmd)
}

func parseTargets(raw string) ([]models.TargetID, error) {
	var targets []models.TargetID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid target id %q", part)
		}
		targets = append(targets, models.TargetID(id))
	}
	return targets, nil
}

func newBulkSubmitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <symbol> <percent>",
		Short: "Submit a bulk trade for the given client accounts",
		Long: `Submit one trade intent fanned out to multiple client accounts.

The backend executes the fan-out asynchronously and returns a task ID.
Use 'bulk status' or 'bulk watch' to track per-target outcomes.`,
		Example: `  tradegate bulk submit RELIANCE 5 --targets 1,2,3
  tradegate bulk submit INFY 2.5 --targets 7,9 --side SELL --watch`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			percent, err := decimal.NewFromString(args[1])
			if err != nil || percent.IsNegative() || percent.IsZero() {
				output.Error("Invalid percent allocation: %s", args[1])
				return fmt.Errorf("invalid percent allocation")
			}

			targetsFlag, _ := cmd.Flags().GetString("targets")
			targets, err := parseTargets(targetsFlag)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			sideFlag, _ := cmd.Flags().GetString("side")
			brokerType, _ := cmd.Flags().GetString("broker")
			if brokerType == "" {
				brokerType = app.Config.Bulk.DefaultBrokerType
			}

			task, err := app.Orchestrator.Submit(ctx, models.TradeIntent{
				Symbol:            symbol,
				PercentAllocation: percent,
				Side:              models.Side(strings.ToUpper(sideFlag)),
				OrderKind:         models.OrderKindMarket,
				BrokerType:        brokerType,
				Targets:           targets,
			})
			if err != nil {
				output.Error("Bulk submit failed: %v", err)
				return err
			}

			if output.IsJSON() && !mustBool(cmd, "watch") {
				return output.JSON(task)
			}
			output.Success("Task %s submitted for %d targets", task.TaskID, len(task.SubmittedTargets))

			if mustBool(cmd, "watch") {
				return watchTask(cmd, app, task.TaskID, task.SubmittedTargets)
			}
			return nil
		},
	}

	cmd.Flags().String("targets", "", "Comma-separated client account IDs (required)")
	cmd.Flags().String("side", "BUY", "Trade side: BUY or SELL")
	cmd.Flags().String("broker", "", "Broker type (defaults to bulk.default_broker_type)")
	cmd.Flags().Bool("watch", false, "Poll until the task reaches a terminal state")
	_ = cmd.MarkFlagRequired("targets")
	return cmd
}

func newBulkStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the current snapshot of a bulk trade task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			snapshot, err := app.Orchestrator.Status(ctx, args[0])
			if err != nil {
				output.Error("Status poll failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(snapshot)
			}
			printSnapshot(output, snapshot)
			return nil
		},
	}
}

func newBulkWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Poll a bulk trade task until it reaches a terminal state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchTask(cmd, app, args[0], nil)
		},
	}
}

// watchTask owns the polling loop; the orchestrator itself only exposes the
// read primitive. Polling stops at the first terminal snapshot.
func watchTask(cmd *cobra.Command, app *App, taskID string, submitted []models.TargetID) error {
	output := NewOutput(cmd)
	ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.Bulk.PollTimeout())
	defer cancel()

	interval := app.Config.Bulk.PollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot, err := app.Orchestrator.Status(ctx, taskID)
		if err != nil {
			output.Error("Status poll failed: %v", err)
			return err
		}

		if snapshot.Status.Terminal() {
			if output.IsJSON() {
				return output.JSON(snapshot)
			}
			printSnapshot(output, snapshot)
			if len(submitted) > 0 && !snapshot.CoversTargets(submitted) {
				output.Warning("Outcomes do not cover all submitted targets")
			}
			return nil
		}

		output.Dim("Task %s: %s (%d outcomes so far)", taskID, snapshot.Status, len(snapshot.Outcomes))

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for task %s", taskID)
		case <-ticker.C:
		}
	}
}

func printSnapshot(output *Output, snapshot *models.TaskSnapshot) {
	switch snapshot.Status {
	case models.TaskCompleted:
		output.Success("Task %s: %s", snapshot.TaskID, snapshot.Status)
	case models.TaskFailed:
		output.Error("Task %s: %s", snapshot.TaskID, snapshot.Status)
	default:
		output.Info("Task %s: %s", snapshot.TaskID, snapshot.Status)
	}

	for _, o := range snapshot.Outcomes {
		line := fmt.Sprintf("  target %d: %s", o.TargetID, o.Outcome)
		if o.Reason != "" {
			line += " (" + o.Reason + ")"
		}
		switch o.Outcome {
		case models.OutcomeSuccess:
			output.Success("%s", line)
		case models.OutcomeFailed:
			output.Error("%s", line)
		default:
			output.Warning("%s", line)
		}
	}
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
