package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tradegate/internal/models"
	"tradegate/internal/stream"
	"tradegate/pkg/utils"
)

// addStreamCommands adds the realtime event feed command.
func addStreamCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "events",
		Short: "Follow the realtime event feed",
		Long:  "Follow order and trade events from the backend's websocket feed until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			streamURL := app.Config.Backend.StreamURL
			if streamURL == "" {
				output.Error("No stream URL configured. Set backend.stream_url in config.toml")
				return fmt.Errorf("stream not configured")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			dropped := make(chan struct{}, 1)
			newFeedClient := func() *stream.Client {
				client := stream.NewClient(streamURL, app.Tokens, app.Logger)
				client.OnEvent(func(event models.StreamEvent) {
					if output.IsJSON() {
						_ = output.JSON(event)
						return
					}
					line := fmt.Sprintf("[%s] %s", event.Timestamp.Format("15:04:05"), event.Type)
					if event.Symbol != "" {
						line += " " + event.Symbol
					}
					if event.Message != "" {
						line += ": " + event.Message
					}
					output.Println(line)
				})
				client.OnError(func(err error) {
					output.Warning("Stream error: %v", err)
					select {
					case dropped <- struct{}{}:
					default:
					}
				})
				return client
			}

			client := newFeedClient()
			if err := client.Connect(ctx); err != nil {
				output.Error("Failed to connect: %v", err)
				return err
			}
			defer func() { _ = client.Disconnect() }()

			output.Info("Connected. Press Ctrl+C to stop.")

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			for {
				select {
				case <-sigs:
					return nil
				case <-ctx.Done():
					return nil
				case <-dropped:
					_ = client.Disconnect()
					client = newFeedClient()
					if err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
						return client.Connect(ctx)
					}); err != nil {
						output.Error("Reconnect failed: %v", err)
						return err
					}
					output.Info("Reconnected.")
				}
			}
		},
	})
}
