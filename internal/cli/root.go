// Package cli provides the command-line interface for the client.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradegate/internal/api"
	"tradegate/internal/bulk"
	"tradegate/internal/config"
	"tradegate/internal/gateway"
	"tradegate/internal/session"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Tokens       session.Store
	API          *api.Client
	Orchestrator *bulk.Orchestrator
}

// NewApp wires the gateway, API client, and orchestrator from configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	sessionPath := cfg.Backend.SessionPath
	if sessionPath == "" {
		sessionPath = session.DefaultSessionPath()
	}
	tokens := session.NewFileStore(sessionPath)

	gw := gateway.New(gateway.Config{
		BaseURL: cfg.Backend.BaseURL,
		Tokens:  tokens,
		Logger:  logger,
		Timeout: cfg.Backend.Timeout(),
	})

	return &App{
		Config:       cfg,
		Logger:       logger,
		Tokens:       tokens,
		API:          api.NewClient(gw),
		Orchestrator: bulk.New(gw, logger),
	}
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := NewApp(cfg, logger)

	rootCmd := &cobra.Command{
		Use:           "tradegate",
		Short:         "Client for the brokerage-aggregation backend",
		Long:          "tradegate mediates authenticated access to the brokerage-aggregation backend:\nlogin and transparent session renewal, trades, orders, watchlist, dashboard,\nand asynchronous bulk trade execution across linked client accounts.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	addAuthCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addBulkCommands(rootCmd, app)
	addWatchlistCommands(rootCmd, app)
	addDashboardCommands(rootCmd, app)
	addStreamCommands(rootCmd, app)

	return rootCmd
}
