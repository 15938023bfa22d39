package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// addAuthCommands adds authentication commands.
func addAuthCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSignupCmd(app))
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
	rootCmd.AddCommand(newAuthStatusCmd(app))
}

func newSignupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Register a new account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			email := app.Config.Credentials.Email
			password := app.Config.Credentials.Password
			if email == "" || password == "" {
				output.Error("No credentials configured. Set email and password in credentials.toml")
				return fmt.Errorf("credentials not configured")
			}

			if _, err := app.API.Signup(ctx, email, password); err != nil {
				output.Error("Signup failed: %v", err)
				return err
			}
			output.Success("Account created for %s", email)
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the backend",
		Long: `Login to the brokerage-aggregation backend.

With a password configured, signin completes in one step. Without one, the
passwordless flow is used: an OTP request followed by the code minted from
the configured TOTP secret, the --otp flag, or an interactive prompt.`,
		Example: `  tradegate login
  tradegate login --otp 123456`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			email := app.Config.Credentials.Email
			if email == "" {
				output.Error("No credentials configured. Set email in credentials.toml")
				return fmt.Errorf("credentials not configured")
			}

			if app.API.Authenticated() {
				output.Info("Already logged in as %s", email)
				return nil
			}

			password := app.Config.Credentials.Password
			totpSecret := app.Config.Credentials.TOTPSecret
			otp, _ := cmd.Flags().GetString("otp")

			switch {
			case password != "":
				if _, err := app.API.Login(ctx, email, password); err != nil {
					output.Error("Login failed: %v", err)
					return err
				}
			case totpSecret != "":
				if _, err := app.API.AutoLogin(ctx, email, totpSecret); err != nil {
					output.Error("Login failed: %v", err)
					return err
				}
			default:
				if err := app.API.RequestOTP(ctx, email); err != nil {
					output.Error("OTP request failed: %v", err)
					return err
				}
				code := otp
				if code == "" {
					var err error
					code, err = promptOTP()
					if err != nil {
						return err
					}
				}
				if _, err := app.API.LoginWithOTP(ctx, email, code); err != nil {
					output.Error("OTP login failed: %v", err)
					return err
				}
			}

			output.Success("Login successful")
			return nil
		},
	}

	cmd.Flags().String("otp", "", "One-time password for the passwordless flow")
	return cmd
}

func promptOTP() (string, error) {
	fmt.Fprint(os.Stderr, "OTP: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading OTP: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := app.API.Logout(ctx); err != nil {
				output.Warning("Logout finished with errors: %v", err)
				return err
			}
			output.Success("Logged out")
			return nil
		},
	}
}

func newAuthStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			authenticated := app.API.Authenticated()
			if output.IsJSON() {
				return output.JSON(map[string]bool{"authenticated": authenticated})
			}
			if authenticated {
				output.Success("Session active")
			} else {
				output.Warning("Not logged in. Run 'tradegate login'")
			}
			return nil
		},
	}
}
