package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Tradegate Configuration

[backend]
# Base URL of the brokerage-aggregation backend
base_url = "http://localhost:8000"
# Websocket URL of the realtime event feed (empty disables streaming)
stream_url = ""
# Request timeout in seconds
timeout_seconds = 30
# Session file location (empty uses ~/.config/tradegate/session.json)
session_path = ""

[bulk]
# Broker type used for bulk execution: zerodha, groww
default_broker_type = "zerodha"
# Cadence for polling bulk task status, in seconds
poll_interval_seconds = 2
# How long 'bulk watch' waits for a terminal status, in seconds
poll_timeout_seconds = 300

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to console
console = true
# Log to rotating file
file = true
# Log file location (empty uses ~/.config/tradegate/logs/tradegate.log)
file_path = ""
`

const credentialsTemplate = `# Tradegate Credentials
#
# Keep this file private (chmod 600).

email = ""
password = ""
# TOTP secret for automatic OTP verification during login (optional)
totp_secret = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0600)
}

func writeTemplate(configDir, name, content string, mode os.FileMode) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("writing %s template: %w", name, err)
	}
	return nil
}
