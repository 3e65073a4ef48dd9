// Package core provides shared constants, configuration and helpers for garmin-mcp.
package core

import (
	"os"
	"path/filepath"
)

// Upstream configuration
const (
	APIBaseURL = "https://connectapi.garmin.com"
	SSOBaseURL = "https://sso.garmin.com/sso"
	UserAgent  = "com.garmin.android.apps.connectmobile"
	DefaultTZ  = "UTC"
)

// Environment variables
const (
	PasswordEnvVar = "GARMIN_PASSWORD"
	EmailEnvVar    = "GARMIN_EMAIL"
	ConfigEnvVar   = "GARMIN_MCP_CONFIG"
)

// Date formats
const (
	APIDateFmt     = "2006-01-02"
	APIDatetimeFmt = "2006-01-02T15:04:05"
)

// Activity list paging
const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// Workout deletion looks for scheduled instances in this window around today.
const (
	UnscheduleLookbackDays  = 30
	UnscheduleLookaheadDays = 365
)

// MCP server defaults
const (
	ServerName      = "garmin-mcp"
	ProtocolVersion = "2024-11-05"
	DefaultHTTPHost = "127.0.0.1"
	DefaultHTTPPort = 8765
)

// Version is the current garmin-mcp version.
const Version = "0.3.0"

// HomeDir returns ~/.garmin-mcp, the root for local state.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".garmin-mcp")
}

// DefaultConfigPath returns the config file location, honoring GARMIN_MCP_CONFIG.
func DefaultConfigPath() string {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	return filepath.Join(HomeDir(), "config.yaml")
}

// DefaultTokenDBPath returns the default token store database path.
func DefaultTokenDBPath() string {
	return filepath.Join(HomeDir(), "tokens.db")
}
