// Package cli implements the garmin-mcp command line and MCP server.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/colthorp/garmin-mcp-go/internal/core"
)

// Global flags
var (
	configPath string
	verbose    bool
)

// Loaded by the root command before any subcommand runs.
var (
	cfg    core.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "garmin-mcp",
	Short: "Garmin Connect MCP server",
	Long: `garmin-mcp exposes a Garmin Connect account to LLM agents as a catalog of
MCP tools: activities, health metrics, training status, devices, gear,
body logging and structured workouts.`,
	Version:       core.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := core.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger = core.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", core.DefaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose debug output to stderr")
}
