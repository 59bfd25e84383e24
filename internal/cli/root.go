// Package cli implements the gatherhub command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gatherhub",
	Short: "Event feed aggregation service",
	Long: `gatherhub aggregates event listings from multiple sources into one
normalized, deduplicated feed, served over a JSON API with live WebSocket
updates for newly discovered events.`,
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $GATHERHUB_CONFIG_DIR/config.yaml)")
}
