package main

import (
	"fmt"
	"os"

	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promptmaster",
	Short: constants.AppName,
	Long: `PromptMaster learning platform API. Usage:

	promptmaster [serve|migrate|seed]

Running without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and the global logger shared by every command.
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
