package main

import (
	"fmt"
	"strings"

	"task-secretary-api/internal/config"

	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	port       string
	dbPath     string
}

// loadConfig reads the config file and environment, then applies flags.
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if a.port != "" {
		cfg.Server.Port = strings.TrimPrefix(a.port, ":")
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "task-secretary",
		Short:        "Task Secretary API server",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the API (same as "serve")
  task-secretary --config config.yaml

  # Preview how steps would be spread before a deadline
  task-secretary plan --today 2024-01-01 --deadline 2024-01-10 "buy paint" sand paint
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&a.port, "port", "", "HTTP port (overrides config and PORT)")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config and DB_PATH)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newPlanCmd())
	return cmd
}
