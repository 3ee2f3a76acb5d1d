package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskbot/internal/config"
	"taskbot/internal/repository"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskbot",
		Short:         "Telegram task manager with recurring tasks",
		Long:          "Task bot keeps per-user task lists in SQLite, talks to users over Telegram and clones recurring tasks once a day.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./taskbot.yaml when present)")

	root.AddCommand(newServeCmd(&configPath), newTickCmd(&configPath))
	return root
}

// openStore opens the database named by cfg. The returned func closes it.
func openStore(cfg config.Config) (*repository.Store, func(), error) {
	db, err := repository.NewDB(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("db handle: %w", err)
	}
	return repository.NewStore(db), func() { _ = sqlDB.Close() }, nil
}
