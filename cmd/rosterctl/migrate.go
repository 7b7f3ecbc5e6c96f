package main

import (
	"log/slog"

	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/storage"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg databaseConfig
			if err := config.Parse(&cfg); err != nil {
				return err
			}

			// connecting migrates
			if _, err := storage.NewDatabase(cfg.Postgresql, slog.Default()); err != nil {
				return err
			}
			slog.Info("Database migrated", "database", cfg.Postgresql.DatabaseName)
			return nil
		},
	}
}
