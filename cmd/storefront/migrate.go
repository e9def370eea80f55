package main

import (
	"fmt"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		l := logging.New(cfg.LogLevel)

		gdb, err := db.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db init: %w", err)
		}
		defer db.Close(gdb)

		if err := db.Migrate(cmd.Context(), gdb); err != nil {
			return err
		}
		l.Info("migrate_completed")
		return nil
	},
}
