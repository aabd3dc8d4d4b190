package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wartungsmanager-backend/internal/db"
	"wartungsmanager-backend/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Sync()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	logging.Get().Info("Database migrated", zap.String("driver", cfg.Database.Driver))
	fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
	return nil
}
