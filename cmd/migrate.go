package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal/database"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations against the configured database",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := database.Open(cfg.Database, lg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if migrateRollback {
		if err := database.Rollback(ctx, db, cfg.Database.Driver); err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
	} else if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := database.Version(ctx, db, cfg.Database.Driver)
	if err != nil {
		return err
	}
	lg.InfoContext(ctx, "migrations applied", "version", version)
	fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
	return nil
}
