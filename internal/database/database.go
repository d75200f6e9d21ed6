// Package database opens the reference server's store and applies its schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/db"
	"github.com/frahmantamala/timesheet-management/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	migrationTable = "schema_migrations"
)

// Open connects gorm to the configured driver. Postgres goes through the pgx
// stdlib driver.
func Open(cfg internal.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		gdb, err = gorm.Open(sqlite.Open(cfg.Source), gormCfg)
	case DriverPostgres:
		var conn *sql.DB
		conn, err = sql.Open("pgx", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to open pgx connection: %w", err)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger != nil {
		logger.Debug("database connected", "driver", cfg.Driver)
	}
	return gdb, nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func prepareGoose(driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(db.Migrations)
	goose.SetTableName(migrationTable)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect(dialect)
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, gdb *gorm.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Rollback reverts the latest applied migration.
func Rollback(ctx context.Context, gdb *gorm.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if err := goose.DownContext(ctx, sqlDB, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// Version reports the current schema version.
func Version(ctx context.Context, gdb *gorm.DB, driver string) (int64, error) {
	if err := prepareGoose(driver); err != nil {
		return 0, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

// SQLX wraps the gorm pool for hand-written queries. The driver name picks
// the bind variable style.
func SQLX(gdb *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	name := "sqlite3"
	if driver == DriverPostgres {
		name = "pgx"
	}
	return sqlx.NewDb(sqlDB, name), nil
}
