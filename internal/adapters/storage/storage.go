// Package storage persists quotes with GORM, backed by sqlite for local
// development and tests and postgres for deployments.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // migrate source
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jsamuelsen/quote-machine/internal/platform/config"
)

// migrationsSource is where versioned postgres migrations live, relative to
// the working directory.
const migrationsSource = "file://db/migrations"

// Open connects to the configured database and applies pool settings.
func Open(cfg *config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
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

	return db, nil
}

// Migrate brings the schema up to date for the configured driver.
// sqlite uses GORM auto-migration; postgres applies the versioned SQL files
// under db/migrations, which keeps production schema changes reviewable.
func Migrate(db *gorm.DB, cfg *config.DatabaseConfig) error {
	switch cfg.Driver {
	case "sqlite":
		if err := db.AutoMigrate(&quoteRecord{}); err != nil {
			return fmt.Errorf("auto-migrating sqlite schema: %w", err)
		}

		return nil
	case "postgres":
		return RunMigrations(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// RunMigrations applies pending postgres migrations. Already-applied
// migrations are skipped, so calling this on every start is safe.
func RunMigrations(dsn string) error {
	m, err := migrate.New(migrationsSource, dsn)
	if err != nil {
		return fmt.Errorf("initializing migrations: %w", err)
	}

	defer func() {
		// Best effort close; the process is either starting or a one-shot CLI.
		sourceErr, dbErr := m.Close()
		_ = sourceErr
		_ = dbErr
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}
