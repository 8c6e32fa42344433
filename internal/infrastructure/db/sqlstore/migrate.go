package sqlstore

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies every pending migration. Running it on an up-to-date
// schema is not an error.
func MigrateUp(cfg Config) error {
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(cfg Config, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return runMigration(cfg, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func runMigration(cfg Config, apply func(*migrate.Migrate) error) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := apply(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate %s: %w", cfg.Dialect, err)
	}
	return nil
}

func newMigrator(cfg Config) (*migrate.Migrate, error) {
	databaseURL, err := migrationURL(cfg)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Dialect)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return m, nil
}

// migrationURL turns the connection DSN into the URL form golang-migrate
// expects for the dialect.
func migrationURL(cfg Config) (string, error) {
	switch cfg.Dialect {
	case DialectPostgres:
		return cfg.DSN, nil
	case DialectMySQL:
		dsn, err := mysqlDSN(cfg.DSN)
		if err != nil {
			return "", err
		}
		return "mysql://" + dsn, nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}
}
