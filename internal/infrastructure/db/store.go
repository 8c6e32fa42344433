// Package db selects and wires the persistence backend named by
// STORE_DRIVER. Every backend exposes the same repositories.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/config"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
	mongostore "github.com/sweetshop/sweetshop-api/internal/infrastructure/db/mongo"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/sqlstore"
)

// ErrMigrationUnsupported is returned for migration directions a driver has
// no notion of.
var ErrMigrationUnsupported = errors.New("migration not supported by store driver")

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Driver string
	Users  ports.UserRepository
	Sweets ports.SweetRepository

	ping  func(context.Context) error
	close func(context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured backend. SQL schemas are not migrated here;
// see Migrate.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  mongostore.NewUserRepository(database),
			Sweets: mongostore.NewSweetRepository(database),
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil

	case config.DriverPostgres, config.DriverMySQL:
		gdb, err := sqlstore.Open(ctx, sqlConfig(cfg))
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  sqlstore.NewUserRepository(gdb),
			Sweets: sqlstore.NewSweetRepository(gdb),
			ping:   func(ctx context.Context) error { return sqlstore.Ping(ctx, gdb) },
			close:  func(context.Context) error { return sqlstore.Close(gdb) },
		}, nil

	case config.DriverMemory:
		return &Store{
			Driver: cfg.Store.Driver,
			Users:  memory.NewUserRepository(),
			Sweets: memory.NewSweetRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// MigrateUp brings the schema of the configured backend up to date. For
// MongoDB that means creating indexes; the memory store has no schema.
func MigrateUp(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverMySQL:
		return sqlstore.MigrateUp(sqlConfig(cfg))
	case config.DriverMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(ctx) }()
		return mongostore.EnsureIndexes(ctx, database)
	case config.DriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// MigrateDown rolls back steps SQL migrations.
func MigrateDown(cfg *config.Config, steps int) error {
	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverMySQL:
		return sqlstore.MigrateDown(sqlConfig(cfg), steps)
	default:
		return fmt.Errorf("%w: %s", ErrMigrationUnsupported, cfg.Store.Driver)
	}
}

func sqlConfig(cfg *config.Config) sqlstore.Config {
	return sqlstore.Config{Dialect: cfg.Store.Driver, DSN: cfg.SQL.DSN}
}
