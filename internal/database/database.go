// Package database opens the storage backend selected by database.driver.
package database

import (
	"alcyxob/trainer-app/internal/config"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/repository/memory"
	"alcyxob/trainer-app/internal/repository/mongo"
	"alcyxob/trainer-app/internal/repository/postgres"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Backend is an opened storage backend.
type Backend struct {
	Driver string
	Repos  repository.Repositories

	migrate func(ctx context.Context) error
	close   func() error
}

// Migrate creates the tables or indexes the repositories need. It is idempotent.
func (b *Backend) Migrate(ctx context.Context) error {
	if b.migrate == nil {
		return nil
	}
	return b.migrate(ctx)
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the configured driver. debug enables query logging where supported.
func Open(ctx context.Context, cfg config.DatabaseConfig, debug bool) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Setup(ctx, cfg.DSN, debug)
		if err != nil {
			return nil, err
		}
		zap.L().Info("connected to postgres")
		return &Backend{
			Driver:  cfg.Driver,
			Repos:   postgres.NewRepositories(db),
			migrate: func(ctx context.Context) error { return postgres.CreateTables(ctx, db) },
			close:   db.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		db := client.Database(cfg.Name)
		zap.L().Info("connected to mongodb", zap.String("database", cfg.Name))
		return &Backend{
			Driver: cfg.Driver,
			Repos:  mongo.NewRepositories(db),
			migrate: func(ctx context.Context) error {
				mongo.EnsureIndexes(ctx, db)
				return nil
			},
			close: func() error { return mongo.DisconnectDB(client) },
		}, nil

	case config.DriverMemory:
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return &Backend{Driver: cfg.Driver, Repos: memory.NewRepositories()}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
