package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/leadbridge/internal/config"
	"github.com/xavierca1/leadbridge/internal/infra/database"
	"github.com/xavierca1/leadbridge/internal/infra/filestore"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

// Backend is the KeyValueStore chosen by STORAGE_DRIVER. File is set only
// for the "file" driver, whose changes can be watched.
type Backend struct {
	usecase.KeyValueStore
	Driver string
	File   *filestore.JSONStore
}

// Open connects to the configured backend and prepares it for use.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		fs := filestore.NewJSONStore(cfg.StoreFile, logger)
		if err := fs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("store file directory: %w", err)
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "path", fs.Path())
		return &Backend{KeyValueStore: fs, Driver: cfg.StorageDriver, File: fs}, nil

	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		db, err := database.NewDBConnection(ctx, cfg.StorageDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo, err := database.NewKVRepository(db, cfg.StorageDriver)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver)
		return &Backend{KeyValueStore: repo, Driver: cfg.StorageDriver}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// Shared reports whether other processes can write this data without a
// file watcher noticing. Such writes arrive only as relayed events, which
// must reload the store. Every SQL backend qualifies, sqlite included.
func (b *Backend) Shared() bool {
	return b.File == nil
}
