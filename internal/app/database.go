package app

import (
	"context"
	"fmt"

	"github.com/avc/logistics-backoffice/internal/config"
	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/repository/postgres"
	"github.com/avc/logistics-backoffice/internal/repository/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// database открытое хранилище выбранного драйвера
type database struct {
	client docstore.Client
	driver string
	close  func()
}

// initDatabase подключается к базе, выполняет миграции таблиц коллекций и возвращает клиент хранилища
func initDatabase(ctx context.Context, cfg *config.Config, registry *docstore.Registry, logger *zap.Logger) (*database, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return initSQLite(ctx, cfg.DatabaseURI, registry, logger)
	default:
		return initPostgres(ctx, cfg.DatabaseURI, registry, logger)
	}
}

func initPostgres(ctx context.Context, databaseURI string, registry *docstore.Registry, logger *zap.Logger) (*database, error) {
	dbPool, err := pgxpool.New(ctx, databaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.RunMigrations(ctx, dbPool, registry.Tables(), logger); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations completed successfully", zap.String("driver", config.DriverPostgres))

	return &database{
		client: postgres.NewClient(dbPool),
		driver: config.DriverPostgres,
		close:  dbPool.Close,
	}, nil
}

func initSQLite(ctx context.Context, path string, registry *docstore.Registry, logger *zap.Logger) (*database, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}

	if err := sqlite.RunMigrations(ctx, db, registry.Tables(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations completed successfully", zap.String("driver", config.DriverSQLite))

	return &database{
		client: sqlite.NewClient(db),
		driver: config.DriverSQLite,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close sqlite database", zap.Error(err))
			}
		},
	}, nil
}
