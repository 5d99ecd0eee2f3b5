package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/config"
	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/worker"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App представляет приложение
type App struct {
	config     *config.Config
	logger     *zap.Logger
	db         *database
	router     *chi.Mux
	workerPool *worker.Pool
	server     *http.Server
}

// NewApp создает новое приложение; args аргументы командной строки без имени программы
func NewApp(args []string) (*App, error) {
	ctx := context.Background()

	// Загрузка конфигурации
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	registry, err := docstore.NewRegistry(cfg.StoreTablePrefix, domain.AllCollections...)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection registry: %w", err)
	}

	// Инициализация базы данных и миграции
	db, err := initDatabase(ctx, cfg, registry, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database",
		zap.String("driver", db.driver),
		zap.Bool("atomic_tx", cfg.StoreAtomicTx),
	)
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is not set, admin login is disabled")
	}

	// Инициализация зависимостей
	deps := initDependencies(cfg, db, registry, logger)

	// Настройка роутера
	router := setupRouter(deps.handlers, deps.jwtManager, logger)

	// Создание HTTP сервера
	server := createServer(cfg.RunAddress, router)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		router:     router,
		workerPool: deps.workerPool,
		server:     server,
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск worker pool
	a.workerPool.Start(ctx)
	a.logger.Info("worker pool started")

	// Запуск HTTP сервера и ожидание сигнала завершения
	if err := a.runServer(ctx); err != nil {
		return err
	}

	// Graceful shutdown
	a.shutdown(cancel)

	return nil
}
