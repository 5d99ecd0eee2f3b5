package app

import (
	"github.com/avc/logistics-backoffice/internal/config"
	"github.com/avc/logistics-backoffice/internal/docstore"
	"github.com/avc/logistics-backoffice/internal/handlers"
	"github.com/avc/logistics-backoffice/internal/recalc"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/avc/logistics-backoffice/internal/utils/jwt"
	"github.com/avc/logistics-backoffice/internal/utils/password"
	"github.com/avc/logistics-backoffice/internal/worker"
	"go.uber.org/zap"
)

// services содержит все сервисы приложения
type services struct {
	users           *service.UserService
	orders          *service.OrderService
	transactions    *service.TransactionService
	representatives *service.RepresentativeService
	tempOrders      *service.TempOrderService
	creditors       *service.CreditorService
	records         *service.RecordService
	messaging       *service.MessagingService
	settings        *service.SettingsService
	portal          *service.PortalService
	auth            *service.AuthService
}

// handlerSet содержит все хендлеры приложения
type handlerSet struct {
	auth            *handlers.AuthHandler
	portal          *handlers.PortalHandler
	health          *handlers.HealthHandler
	users           *handlers.UsersHandler
	orders          *handlers.OrdersHandler
	transactions    *handlers.TransactionsHandler
	representatives *handlers.RepresentativesHandler
	tempOrders      *handlers.TempOrdersHandler
	creditors       *handlers.CreditorsHandler
	records         *handlers.RecordsHandler
	messaging       *handlers.MessagingHandler
	settings        *handlers.SettingsHandler
}

// dependencies содержит все зависимости приложения
type dependencies struct {
	store      *docstore.Store
	services   *services
	handlers   *handlerSet
	jwtManager *jwt.Manager
	workerPool *worker.Pool
}

func storeMode(cfg *config.Config) docstore.Mode {
	if cfg.StoreAtomicTx {
		return docstore.ModeAtomic
	}
	return docstore.ModeCompat
}

// initDependencies создает все зависимости приложения
func initDependencies(cfg *config.Config, db *database, registry *docstore.Registry, logger *zap.Logger) *dependencies {
	store := docstore.New(db.client, registry, storeMode(cfg), logger)
	engine := recalc.NewEngine(store, logger)

	// Очередь пересчета устаревших агрегатов
	workerPool := worker.NewPool(cfg.WorkerPoolSize, cfg.WorkerQueueSize, cfg.WorkerScanInterval, store, engine, logger)

	// Создание утилит
	passwordHasher := password.NewBCryptHasher(password.DefaultCost)
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)

	// Создание сервисов
	deps := service.Deps{
		Store:  store,
		Recalc: engine,
		Repair: workerPool,
		Logger: logger,
	}
	svcs := &services{
		users:           service.NewUserService(deps, passwordHasher),
		orders:          service.NewOrderService(deps),
		transactions:    service.NewTransactionService(deps),
		representatives: service.NewRepresentativeService(deps),
		tempOrders:      service.NewTempOrderService(deps),
		creditors:       service.NewCreditorService(deps),
		records:         service.NewRecordService(deps),
		messaging:       service.NewMessagingService(deps),
		settings:        service.NewSettingsService(deps),
	}
	svcs.portal = service.NewPortalService(svcs.users, svcs.orders, svcs.transactions)
	svcs.auth = service.NewAuthService(
		service.AdminCredentials{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash},
		svcs.users,
		passwordHasher,
		jwtManager,
		logger,
	)

	// Создание handlers
	hdlrs := &handlerSet{
		auth:            handlers.NewAuthHandler(svcs.auth, logger),
		portal:          handlers.NewPortalHandler(svcs.portal, logger),
		health:          handlers.NewHealthHandler(db.client, db.driver, logger),
		users:           handlers.NewUsersHandler(svcs.users, logger),
		orders:          handlers.NewOrdersHandler(svcs.orders, logger),
		transactions:    handlers.NewTransactionsHandler(svcs.transactions, logger),
		representatives: handlers.NewRepresentativesHandler(svcs.representatives, logger),
		tempOrders:      handlers.NewTempOrdersHandler(svcs.tempOrders, logger),
		creditors:       handlers.NewCreditorsHandler(svcs.creditors, logger),
		records:         handlers.NewRecordsHandler(svcs.records, logger),
		messaging:       handlers.NewMessagingHandler(svcs.messaging, logger),
		settings:        handlers.NewSettingsHandler(svcs.settings, logger),
	}

	return &dependencies{
		store:      store,
		services:   svcs,
		handlers:   hdlrs,
		jwtManager: jwtManager,
		workerPool: workerPool,
	}
}
