package app

import (
	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/handlers"
	"github.com/avc/logistics-backoffice/internal/utils/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// setupRouter создает и настраивает роутер
func setupRouter(hdlrs *handlerSet, jwtManager *jwt.Manager, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	setupMiddleware(r, logger)

	// Маршруты
	setupRoutes(r, hdlrs, jwtManager)

	return r
}

// setupMiddleware настраивает middleware для роутера
func setupMiddleware(r *chi.Mux, logger *zap.Logger) {
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(middleware.Compress(5))
}

// setupRoutes настраивает маршруты приложения
func setupRoutes(r *chi.Mux, h *handlerSet, jwtManager *jwt.Manager) {
	// Health check эндпоинты
	r.Get("/health", h.health.Health)
	r.Get("/ready", h.health.Ready)

	// Публичные эндпоинты
	r.Post("/api/auth/login", h.auth.Login)
	r.Get("/api/track/{trackingId}", h.portal.Track)

	// Личный кабинет клиента
	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(jwtManager))
		r.Use(handlers.RequireRole(domain.RoleCustomer))
		r.Get("/api/me", h.portal.Profile)
		r.Get("/api/me/orders", h.portal.Orders)
		r.Get("/api/me/transactions", h.portal.Transactions)
	})

	// Административный API
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(jwtManager))
		r.Use(handlers.RequireRole(domain.RoleAdmin))
		adminRoutes(r, h)
	})
}

func adminRoutes(r chi.Router, h *handlerSet) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.users.GetUsers)
		r.Post("/", h.users.AddUser)
		r.Get("/{id}", h.users.GetUser)
		r.Put("/{id}", h.users.UpdateUser)
		r.Delete("/{id}", h.users.DeleteUser)
		r.Post("/{id}/recalculate", h.users.RecalculateStats)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.orders.GetOrders)
		r.Post("/", h.orders.CreateOrder)
		r.Post("/assign", h.representatives.BulkAssign)
		r.Get("/{id}", h.orders.GetOrder)
		r.Put("/{id}", h.orders.UpdateOrder)
		r.Delete("/{id}", h.orders.DeleteOrder)
		r.Put("/{id}/status", h.orders.UpdateOrderStatus)
		r.Put("/{id}/weight", h.orders.SetWeight)
		r.Post("/{id}/shipping-cost", h.orders.AddShippingCost)
		r.Post("/{id}/recalculate", h.orders.RecalculateBalance)
		r.Put("/{id}/representative", h.representatives.Assign)
		r.Delete("/{id}/representative", h.representatives.Unassign)
		r.Post("/{id}/representative-payment", h.representatives.RecordPayment)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.transactions.GetTransactions)
		r.Post("/", h.transactions.AddTransaction)
		r.Put("/{id}", h.transactions.UpdateTransaction)
		r.Delete("/{id}", h.transactions.DeleteTransaction)
	})

	r.Route("/representatives", func(r chi.Router) {
		r.Get("/", h.representatives.GetRepresentatives)
		r.Post("/", h.representatives.AddRepresentative)
		r.Put("/{id}", h.representatives.UpdateRepresentative)
		r.Delete("/{id}", h.representatives.DeleteRepresentative)
		r.Get("/{id}/orders", h.representatives.GetRepresentativeOrders)
		r.Post("/{id}/recalculate", h.representatives.RecalculateAssignments)
	})

	r.Route("/temp-orders", func(r chi.Router) {
		r.Get("/", h.tempOrders.GetTempOrders)
		r.Post("/", h.tempOrders.AddTempOrder)
		r.Post("/merge", h.tempOrders.MergeTempOrders)
		r.Get("/{id}", h.tempOrders.GetTempOrder)
		r.Put("/{id}", h.tempOrders.UpdateTempOrder)
		r.Delete("/{id}", h.tempOrders.DeleteTempOrder)
		r.Post("/{id}/convert", h.tempOrders.ConvertTempOrder)
		r.Post("/{id}/split", h.tempOrders.SplitTempOrder)
		r.Put("/{id}/sub-orders/{subId}", h.tempOrders.UpdateSubOrder)
	})

	r.Route("/creditors", func(r chi.Router) {
		r.Get("/", h.creditors.GetCreditors)
		r.Post("/", h.creditors.AddCreditor)
		r.Put("/{id}", h.creditors.UpdateCreditor)
		r.Delete("/{id}", h.creditors.DeleteCreditor)
		r.Post("/{id}/recalculate", h.creditors.RecalculateDebt)
	})

	r.Route("/external-debts", func(r chi.Router) {
		r.Get("/", h.creditors.GetExternalDebts)
		r.Post("/", h.creditors.AddExternalDebt)
		r.Put("/{id}", h.creditors.UpdateExternalDebt)
		r.Delete("/{id}", h.creditors.DeleteExternalDebt)
	})

	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", h.messaging.GetConversations)
		r.Post("/", h.messaging.CreateConversation)
		r.Get("/{id}/messages", h.messaging.GetMessages)
		r.Post("/{id}/messages", h.messaging.SendMessage)
		r.Post("/{id}/read", h.messaging.MarkRead)
	})

	r.Get("/settings", h.settings.GetSettings)
	r.Put("/settings", h.settings.UpdateSettings)

	h.records.Routes(r)
}
