package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecordService определяет методы работы с простыми учетными записями.
type RecordService interface {
	AddDeposit(ctx context.Context, deposit domain.Deposit) (*domain.Deposit, error)
	UpdateDeposit(ctx context.Context, id string, deposit domain.Deposit) (*domain.Deposit, error)
	DeleteDeposit(ctx context.Context, id string) error
	GetDeposits(ctx context.Context) ([]domain.Deposit, error)

	AddExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, id string, expense domain.Expense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetExpenses(ctx context.Context) ([]domain.Expense, error)

	AddNotification(ctx context.Context, notification domain.Notification) (*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
	GetNotifications(ctx context.Context, userID string) ([]domain.Notification, error)

	AddShippingLabel(ctx context.Context, label domain.ManualShippingLabel) (*domain.ManualShippingLabel, error)
	UpdateShippingLabel(ctx context.Context, id string, label domain.ManualShippingLabel) (*domain.ManualShippingLabel, error)
	DeleteShippingLabel(ctx context.Context, id string) error
	GetShippingLabels(ctx context.Context) ([]domain.ManualShippingLabel, error)

	AddInstantSale(ctx context.Context, sale domain.InstantSale) (*domain.InstantSale, error)
	UpdateInstantSale(ctx context.Context, id string, sale domain.InstantSale) (*domain.InstantSale, error)
	DeleteInstantSale(ctx context.Context, id string) error
	GetInstantSales(ctx context.Context) ([]domain.InstantSale, error)
}

type RecordsHandler struct {
	responder
	recordService RecordService
}

func NewRecordsHandler(recordService RecordService, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{
		responder:     responder{logger: logger},
		recordService: recordService,
	}
}

// create и update общие обертки для записей без дополнительной логики в запросе
func create[T any](h *RecordsHandler, add func(context.Context, T) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !h.decode(w, r, &req) {
			return
		}
		record, err := add(r.Context(), req)
		h.result(w, r, http.StatusCreated, record, err)
	}
}

func update[T any](h *RecordsHandler, set func(context.Context, string, T) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !h.decode(w, r, &req) {
			return
		}
		record, err := set(r.Context(), chi.URLParam(r, "id"), req)
		h.result(w, r, http.StatusOK, record, err)
	}
}

func (h *RecordsHandler) remove(del func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := del(r.Context(), chi.URLParam(r, "id"))
		h.result(w, r, http.StatusNoContent, nil, err)
	}
}

func list[T any](h *RecordsHandler, get func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := get(r.Context())
		h.result(w, r, http.StatusOK, records, err)
	}
}

// Routes монтирует CRUD маршруты учетных записей
func (h *RecordsHandler) Routes(r chi.Router) {
	r.Route("/deposits", func(r chi.Router) {
		r.Get("/", list(h, h.recordService.GetDeposits))
		r.Post("/", create(h, h.recordService.AddDeposit))
		r.Put("/{id}", update(h, h.recordService.UpdateDeposit))
		r.Delete("/{id}", h.remove(h.recordService.DeleteDeposit))
	})
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", list(h, h.recordService.GetExpenses))
		r.Post("/", create(h, h.recordService.AddExpense))
		r.Put("/{id}", update(h, h.recordService.UpdateExpense))
		r.Delete("/{id}", h.remove(h.recordService.DeleteExpense))
	})
	r.Route("/shipping-labels", func(r chi.Router) {
		r.Get("/", list(h, h.recordService.GetShippingLabels))
		r.Post("/", create(h, h.recordService.AddShippingLabel))
		r.Put("/{id}", update(h, h.recordService.UpdateShippingLabel))
		r.Delete("/{id}", h.remove(h.recordService.DeleteShippingLabel))
	})
	r.Route("/instant-sales", func(r chi.Router) {
		r.Get("/", list(h, h.recordService.GetInstantSales))
		r.Post("/", create(h, h.recordService.AddInstantSale))
		r.Put("/{id}", update(h, h.recordService.UpdateInstantSale))
		r.Delete("/{id}", h.remove(h.recordService.DeleteInstantSale))
	})
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.GetNotifications)
		r.Post("/", create(h, h.recordService.AddNotification))
		r.Post("/{id}/read", h.MarkNotificationRead)
		r.Delete("/{id}", h.remove(h.recordService.DeleteNotification))
	})
}

// GetNotifications возвращает уведомления; ?userId= добавляет к широковещательным личные
func (h *RecordsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.recordService.GetNotifications(r.Context(), r.URL.Query().Get("userId"))
	h.result(w, r, http.StatusOK, notifications, err)
}

func (h *RecordsHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.recordService.MarkNotificationRead(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}
