package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderService определяет методы работы с заказами.
type OrderService interface {
	CreateOrder(ctx context.Context, in service.OrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrders(ctx context.Context) ([]domain.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, id string, in service.OrderUpdate) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	SetCustomerWeightDetails(ctx context.Context, id string, weight, pricePerKilo float64) (*domain.Order, error)
	AddCustomerShippingCost(ctx context.Context, id string, cost float64) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	RecalculateOrderBalance(ctx context.Context, id string) (float64, error)
}

type OrdersHandler struct {
	responder
	orderService OrderService
}

func NewOrdersHandler(orderService OrderService, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		responder:    responder{logger: logger},
		orderService: orderService,
	}
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type weightRequest struct {
	Weight       float64 `json:"weight"`
	PricePerKilo float64 `json:"pricePerKilo"`
}

type shippingRequest struct {
	Cost float64 `json:"cost"`
}

type balanceResponse struct {
	RemainingAmount float64 `json:"remainingAmount"`
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.OrderInput
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orderService.CreateOrder(r.Context(), req)
	h.result(w, r, http.StatusCreated, order, err)
}

// GetOrders возвращает все заказы или заказы клиента из ?userId=
func (h *OrdersHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	var (
		orders []domain.Order
		err    error
	)
	if userID := r.URL.Query().Get("userId"); userID != "" {
		orders, err = h.orderService.GetOrdersByUser(r.Context(), userID)
	} else {
		orders, err = h.orderService.GetOrders(r.Context())
	}
	h.result(w, r, http.StatusOK, orders, err)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, order, err)
}

func (h *OrdersHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.OrderUpdate
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orderService.UpdateOrder(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, order, err)
}

func (h *OrdersHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orderService.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	h.result(w, r, http.StatusOK, order, err)
}

func (h *OrdersHandler) SetWeight(w http.ResponseWriter, r *http.Request) {
	var req weightRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orderService.SetCustomerWeightDetails(r.Context(), chi.URLParam(r, "id"), req.Weight, req.PricePerKilo)
	h.result(w, r, http.StatusOK, order, err)
}

func (h *OrdersHandler) AddShippingCost(w http.ResponseWriter, r *http.Request) {
	var req shippingRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orderService.AddCustomerShippingCost(r.Context(), chi.URLParam(r, "id"), req.Cost)
	h.result(w, r, http.StatusOK, order, err)
}

func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	err := h.orderService.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

func (h *OrdersHandler) RecalculateBalance(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.orderService.RecalculateOrderBalance(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, balanceResponse{RemainingAmount: remaining}, err)
}
