package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RepresentativeService определяет методы работы с представителями.
type RepresentativeService interface {
	AddRepresentative(ctx context.Context, in service.RepresentativeInput) (*domain.Representative, error)
	UpdateRepresentative(ctx context.Context, id string, in service.RepresentativeInput) (*domain.Representative, error)
	DeleteRepresentative(ctx context.Context, id string) error
	GetRepresentatives(ctx context.Context) ([]domain.Representative, error)
	GetRepresentativeOrders(ctx context.Context, id string) ([]domain.Order, error)
	AssignRepresentative(ctx context.Context, orderID, representativeID string) (*domain.Order, error)
	UnassignRepresentative(ctx context.Context, orderID string) (*domain.Order, error)
	BulkAssignRepresentative(ctx context.Context, orderIDs []string, representativeID string) error
	RecordRepresentativePayment(ctx context.Context, orderID string, amount float64) (*domain.Order, error)
	RecalculateRepresentativeAssignments(ctx context.Context, id string) (int, error)
}

type RepresentativesHandler struct {
	responder
	representativeService RepresentativeService
}

func NewRepresentativesHandler(representativeService RepresentativeService, logger *zap.Logger) *RepresentativesHandler {
	return &RepresentativesHandler{
		responder:             responder{logger: logger},
		representativeService: representativeService,
	}
}

type assignRequest struct {
	RepresentativeID string `json:"representativeId"`
}

type bulkAssignRequest struct {
	OrderIDs         []string `json:"orderIds"`
	RepresentativeID string   `json:"representativeId"`
}

type paymentRequest struct {
	Amount float64 `json:"amount"`
}

type assignmentsResponse struct {
	AssignedOrders int `json:"assignedOrders"`
}

func (h *RepresentativesHandler) AddRepresentative(w http.ResponseWriter, r *http.Request) {
	var req service.RepresentativeInput
	if !h.decode(w, r, &req) {
		return
	}
	rep, err := h.representativeService.AddRepresentative(r.Context(), req)
	h.result(w, r, http.StatusCreated, rep, err)
}

func (h *RepresentativesHandler) UpdateRepresentative(w http.ResponseWriter, r *http.Request) {
	var req service.RepresentativeInput
	if !h.decode(w, r, &req) {
		return
	}
	rep, err := h.representativeService.UpdateRepresentative(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, rep, err)
}

func (h *RepresentativesHandler) DeleteRepresentative(w http.ResponseWriter, r *http.Request) {
	err := h.representativeService.DeleteRepresentative(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

func (h *RepresentativesHandler) GetRepresentatives(w http.ResponseWriter, r *http.Request) {
	reps, err := h.representativeService.GetRepresentatives(r.Context())
	h.result(w, r, http.StatusOK, reps, err)
}

func (h *RepresentativesHandler) GetRepresentativeOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.representativeService.GetRepresentativeOrders(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, orders, err)
}

func (h *RepresentativesHandler) RecalculateAssignments(w http.ResponseWriter, r *http.Request) {
	count, err := h.representativeService.RecalculateRepresentativeAssignments(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, assignmentsResponse{AssignedOrders: count}, err)
}

// Assign назначает представителя на заказ {id}
func (h *RepresentativesHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.representativeService.AssignRepresentative(r.Context(), chi.URLParam(r, "id"), req.RepresentativeID)
	h.result(w, r, http.StatusOK, order, err)
}

// Unassign снимает представителя с заказа {id}
func (h *RepresentativesHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	order, err := h.representativeService.UnassignRepresentative(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, order, err)
}

func (h *RepresentativesHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.representativeService.BulkAssignRepresentative(r.Context(), req.OrderIDs, req.RepresentativeID)
	h.result(w, r, http.StatusNoContent, nil, err)
}

// RecordPayment записывает оплату, собранную представителем по заказу {id}
func (h *RepresentativesHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.representativeService.RecordRepresentativePayment(r.Context(), chi.URLParam(r, "id"), req.Amount)
	h.result(w, r, http.StatusOK, order, err)
}
