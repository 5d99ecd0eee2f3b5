package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TempOrderService определяет методы работы с временными накладными.
type TempOrderService interface {
	AddTempOrder(ctx context.Context, in service.TempOrderInput) (*domain.TempOrder, error)
	ConvertTempOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateTempOrder(ctx context.Context, id string, in service.TempOrderUpdate) (*domain.TempOrder, error)
	UpdateSubOrder(ctx context.Context, tempID, subID string, in service.SubOrderUpdate) (*domain.TempOrder, error)
	MergeTempOrders(ctx context.Context, ids []string, invoiceName string) (*domain.TempOrder, error)
	SplitTempOrder(ctx context.Context, id string, subOrderIDs []string, invoiceName string) (*domain.TempOrder, error)
	DeleteTempOrder(ctx context.Context, id string) error
	GetTempOrders(ctx context.Context) ([]domain.TempOrder, error)
	GetTempOrder(ctx context.Context, id string) (*domain.TempOrder, error)
}

type TempOrdersHandler struct {
	responder
	tempOrderService TempOrderService
}

func NewTempOrdersHandler(tempOrderService TempOrderService, logger *zap.Logger) *TempOrdersHandler {
	return &TempOrdersHandler{
		responder:        responder{logger: logger},
		tempOrderService: tempOrderService,
	}
}

type mergeRequest struct {
	IDs         []string `json:"ids"`
	InvoiceName string   `json:"invoiceName"`
}

type splitRequest struct {
	SubOrderIDs []string `json:"subOrderIds"`
	InvoiceName string   `json:"invoiceName"`
}

func (h *TempOrdersHandler) AddTempOrder(w http.ResponseWriter, r *http.Request) {
	var req service.TempOrderInput
	if !h.decode(w, r, &req) {
		return
	}
	temp, err := h.tempOrderService.AddTempOrder(r.Context(), req)
	h.result(w, r, http.StatusCreated, temp, err)
}

func (h *TempOrdersHandler) GetTempOrders(w http.ResponseWriter, r *http.Request) {
	temps, err := h.tempOrderService.GetTempOrders(r.Context())
	h.result(w, r, http.StatusOK, temps, err)
}

func (h *TempOrdersHandler) GetTempOrder(w http.ResponseWriter, r *http.Request) {
	temp, err := h.tempOrderService.GetTempOrder(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, temp, err)
}

func (h *TempOrdersHandler) UpdateTempOrder(w http.ResponseWriter, r *http.Request) {
	var req service.TempOrderUpdate
	if !h.decode(w, r, &req) {
		return
	}
	temp, err := h.tempOrderService.UpdateTempOrder(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, temp, err)
}

func (h *TempOrdersHandler) UpdateSubOrder(w http.ResponseWriter, r *http.Request) {
	var req service.SubOrderUpdate
	if !h.decode(w, r, &req) {
		return
	}
	temp, err := h.tempOrderService.UpdateSubOrder(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "subId"), req)
	h.result(w, r, http.StatusOK, temp, err)
}

func (h *TempOrdersHandler) ConvertTempOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.tempOrderService.ConvertTempOrder(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusCreated, order, err)
}

func (h *TempOrdersHandler) MergeTempOrders(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !h.decode(w, r, &req) {
		return
	}
	temp, err := h.tempOrderService.MergeTempOrders(r.Context(), req.IDs, req.InvoiceName)
	h.result(w, r, http.StatusCreated, temp, err)
}

func (h *TempOrdersHandler) SplitTempOrder(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !h.decode(w, r, &req) {
		return
	}
	temp, err := h.tempOrderService.SplitTempOrder(r.Context(), chi.URLParam(r, "id"), req.SubOrderIDs, req.InvoiceName)
	h.result(w, r, http.StatusCreated, temp, err)
}

func (h *TempOrdersHandler) DeleteTempOrder(w http.ResponseWriter, r *http.Request) {
	err := h.tempOrderService.DeleteTempOrder(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}
