package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreditorService определяет методы работы с кредиторами и внешними долгами.
type CreditorService interface {
	AddCreditor(ctx context.Context, in service.CreditorInput) (*domain.Creditor, error)
	UpdateCreditor(ctx context.Context, id string, in service.CreditorInput) (*domain.Creditor, error)
	DeleteCreditor(ctx context.Context, id string) error
	GetCreditors(ctx context.Context) ([]domain.Creditor, error)
	RecalculateCreditorDebt(ctx context.Context, id string) (float64, error)
	AddExternalDebt(ctx context.Context, in service.ExternalDebtInput) (*domain.ExternalDebt, error)
	UpdateExternalDebt(ctx context.Context, id string, in service.ExternalDebtInput) (*domain.ExternalDebt, error)
	DeleteExternalDebt(ctx context.Context, id string) error
	GetExternalDebts(ctx context.Context, creditorID string) ([]domain.ExternalDebt, error)
}

type CreditorsHandler struct {
	responder
	creditorService CreditorService
}

func NewCreditorsHandler(creditorService CreditorService, logger *zap.Logger) *CreditorsHandler {
	return &CreditorsHandler{
		responder:       responder{logger: logger},
		creditorService: creditorService,
	}
}

type debtResponse struct {
	TotalDebt float64 `json:"totalDebt"`
}

func (h *CreditorsHandler) AddCreditor(w http.ResponseWriter, r *http.Request) {
	var req service.CreditorInput
	if !h.decode(w, r, &req) {
		return
	}
	creditor, err := h.creditorService.AddCreditor(r.Context(), req)
	h.result(w, r, http.StatusCreated, creditor, err)
}

func (h *CreditorsHandler) UpdateCreditor(w http.ResponseWriter, r *http.Request) {
	var req service.CreditorInput
	if !h.decode(w, r, &req) {
		return
	}
	creditor, err := h.creditorService.UpdateCreditor(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, creditor, err)
}

func (h *CreditorsHandler) DeleteCreditor(w http.ResponseWriter, r *http.Request) {
	err := h.creditorService.DeleteCreditor(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

func (h *CreditorsHandler) GetCreditors(w http.ResponseWriter, r *http.Request) {
	creditors, err := h.creditorService.GetCreditors(r.Context())
	h.result(w, r, http.StatusOK, creditors, err)
}

func (h *CreditorsHandler) RecalculateDebt(w http.ResponseWriter, r *http.Request) {
	total, err := h.creditorService.RecalculateCreditorDebt(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, debtResponse{TotalDebt: total}, err)
}

func (h *CreditorsHandler) AddExternalDebt(w http.ResponseWriter, r *http.Request) {
	var req service.ExternalDebtInput
	if !h.decode(w, r, &req) {
		return
	}
	debt, err := h.creditorService.AddExternalDebt(r.Context(), req)
	h.result(w, r, http.StatusCreated, debt, err)
}

func (h *CreditorsHandler) UpdateExternalDebt(w http.ResponseWriter, r *http.Request) {
	var req service.ExternalDebtInput
	if !h.decode(w, r, &req) {
		return
	}
	debt, err := h.creditorService.UpdateExternalDebt(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, debt, err)
}

func (h *CreditorsHandler) DeleteExternalDebt(w http.ResponseWriter, r *http.Request) {
	err := h.creditorService.DeleteExternalDebt(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

// GetExternalDebts возвращает долги; ?creditorId= ограничивает одним кредитором
func (h *CreditorsHandler) GetExternalDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.creditorService.GetExternalDebts(r.Context(), r.URL.Query().Get("creditorId"))
	h.result(w, r, http.StatusOK, debts, err)
}
