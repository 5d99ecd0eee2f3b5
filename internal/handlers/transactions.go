package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TransactionService определяет методы работы с журналом операций.
type TransactionService interface {
	AddTransaction(ctx context.Context, in service.TransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in service.TransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetTransactions(ctx context.Context) ([]domain.Transaction, error)
	GetTransactionsByOrder(ctx context.Context, orderID string) ([]domain.Transaction, error)
	GetTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type TransactionsHandler struct {
	responder
	transactionService TransactionService
}

func NewTransactionsHandler(transactionService TransactionService, logger *zap.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		responder:          responder{logger: logger},
		transactionService: transactionService,
	}
}

func (h *TransactionsHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.TransactionInput
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.transactionService.AddTransaction(r.Context(), req)
	h.result(w, r, http.StatusCreated, entry, err)
}

func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.TransactionInput
	if !h.decode(w, r, &req) {
		return
	}
	entry, err := h.transactionService.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, entry, err)
}

func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

// GetTransactions фильтрует журнал по ?orderId= или ?userId=
func (h *TransactionsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.Transaction
		err     error
	)
	query := r.URL.Query()
	switch {
	case query.Get("orderId") != "":
		entries, err = h.transactionService.GetTransactionsByOrder(r.Context(), query.Get("orderId"))
	case query.Get("userId") != "":
		entries, err = h.transactionService.GetTransactionsByUser(r.Context(), query.Get("userId"))
	default:
		entries, err = h.transactionService.GetTransactions(r.Context())
	}
	h.result(w, r, http.StatusOK, entries, err)
}
