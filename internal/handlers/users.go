package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService определяет методы работы с клиентами.
type UserService interface {
	AddUser(ctx context.Context, in service.UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, in service.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsers(ctx context.Context) ([]domain.User, error)
	RecalculateUserStats(ctx context.Context, id string) (domain.UserStats, error)
}

type UsersHandler struct {
	responder
	userService UserService
}

func NewUsersHandler(userService UserService, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		responder:   responder{logger: logger},
		userService: userService,
	}
}

func (h *UsersHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req service.UserInput
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.userService.AddUser(r.Context(), req)
	h.result(w, r, http.StatusCreated, user, err)
}

func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req service.UserInput
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.userService.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	h.result(w, r, http.StatusOK, user, err)
}

func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.userService.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusNoContent, nil, err)
}

func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetUser(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, user, err)
}

func (h *UsersHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetUsers(r.Context())
	h.result(w, r, http.StatusOK, users, err)
}

func (h *UsersHandler) RecalculateStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.RecalculateUserStats(r.Context(), chi.URLParam(r, "id"))
	h.result(w, r, http.StatusOK, stats, err)
}
