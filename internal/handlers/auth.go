package handlers

import (
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	responder
	authService domain.AuthService
}

func NewAuthHandler(authService domain.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   responder{logger: logger},
		authService: authService,
	}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	h.json(w, http.StatusOK, authResponse{Token: token})
}
