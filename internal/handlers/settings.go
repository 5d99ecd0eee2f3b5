package handlers

import (
	"context"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"go.uber.org/zap"
)

type SettingsService interface {
	GetSettings(ctx context.Context) (*domain.AppSettings, error)
	UpdateSettings(ctx context.Context, in service.SettingsUpdate) (*domain.AppSettings, error)
}

type SettingsHandler struct {
	responder
	settingsService SettingsService
}

func NewSettingsHandler(settingsService SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		responder:       responder{logger: logger},
		settingsService: settingsService,
	}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetSettings(r.Context())
	h.result(w, r, http.StatusOK, settings, err)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.SettingsUpdate
	if !h.decode(w, r, &req) {
		return
	}
	settings, err := h.settingsService.UpdateSettings(r.Context(), req)
	h.result(w, r, http.StatusOK, settings, err)
}
