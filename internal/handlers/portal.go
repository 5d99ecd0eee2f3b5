package handlers

import (
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PortalHandler личный кабинет клиента и публичное отслеживание
type PortalHandler struct {
	responder
	portal domain.CustomerPortal
}

func NewPortalHandler(portal domain.CustomerPortal, logger *zap.Logger) *PortalHandler {
	return &PortalHandler{
		responder: responder{logger: logger},
		portal:    portal,
	}
}

// trackResponse публичная часть заказа без цен и данных клиента
type trackResponse struct {
	TrackingID         string             `json:"trackingId"`
	InvoiceNumber      string             `json:"invoiceNumber"`
	Status             domain.OrderStatus `json:"status"`
	RepresentativeName string             `json:"representativeName,omitempty"`
}

func (h *PortalHandler) customerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := GetClaims(r.Context())
	if !ok || claims.Subject == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.Subject, true
}

func (h *PortalHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	user, err := h.portal.Profile(r.Context(), userID)
	h.result(w, r, http.StatusOK, user, err)
}

func (h *PortalHandler) Orders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	orders, err := h.portal.Orders(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.json(w, http.StatusOK, orders)
}

func (h *PortalHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	entries, err := h.portal.Transactions(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(entries) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.json(w, http.StatusOK, entries)
}

func (h *PortalHandler) Track(w http.ResponseWriter, r *http.Request) {
	order, err := h.portal.Track(r.Context(), chi.URLParam(r, "trackingId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.json(w, http.StatusOK, trackResponse{
		TrackingID:         order.TrackingID,
		InvoiceNumber:      order.InvoiceNumber,
		Status:             order.Status,
		RepresentativeName: order.RepresentativeName,
	})
}
