package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/avc/logistics-backoffice/internal/domain"
	"github.com/avc/logistics-backoffice/internal/service"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// StaleHeader выставляется, когда запись прошла, а агрегаты пересчитываются в фоне
const StaleHeader = "X-Aggregates-Stale"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// responder общая запись JSON ответов и перевод ошибок действий в HTTP статусы
type responder struct {
	logger *zap.Logger
}

func statusOf(err error) int {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindConflict:
		return http.StatusConflict
	case service.KindStale:
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}

func (h responder) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// fail пишет ошибку действия; внутренние ошибки логируются и не раскрываются
func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	requestID, _ := r.Context().Value(RequestIDKey).(string)

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.json(w, status, errorResponse{Error: "internal", Message: http.StatusText(status)})
		return
	}

	kind := service.KindOf(err).String()
	if status == http.StatusUnauthorized {
		kind = "unauthorized"
	}
	h.json(w, status, errorResponse{Error: kind, Message: err.Error()})
}

// result пишет результат действия. Для устаревших агрегатов результат отдается
// со статусом 202 и заголовком StaleHeader.
func (h responder) result(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	switch {
	case err == nil:
		h.json(w, status, v)
	case service.IsStale(err):
		h.logger.Warn("aggregates left stale", zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set(StaleHeader, "true")
		h.json(w, http.StatusAccepted, v)
	default:
		h.fail(w, r, err)
	}
}

// decode читает JSON тело запроса; при ошибке сам отвечает 400
func (h responder) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.json(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "failed to read body"})
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		h.json(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return false
	}
	return true
}
