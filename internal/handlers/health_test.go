package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("Health ok", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(up, "sqlite", zap.NewNop()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[HealthResponse](t, w)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "sqlite", resp.Driver)
	})

	t.Run("Health degraded", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(down, "postgres", zap.NewNop()).Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeBody[HealthResponse](t, w)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Database)
	})

	t.Run("Ready", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHealthHandler(up, "sqlite", zap.NewNop()).Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		NewHealthHandler(down, "sqlite", zap.NewNop()).Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
