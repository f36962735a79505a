package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddleware_PanicRendersProblemJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("workbook gone")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-123"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, TypeInternal, problem["type"])
	assert.Equal(t, float64(http.StatusInternalServerError), problem["status"])
	// Problem trace_id matches the request ID the logs carry.
	assert.Equal(t, "req-123", problem["trace_id"])
	assert.NotContains(t, problem["detail"], "workbook gone")

	assert.Contains(t, buf.String(), "panic recovered")
}

func TestErrorMiddleware_PassesResponseThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pivot", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestErrorMiddleware_LogLevelTracksStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{name: "2xx logs info", status: http.StatusOK, wantLevel: `"level":"INFO"`},
		{name: "4xx logs warn", status: http.StatusNotFound, wantLevel: `"level":"WARN"`},
		{name: "5xx logs error", status: http.StatusBadGateway, wantLevel: `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, buf.String(), "request completed")
			assert.Contains(t, buf.String(), tt.wantLevel)
		})
	}
}
