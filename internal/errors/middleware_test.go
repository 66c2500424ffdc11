package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"deliveryboard/internal/shared/testutil"
)

func TestErrorMiddlewareLogsByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel slog.Level
	}{
		{"ok", http.StatusOK, slog.LevelInfo},
		{"client error", http.StatusBadRequest, slog.LevelWarn},
		{"server error", http.StatusServiceUnavailable, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			m := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reservas?x=1", nil))

			assert.Equal(t, tt.status, rec.Code)
			testutil.AssertLogContains(t, logs, tt.wantLevel, "http request")
			testutil.AssertLogAttr(t, logs, "query", "x=1")
			testutil.AssertLogAttr(t, logs, "status", int64(tt.status))
		})
	}
}

func TestErrorMiddlewareImplicitOK(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	m := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	testutil.AssertLogAttr(t, logs, "status", int64(http.StatusOK))
	testutil.AssertLogAttr(t, logs, "bytes", int64(2))
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	m := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

	handler := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/confirmacoes", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
	testutil.AssertLogContains(t, logs, slog.LevelError, "http request")
}
