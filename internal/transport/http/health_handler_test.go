package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryboard/internal/services"
	"deliveryboard/internal/shared/testutil"
)

type stubHealth struct {
	ready bool
}

func (s stubHealth) HealthCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Version: "v1.2.3", Timestamp: time.Now()}
}

func (s stubHealth) ReadinessCheck(context.Context) services.HealthStatus {
	status := "ready"
	if !s.ready {
		status = "not_ready"
	}
	return services.HealthStatus{
		Status: status,
		Services: map[string]interface{}{
			"reservation": services.ServiceHealth{Status: status},
		},
	}
}

func (s stubHealth) LivenessCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "alive"}
}

func (s stubHealth) Version() map[string]interface{} {
	return map[string]interface{}{"version": "v1.2.3"}
}

func newHealthRouter(t *testing.T, svc HealthChecker) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	r := chi.NewRouter()
	NewHealthHandler(svc, logger).Register(r)
	return r
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		path       string
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"health", true, "/health", http.StatusOK, "status", "ok"},
		{"live", true, "/health/live", http.StatusOK, "status", "alive"},
		{"ready", true, "/health/ready", http.StatusOK, "status", "ready"},
		{"not ready", false, "/health/ready", http.StatusServiceUnavailable, "status", "not_ready"},
		{"version", true, "/version", http.StatusOK, "version", "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newHealthRouter(t, stubHealth{ready: tt.ready}), http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantValue, decodeBody(t, rec)[tt.wantField])
		})
	}
}

func TestStaticHandler(t *testing.T) {
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>board</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(webDir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "js", "app.js"), []byte("console.log(1)"), 0o644))

	h := StaticHandler(webDir)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"root", http.MethodGet, "/", http.StatusOK, "<html>board</html>"},
		{"asset", http.MethodGet, "/js/app.js", http.StatusOK, "console.log(1)"},
		{"client route", http.MethodGet, "/requisicoes", http.StatusOK, "<html>board</html>"},
		{"missing asset", http.MethodGet, "/js/missing.js", http.StatusNotFound, ""},
		{"traversal", http.MethodGet, "/../../etc/passwd", http.StatusOK, "<html>board</html>"},
		{"post", http.MethodPost, "/", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.URL.Path = tt.path
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServeIndexMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeIndex(t.TempDir()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
