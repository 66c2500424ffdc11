package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "deliveryboard/internal/errors"
)

type confirmBody struct {
	ID      string `json:"id" validate:"required,max=128"`
	Arrived *bool  `json:"arrived" validate:"required"`
	Kind    string `json:"kind" validate:"required,recordkind"`
}

func newValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	return NewValidationMiddleware(nil, apierrors.NewErrorHandler(nil, false))
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantField  string
	}{
		{name: "valid", body: `{"id":"abc","arrived":true,"kind":"reserva"}`, wantOK: true},
		{name: "arrived false is present", body: `{"id":"abc","arrived":false,"kind":"requisition"}`, wantOK: true},
		{name: "missing id", body: `{"arrived":true,"kind":"reserva"}`, wantStatus: http.StatusBadRequest, wantField: "id"},
		{name: "missing arrived", body: `{"id":"abc","kind":"reserva"}`, wantStatus: http.StatusBadRequest, wantField: "arrived"},
		{name: "unknown kind", body: `{"id":"abc","arrived":true,"kind":"invoice"}`, wantStatus: http.StatusBadRequest, wantField: "kind"},
		{name: "malformed json", body: `{"id":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: ``, wantStatus: http.StatusBadRequest},
		{name: "oversized", body: `{"id":"` + strings.Repeat("x", DefaultMaxBodySize) + `"}`, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidation(t)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/confirmacoes", strings.NewReader(tt.body))

			var dst confirmBody
			ok := v.DecodeAndValidate(rec, req, &dst)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Zero(t, rec.Body.Len())
				return
			}
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantField != "" {
				var problem map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
			}
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator(apierrors.NewErrorHandler(nil, false), "application/json")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/confirmacoes", strings.NewReader("id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/confirmacoes", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/reservation/refresh", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "bodiless POST passes")
}

func TestValidateEnum(t *testing.T) {
	v := NewQueryParamValidator(apierrors.NewErrorHandler(nil, false))
	allowed := []string{"xlsx", "csv"}

	tests := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"", "xlsx", true},
		{"?format=CSV", "csv", true},
		{"?format=pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/export"+tt.query, nil), "format", allowed, "xlsx")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
