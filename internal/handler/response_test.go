package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestResponseEnvelope(t *testing.T) {
	tests := map[string]struct {
		write      func(c echo.Context) error
		requestID  string
		wantCode   int
		wantStatus string
	}{
		"success default status": {
			write:      func(c echo.Context) error { return Success(c, 0, "hello", map[string]string{"foo": "bar"}) },
			wantCode:   http.StatusOK,
			wantStatus: "success",
		},
		"error default status": {
			write:      func(c echo.Context) error { return Error(c, 0, "boom") },
			wantCode:   http.StatusInternalServerError,
			wantStatus: "error",
		},
		"request id echoed": {
			write:      func(c echo.Context) error { return Error(c, http.StatusConflict, "busy") },
			requestID:  "rid-1",
			wantCode:   http.StatusConflict,
			wantStatus: "error",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.requestID != "" {
				c.Response().Header().Set(headerRequestID, tt.requestID)
			}

			if err := tt.write(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			payload := decodeEnvelope(t, rec)
			if payload.Status != tt.wantStatus || payload.RequestID != tt.requestID {
				t.Fatalf("unexpected response: %+v", payload)
			}
		})
	}
}
