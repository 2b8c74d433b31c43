package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/service"
)

func newGenerateHandler(t *testing.T) *GenerateHandler {
	t.Helper()
	pools, err := catalog.Default()
	if err != nil {
		t.Fatalf("load pools: %v", err)
	}
	return NewGenerateHandler(service.NewGeneratorService(pools, nil))
}

func TestGenerateHandler_Generate(t *testing.T) {
	tests := map[string]struct {
		kind       string
		body       string
		expectCode int
		expectN    int
	}{
		"invalid payload":    {kind: "businesses", body: "{", expectCode: http.StatusBadRequest},
		"unknown kind":       {kind: "users", body: `{"profile":"rwanda","count":1}`, expectCode: http.StatusNotFound},
		"unknown profile":    {kind: "events", body: `{"profile":"atlantis","count":1}`, expectCode: http.StatusBadRequest},
		"count out of range": {kind: "events", body: `{"profile":"rwanda","count":0}`, expectCode: http.StatusBadRequest},
		"businesses":         {kind: "businesses", body: `{"profile":"rwanda","count":5,"seed":1}`, expectCode: http.StatusCreated, expectN: 5},
		"events":             {kind: "events", body: `{"profile":"ghana","count":3,"seed":1}`, expectCode: http.StatusCreated, expectN: 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/admin/generate/"+tt.kind, bytes.NewBufferString(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("kind")
			c.SetParamValues(tt.kind)

			if err := newGenerateHandler(t).Generate(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.expectCode != http.StatusCreated {
				return
			}

			var payload struct {
				Data struct {
					RunID   string            `json:"run_id"`
					Count   int               `json:"count"`
					Records []json.RawMessage `json:"records"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if payload.Data.RunID == "" || payload.Data.Count != tt.expectN || len(payload.Data.Records) != tt.expectN {
				t.Fatalf("unexpected response %s", rec.Body.String())
			}
		})
	}
}

func TestGenerateHandler_Profiles(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/profiles", nil), rec)

	if err := newGenerateHandler(t).Profiles(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil || len(payload.Data) < 2 {
		t.Fatalf("unexpected profiles %s (%v)", rec.Body.String(), err)
	}
}
