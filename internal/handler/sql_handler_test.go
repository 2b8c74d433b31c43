package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/service"
)

func newSQLHandler(t *testing.T) *SQLHandler {
	t.Helper()
	pools, err := catalog.Default()
	if err != nil {
		t.Fatalf("load pools: %v", err)
	}
	return NewSQLHandler(service.NewSQLService(service.NewNormalizer("Rwanda", pools), nil, nil))
}

func TestSQLHandler_Render(t *testing.T) {
	tests := map[string]struct {
		fields     map[string]string
		files      map[string][2]string
		expectCode int
		contains   []string
	}{
		"no datasets": {
			expectCode: http.StatusBadRequest,
		},
		"unsupported format": {
			files:      map[string][2]string{"events": {"events.yaml", "- title: x"}},
			expectCode: http.StatusBadRequest,
		},
		"businesses insert": {
			files:      map[string][2]string{"businesses": {"businesses.csv", businessesCSV}},
			expectCode: http.StatusOK,
			contains:   []string{"-- Directory seed data", "-- Business 1: Kigali Grill"},
		},
		"events upsert": {
			fields:     map[string]string{"title": "Events only", "upsert": "true"},
			files:      map[string][2]string{"events": {"events.json", eventsJSON}},
			expectCode: http.StatusOK,
			contains:   []string{"-- Events only", "ON CONFLICT (title, start_date, city_id)"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req, rec := multipartRequest(t, "/admin/sql", tt.fields, tt.files)
			c := e.NewContext(req, rec)

			if err := newSQLHandler(t).Render(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.expectCode != http.StatusOK {
				return
			}
			if rec.Header().Get("X-Run-ID") == "" || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "application/sql") {
				t.Fatalf("unexpected headers %v", rec.Header())
			}
			for _, want := range tt.contains {
				if !strings.Contains(rec.Body.String(), want) {
					t.Fatalf("expected script to contain %q:\n%s", want, rec.Body.String())
				}
			}
		})
	}
}
