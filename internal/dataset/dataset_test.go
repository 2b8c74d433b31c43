package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bara-directory/seeder/internal/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSONBusinesses(t *testing.T) {
	path := writeFile(t, "businesses.json", `[
  {"id":"RW0001","name":"Kigali Grill","category":"Restaurant","address":"Remera, Kigali","city":"Kigali","country":"Rwanda",
   "phone":"+250 788123456","description":"Kigali Grill offers dining.","rating":4.5,"verified":true,"website":null,
   "email":"info@kigaligrill.rw","created_at":"2025-11-03T10:15:00"},
  {"name":"Huye Clinic","category":"Healthcare"}
]`)

	records, err := Load[entity.Business](path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.Name != "Kigali Grill" || first.Rating != 4.5 || !first.Verified || first.Website != nil {
		t.Fatalf("unexpected record: %+v", first)
	}
	if first.CreatedAt.String() != "2025-11-03T10:15:00Z" {
		t.Fatalf("unexpected created_at: %s", first.CreatedAt)
	}
	// missing keys load as zero values and are rejected later per record
	if records[1].Address != "" || !records[1].CreatedAt.IsZero() {
		t.Fatalf("expected zero values for missing keys: %+v", records[1])
	}
}

func TestLoadCSVEvents(t *testing.T) {
	path := writeFile(t, "events.csv", strings.Join([]string{
		"title,category,start_date,end_date,venue_name,venue_address,city,country,organizer,tags,capacity,image_url",
		`Tech Meetup,Business & Networking,2025-12-01T18:00:00,2025-12-01T21:00:00,kLab Rwanda,"kLab Rwanda, Kigali, Rwanda",Kigali,Rwanda,Kigali Events,business|kigali,150,`,
	}, "\n"))

	events, err := Load[entity.Event](path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Title != "Tech Meetup" || ev.VenueAddress != "kLab Rwanda, Kigali, Rwanda" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.Tags) != 2 || ev.Tags[1] != "kigali" {
		t.Fatalf("unexpected tags: %v", ev.Tags)
	}
	if ev.Capacity == nil || *ev.Capacity != 150 {
		t.Fatalf("unexpected capacity: %v", ev.Capacity)
	}
	if ev.ImageURL != nil {
		t.Fatalf("expected nil image for empty cell")
	}
	if ev.EndDate.Sub(ev.StartDate.Time).Hours() != 3 {
		t.Fatalf("unexpected duration")
	}
}

func TestLoadXLSXEvents(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	rows := [][]any{
		{"title", "category", "start_date", "end_date", "venue_name", "city", "organizer"},
		{"Afrobeats Concert", "Music & Concerts", "2024-12-20T19:00:00", "2024-12-20T23:00:00", "Grand Arena", "Accra", "National Theatre Ghana"},
		{},
		{"Kente Festival", "Arts & Culture", "2024-12-22T10:00:00", "2024-12-22T16:00:00", "National Theatre", "Accra"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	path := writeFile(t, "ghana.xlsx", buf.String())

	events, err := Load[entity.Event](path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected blank rows skipped, got %d events", len(events))
	}
	if events[1].Title != "Kente Festival" || events[1].Organizer != "" {
		t.Fatalf("unexpected padded row: %+v", events[1])
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load[entity.Business](filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	bad := writeFile(t, "bad.json", `{"name": "not an array"}`)
	_, err := Load[entity.Business](bad)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != bad || perr.Format != FormatJSON {
		t.Fatalf("unexpected parse error: %+v", perr)
	}

	if _, err := Load[entity.Business](writeFile(t, "data.txt", "x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.json")
	events := []entity.Event{{Title: "Yoga Session", Category: "Sports & Fitness", Tags: entity.Tags{"sports"}}}
	if err := Save(path, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := Load[entity.Event](path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Yoga Session" || loaded[0].Tags[0] != "sports" {
		t.Fatalf("unexpected reload: %+v", loaded)
	}

	empty, err := Marshal[entity.Event](nil)
	if err != nil || strings.TrimSpace(string(empty)) != "[]" {
		t.Fatalf("expected empty array, got %q (%v)", empty, err)
	}
}
