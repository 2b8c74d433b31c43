package generator

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/entity"
)

func loadProfile(t *testing.T, name string) *catalog.Profile {
	t.Helper()
	pools, err := catalog.Default()
	if err != nil {
		t.Fatalf("load pools: %v", err)
	}
	profile, err := pools.Profile(name)
	if err != nil {
		t.Fatalf("profile %s: %v", name, err)
	}
	return profile
}

func TestBusinessesRespectPools(t *testing.T) {
	g := New(loadProfile(t, "rwanda"), 42)
	businesses := g.Businesses(500, 201)

	if len(businesses) != 500 {
		t.Fatalf("expected 500 businesses, got %d", len(businesses))
	}
	if businesses[0].ID != "RW0201" || businesses[499].ID != "RW0700" {
		t.Fatalf("unexpected ids: %s .. %s", businesses[0].ID, businesses[499].ID)
	}

	seen := make(map[string]bool, len(businesses))
	for _, b := range businesses {
		if b.Rating < 3.5 || b.Rating > 5.0 {
			t.Fatalf("rating out of range: %v", b.Rating)
		}
		if !entity.IsBusinessCategory(b.Category) {
			t.Fatalf("unexpected category %q", b.Category)
		}
		if seen[b.Name] {
			t.Fatalf("duplicate business name %q", b.Name)
		}
		seen[b.Name] = true

		if !strings.HasPrefix(b.Phone, "+250 ") {
			t.Fatalf("unexpected phone %q", b.Phone)
		}
		if !strings.HasSuffix(b.Address, ", Kigali") || b.City != "Kigali" || b.Country != "Rwanda" {
			t.Fatalf("unexpected location: %+v", b)
		}
		if !strings.HasPrefix(b.Email, "info@") || !strings.HasSuffix(b.Email, ".rw") || strings.ContainsAny(b.Email, " &") {
			t.Fatalf("unexpected email %q", b.Email)
		}
		if b.Website != nil && !strings.HasPrefix(*b.Website, "www.") {
			t.Fatalf("unexpected website %q", *b.Website)
		}
		if !strings.HasPrefix(b.Description, b.Name+" ") {
			t.Fatalf("description should start with the name: %q", b.Description)
		}
		if b.CreatedAt.Month() != 11 || b.CreatedAt.Year() != 2025 {
			t.Fatalf("created_at outside window: %s", b.CreatedAt)
		}
		if b.Status != entity.BusinessActive {
			t.Fatalf("unexpected status %q", b.Status)
		}
	}
}

func TestEventsRespectPools(t *testing.T) {
	g := New(loadProfile(t, "rwanda"), 7)
	events := g.Events(300, 50)

	titles := make(map[string]bool, len(events))
	for _, ev := range events {
		if !ev.EndDate.After(ev.StartDate.Time) {
			t.Fatalf("end %s is not after start %s", ev.EndDate, ev.StartDate)
		}
		if titles[ev.Title] {
			t.Fatalf("duplicate title %q", ev.Title)
		}
		titles[ev.Title] = true

		if ev.Status != entity.EventUpcoming || ev.IsPublic == nil || !*ev.IsPublic {
			t.Fatalf("unexpected status/visibility: %+v", ev)
		}
		if ev.ImageURL == nil || ev.RegistrationURL == nil || ev.Capacity == nil {
			t.Fatalf("expected image, registration and capacity: %+v", ev)
		}
		if len(ev.Tags) != 4 || ev.Tags[0] != strings.ToLower(strings.Fields(ev.Category)[0]) || ev.Tags[1] != "kigali" {
			t.Fatalf("unexpected tags: %v", ev.Tags)
		}
		h := ev.StartDate.Hour()
		if h != 10 && h != 14 && (h < 17 || h > 21) {
			t.Fatalf("unexpected start hour %d", h)
		}
	}
	if events[0].ID != "EV0050" || *events[0].RegistrationURL != "https://sinc.events/event/50" {
		t.Fatalf("unexpected id or registration url: %s %s", events[0].ID, *events[0].RegistrationURL)
	}
}

func TestGhanaCapacityMayBeEmpty(t *testing.T) {
	g := New(loadProfile(t, "ghana"), 3)
	events := g.Events(200, 1)

	withoutCapacity := 0
	for _, ev := range events {
		if ev.Capacity == nil {
			withoutCapacity++
		}
		if ev.RegistrationURL != nil {
			t.Fatalf("ghana profile has no registration template")
		}
	}
	if withoutCapacity == 0 {
		t.Fatalf("expected some events without capacity")
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	profile := loadProfile(t, "rwanda")
	a := New(profile, 99).Businesses(20, 1)
	b := New(profile, 99).Businesses(20, 1)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical output for identical seeds")
	}
}

func TestReserveAvoidsExistingNames(t *testing.T) {
	profile := loadProfile(t, "rwanda")
	first := New(profile, 5).Businesses(30, 1)

	g := New(profile, 5)
	names := make([]string, 0, len(first))
	for _, b := range first {
		names = append(names, b.Name)
	}
	g.Reserve(names, nil)
	for _, b := range g.Businesses(30, 31) {
		for _, existing := range names {
			if b.Name == existing {
				t.Fatalf("generated reserved name %q", b.Name)
			}
		}
	}
}

func TestNameRegistryClaim(t *testing.T) {
	tests := map[string]struct {
		existing     []string
		wantName     string
		wantAttempts int
		wantFallback bool
	}{
		"fresh name": {
			wantName:     "Kigali Grill",
			wantAttempts: 1,
		},
		"numeric fallback": {
			existing:     []string{"Kigali Grill"},
			wantAttempts: MaxNameAttempts,
			wantFallback: true,
		},
		"exhausted random suffixes": {
			existing:     exhaustedNames("Kigali Grill"),
			wantName:     "Kigali Grill 1000",
			wantAttempts: MaxNameAttempts,
			wantFallback: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewNameRegistry(rand.New(rand.NewSource(1)), tt.existing...)
			calls := 0
			got, attempts, fellBack := r.Claim(func() (string, string) {
				calls++
				return "Kigali Grill", "Kigali Grill"
			}, "%s %d")

			if attempts != tt.wantAttempts || calls != tt.wantAttempts {
				t.Fatalf("expected %d attempts, got %d (calls %d)", tt.wantAttempts, attempts, calls)
			}
			if fellBack != tt.wantFallback {
				t.Fatalf("expected fallback %v, got %v", tt.wantFallback, fellBack)
			}
			if tt.wantName != "" && got != tt.wantName {
				t.Fatalf("expected %q, got %q", tt.wantName, got)
			}
			if tt.wantFallback && !strings.HasPrefix(got, "Kigali Grill ") {
				t.Fatalf("expected numeric suffix, got %q", got)
			}
			if !r.Has(got) {
				t.Fatalf("claimed name should be registered")
			}
		})
	}
}

func exhaustedNames(base string) []string {
	names := []string{base}
	for i := 1; i <= fallbackRange; i++ {
		names = append(names, fmt.Sprintf("%s %d", base, i))
	}
	return names
}

func TestAssignImages(t *testing.T) {
	g := New(loadProfile(t, "rwanda"), 11)
	existing := "https://cdn.example/keep.jpg"
	events := []entity.Event{
		{Title: "a", Category: "Food & Drink"},
		{Title: "b", Category: "Unmapped Category"},
		{Title: "c", Category: "Food & Drink", ImageURL: &existing},
	}

	if n := g.AssignImages(events, false); n != 2 {
		t.Fatalf("expected 2 assignments, got %d", n)
	}
	if events[0].ImageURL == nil || !strings.Contains(*events[0].ImageURL, "unsplash") {
		t.Fatalf("expected category image, got %v", events[0].ImageURL)
	}
	if events[1].ImageURL == nil {
		t.Fatalf("expected default pool image for unmapped category")
	}
	if *events[2].ImageURL != existing {
		t.Fatalf("existing image should be kept")
	}
	if n := g.AssignImages(events, true); n != 3 {
		t.Fatalf("expected overwrite of all events, got %d", n)
	}
}

func TestDomainSlug(t *testing.T) {
	tests := map[string]string{
		"Kigali Grill & Co":   "kigaligrillandco",
		"Huye Medical Center": "huyemedicalcenter",
		"Jo-Anne's Cafe":      "joannescafe",
	}
	for in, want := range tests {
		if got := domainSlug(in); got != want {
			t.Fatalf("domainSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
