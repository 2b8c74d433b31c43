package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bara-directory/seeder/internal/entity"
)

func TestDefaultPools(t *testing.T) {
	pools, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := pools.Names(); len(names) != 2 || names[0] != "ghana" || names[1] != "rwanda" {
		t.Fatalf("unexpected profiles: %v", names)
	}

	rw, err := pools.Profile(" Rwanda ")
	if err != nil {
		t.Fatalf("profile lookup: %v", err)
	}
	if got := rw.Businesses.Categories(); len(got) != len(entity.BusinessCategories) {
		t.Fatalf("expected all business categories, got %v", got)
	}
	if got := rw.Events.Categories(); len(got) != 8 || got[0] != "Arts & Culture" {
		t.Fatalf("unexpected event categories: %v", got)
	}
	from, to := rw.Events.Start.Bounds()
	if from.Year() != 2025 || to.Month() != 2 || rw.Events.Start.Days() != 89 {
		t.Fatalf("unexpected start window: %s - %s", from, to)
	}
	if len(rw.Events.ImagesFor("Unmapped")) == 0 {
		t.Fatalf("expected default image pool for unmapped category")
	}

	if _, err := pools.Profile("kenya"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func TestParseRejectsInvalidPools(t *testing.T) {
	tests := map[string]string{
		"empty document": "profiles: {}",
		"unknown category": `
profiles:
  x:
    country: X
    city: Y
    phone: {prefix: "+1", min: 1, max: 2}
    businesses:
      prefixes: [A]
      suffixes: {Spaceport: [Dock]}
      districts: [D]
`,
		"bad phone range": `
profiles:
  x:
    country: X
    city: Y
    phone: {prefix: "+1", min: 5, max: 2}
`,
		"malformed yaml": "profiles: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "pools.yaml")
	if err := os.WriteFile(path, defaultPools, 0o600); err != nil {
		t.Fatalf("write pools: %v", err)
	}
	pools, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pools.Profile("ghana"); err != nil {
		t.Fatalf("expected ghana profile: %v", err)
	}

	if _, err := Load(""); err != nil {
		t.Fatalf("expected embedded pools for empty path: %v", err)
	}
}
