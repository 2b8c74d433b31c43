package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bara-directory/seeder/internal/entity"
)

var (
	// ErrNotFound is returned for a miss on a kind configured as lookup-only.
	ErrNotFound = errors.New("lookup entry not found")
	// ErrEmptyName is returned when asked to resolve a blank name.
	ErrEmptyName = errors.New("lookup name must not be empty")
)

// Store reads and creates lookup rows at the destination.
type Store interface {
	FindLookup(ctx context.Context, kind entity.LookupKind, name, parentID string) (id string, found bool, err error)
	CreateLookup(ctx context.Context, kind entity.LookupKind, row entity.LookupRow) (string, error)
}

// SharedCache is an optional cache tier shared between processes.
type SharedCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Describer produces the description stored with a newly created entry.
type Describer func(kind entity.LookupKind, name string) string

// Stats counts how resolutions were satisfied.
type Stats struct {
	Hits    int `json:"hits"`
	Lookups int `json:"lookups"`
	Created int `json:"created"`
}

// Resolver maps lookup names to destination identifiers, creating missing
// entries. Results are memoised for the lifetime of the resolver (or until
// Reset). It is not safe for concurrent use.
type Resolver struct {
	store      Store
	shared     SharedCache
	describe   Describer
	lookupOnly map[entity.LookupKind]bool

	memo  map[string]string
	stats Stats
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSharedCache adds a cache tier consulted after the in-memory memo.
func WithSharedCache(cache SharedCache) Option {
	return func(r *Resolver) {
		r.shared = cache
	}
}

// WithLookupOnly disables creation for the given kinds.
func WithLookupOnly(kinds ...entity.LookupKind) Option {
	return func(r *Resolver) {
		for _, k := range kinds {
			r.lookupOnly[k] = true
		}
	}
}

// WithDescriber overrides the description of created entries.
func WithDescriber(describe Describer) Option {
	return func(r *Resolver) {
		if describe != nil {
			r.describe = describe
		}
	}
}

// New builds a resolver over store.
func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		describe:   DescribeIn(""),
		lookupOnly: make(map[entity.LookupKind]bool),
		memo:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Country resolves a country by name.
func (r *Resolver) Country(ctx context.Context, name string) (string, error) {
	return r.Resolve(ctx, entity.KindCountry, name, "")
}

// City resolves a city by name within a country.
func (r *Resolver) City(ctx context.Context, name, countryID string) (string, error) {
	return r.Resolve(ctx, entity.KindCity, name, countryID)
}

// Category resolves a business category by name.
func (r *Resolver) Category(ctx context.Context, name string) (string, error) {
	return r.Resolve(ctx, entity.KindCategory, name, "")
}

// EventCategory resolves an event category by name.
func (r *Resolver) EventCategory(ctx context.Context, name string) (string, error) {
	return r.Resolve(ctx, entity.KindEventCategory, name, "")
}

// Resolve returns the identifier for name, creating the entry when absent.
func (r *Resolver) Resolve(ctx context.Context, kind entity.LookupKind, name, parentID string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("resolve %s: %w", kind, ErrEmptyName)
	}
	if kind.Table() == "" {
		return "", fmt.Errorf("resolve %s %q: unknown lookup kind", kind, name)
	}

	key := cacheKey(kind, name, parentID)
	if id, ok := r.memo[key]; ok {
		r.stats.Hits++
		return id, nil
	}

	if r.shared != nil {
		id, ok, err := r.shared.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("shared lookup cache unavailable")
		} else if ok {
			r.stats.Hits++
			r.memo[key] = id
			return id, nil
		}
	}

	r.stats.Lookups++
	id, found, err := r.store.FindLookup(ctx, kind, name, parentID)
	if err != nil {
		return "", fmt.Errorf("find %s %q: %w", kind, name, err)
	}
	if !found {
		if r.lookupOnly[kind] {
			return "", fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
		}
		row := entity.LookupRow{Name: name, ParentID: parentID}
		if kind != entity.KindCountry {
			row.Slug = Slugify(name)
			row.Description = r.describe(kind, name)
		}
		id, err = r.store.CreateLookup(ctx, kind, row)
		if err != nil {
			return "", fmt.Errorf("create %s %q: %w", kind, name, err)
		}
		r.stats.Created++
		log.Info().Str("kind", string(kind)).Str("name", name).Str("id", id).Msg("created lookup entry")
	}

	r.memo[key] = id
	if r.shared != nil {
		if err := r.shared.Set(ctx, key, id); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to populate shared lookup cache")
		}
	}
	return id, nil
}

// Reset drops the memo and statistics, typically between runs.
func (r *Resolver) Reset() {
	r.memo = make(map[string]string)
	r.stats = Stats{}
}

// Stats returns the counters accumulated since the last Reset.
func (r *Resolver) Stats() Stats { return r.stats }

// Slugify lowercases name, turns spaces into "-" and spells out "&".
func Slugify(name string) string {
	slug := cases.Lower(language.Und).String(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	return strings.ReplaceAll(slug, "&", "and")
}

// DescribeIn returns the default describer, mentioning country when set.
func DescribeIn(country string) Describer {
	return func(kind entity.LookupKind, name string) string {
		switch kind {
		case entity.KindCategory:
			if country != "" {
				return fmt.Sprintf("%s businesses in %s", name, country)
			}
			return name + " businesses"
		case entity.KindEventCategory:
			return name + " events"
		case entity.KindCity:
			if country != "" {
				return fmt.Sprintf("%s, %s", name, country)
			}
			return name
		}
		return ""
	}
}

func cacheKey(kind entity.LookupKind, name, parentID string) string {
	return string(kind) + ":" + parentID + ":" + name
}
