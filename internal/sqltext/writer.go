package sqltext

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/sink"
)

const businessColumns = "name, description, address, city_id, country_id, phone, email, website, category_id, average_rating, is_verified, status, created_at"

const businessUpsert = `ON CONFLICT (name, category_id) DO UPDATE SET
  description = EXCLUDED.description,
  address = EXCLUDED.address,
  city_id = EXCLUDED.city_id,
  country_id = EXCLUDED.country_id,
  phone = EXCLUDED.phone,
  email = EXCLUDED.email,
  website = EXCLUDED.website,
  average_rating = EXCLUDED.average_rating,
  is_verified = EXCLUDED.is_verified,
  status = EXCLUDED.status`

const eventColumns = "title, description, start_date, end_date, venue_name, venue_address, city_id, country_id, category, organizer_name, registration_url, event_image_url, tags, capacity, is_public, event_status, created_at"

const eventUpsert = `ON CONFLICT (title, start_date, city_id) DO UPDATE SET
  description = EXCLUDED.description,
  end_date = EXCLUDED.end_date,
  venue_name = EXCLUDED.venue_name,
  venue_address = EXCLUDED.venue_address,
  category = EXCLUDED.category,
  organizer_name = EXCLUDED.organizer_name,
  registration_url = EXCLUDED.registration_url,
  event_image_url = EXCLUDED.event_image_url,
  tags = EXCLUDED.tags,
  capacity = EXCLUDED.capacity`

// Writer renders records as a standalone SQL script. Each record becomes one
// INSERT ... SELECT that joins its lookups by name, so a row is inserted only
// when every lookup resolves. Write errors are sticky and reported by Flush.
type Writer struct {
	out      *bufio.Writer
	mode     sink.Mode
	describe resolver.Describer

	businesses int
	events     int
	countries  []string
	err        error
}

// NewWriter wraps w. A nil describe uses the resolver's default descriptions.
func NewWriter(w io.Writer, mode sink.Mode, describe resolver.Describer) *Writer {
	if describe == nil {
		describe = resolver.DescribeIn("")
	}
	return &Writer{out: bufio.NewWriter(w), mode: mode, describe: describe}
}

// Header writes the script preamble.
func (w *Writer) Header(title string, generatedAt time.Time) {
	w.printf("-- %s\n-- Generated: %s\n-- Mode: %s\n\n", comment(title), generatedAt.UTC().Format(time.RFC3339), w.mode)
}

// Lookups writes the category, event category and city rows the records
// depend on. Countries must already exist.
func (w *Writer) Lookups(businesses []entity.Business, events []entity.Event) {
	categories := sortedUniq(lo.Map(businesses, func(b entity.Business, _ int) string { return b.Category }))
	if len(categories) > 0 {
		w.printf("-- Business categories\n")
		for _, c := range categories {
			w.lookupInsert(entity.KindCategory, c)
		}
		w.printf("\n")
	}

	eventCategories := sortedUniq(lo.Map(events, func(e entity.Event, _ int) string { return e.Category }))
	if len(eventCategories) > 0 {
		w.printf("-- Event categories\n")
		for _, c := range eventCategories {
			w.lookupInsert(entity.KindEventCategory, c)
		}
		w.printf("\n")
	}

	type place struct{ city, country string }
	places := lo.Uniq(append(
		lo.Map(businesses, func(b entity.Business, _ int) place { return place{b.City, b.Country} }),
		lo.Map(events, func(e entity.Event, _ int) place { return place{e.City, e.Country} })...,
	))
	places = lo.Filter(places, func(p place, _ int) bool { return p.city != "" && p.country != "" })
	if len(places) == 0 {
		return
	}
	w.printf("-- Cities\n")
	for _, p := range places {
		w.printf("INSERT INTO cities (name, country_id, description)\nSELECT %s, co.id, %s\nFROM countries co\nWHERE co.name = %s\n  AND NOT EXISTS (SELECT 1 FROM cities ci WHERE ci.name = %s AND ci.country_id = co.id);\n",
			Quote(p.city), Quote(w.describe(entity.KindCity, p.city)), Quote(p.country), Quote(p.city))
	}
	w.printf("\n")
}

func (w *Writer) lookupInsert(kind entity.LookupKind, name string) {
	w.printf("INSERT INTO %s (name, slug, description) VALUES (%s, %s, %s) ON CONFLICT (name) DO NOTHING;\n",
		kind.Table(), Quote(name), Quote(resolver.Slugify(name)), Quote(w.describe(kind, name)))
}

// WriteBusiness renders one business statement.
func (w *Writer) WriteBusiness(_ context.Context, b entity.Business) error {
	w.businesses++
	w.trackCountry(b.Country)

	status := string(b.Status)
	if status == "" {
		status = string(entity.BusinessActive)
	}
	w.printf("-- Business %d: %s\n", w.businesses, comment(b.Name))
	w.printf("INSERT INTO businesses (%s)\n", businessColumns)
	w.printf("SELECT %s, %s, %s, ci.id, co.id, %s, %s, %s, cat.id, %s, %s, %s, %s\n",
		Quote(b.Name), Quote(b.Description), Quote(b.Address),
		Quote(b.Phone), Quote(b.Email), NullableString(b.Website),
		Float(b.Rating), Bool(b.Verified), Quote(status), Timestamp(b.CreatedAt))
	w.printf("FROM countries co\nJOIN cities ci ON ci.country_id = co.id AND ci.name = %s\nJOIN categories cat ON cat.name = %s\nWHERE co.name = %s\nLIMIT 1",
		Quote(b.City), Quote(b.Category), Quote(b.Country))
	if w.mode == sink.ModeUpsert {
		w.printf("\n%s", businessUpsert)
	}
	w.printf(";\n\n")
	return w.err
}

// WriteEvent renders one event statement.
func (w *Writer) WriteEvent(_ context.Context, e entity.Event) error {
	w.events++
	w.trackCountry(e.Country)

	public := e.IsPublic == nil || *e.IsPublic
	status := e.Status
	if status == "" {
		status = entity.EventUpcoming
	}
	w.printf("-- Event %d: %s\n", w.events, comment(e.Title))
	w.printf("INSERT INTO events (%s)\n", eventColumns)
	w.printf("SELECT %s, %s, %s, %s, %s, %s, ci.id, co.id, %s, %s, %s, %s, %s, %s, %s, %s, %s\n",
		Quote(e.Title), Quote(e.Description), Timestamp(e.StartDate), Timestamp(e.EndDate),
		Quote(e.VenueName), Quote(e.VenueAddress), Quote(e.Category), Quote(e.Organizer),
		NullableString(e.Registration()), NullableString(e.ImageURL), Array(e.Tags),
		NullableInt(e.Capacity), Bool(public), Quote(status), Timestamp(e.CreatedAt))
	w.printf("FROM countries co\nJOIN cities ci ON ci.country_id = co.id AND ci.name = %s\nWHERE co.name = %s\nLIMIT 1",
		Quote(e.City), Quote(e.Country))
	if w.mode == sink.ModeUpsert {
		w.printf("\n%s", eventUpsert)
	}
	w.printf(";\n\n")
	return w.err
}

// Verification writes per-country count queries for the tables written to.
func (w *Writer) Verification() {
	if len(w.countries) == 0 {
		return
	}
	w.printf("-- Verification\n")
	for _, country := range w.countries {
		where := fmt.Sprintf("country_id = (SELECT id FROM countries WHERE name = %s LIMIT 1)", Quote(country))
		if w.businesses > 0 {
			w.printf("SELECT COUNT(*) AS total_businesses FROM businesses WHERE %s;\n", where)
		}
		if w.events > 0 {
			w.printf("SELECT COUNT(*) AS total_events FROM events WHERE %s;\n", where)
		}
	}
}

// Flush writes buffered output and returns the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("flush sql output: %w", err)
	}
	return nil
}

// BusinessSink exposes the writer as a business sink.
func (w *Writer) BusinessSink() sink.Sink[entity.Business] {
	return sink.Func[entity.Business]{Label: "sql", Fn: w.WriteBusiness}
}

// EventSink exposes the writer as an event sink.
func (w *Writer) EventSink() sink.Sink[entity.Event] {
	return sink.Func[entity.Event]{Label: "sql", Fn: w.WriteEvent}
}

func (w *Writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	if _, err := fmt.Fprintf(w.out, format, args...); err != nil {
		w.err = fmt.Errorf("write sql output: %w", err)
	}
}

func (w *Writer) trackCountry(country string) {
	if country != "" && !slices.Contains(w.countries, country) {
		w.countries = append(w.countries, country)
	}
}

func sortedUniq(values []string) []string {
	out := lo.Filter(lo.Uniq(values), func(v string, _ int) bool { return strings.TrimSpace(v) != "" })
	slices.Sort(out)
	return out
}
