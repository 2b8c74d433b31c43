package generator

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/entity"
)

// Generator fabricates businesses and events from a region profile. It is not
// safe for concurrent use.
type Generator struct {
	profile *catalog.Profile
	rng     *rand.Rand
	names   *NameRegistry
	titles  *NameRegistry

	fallbacks int
}

// New builds a generator. A zero seed picks one from the clock.
func New(profile *catalog.Profile, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Generator{
		profile: profile,
		rng:     rng,
		names:   NewNameRegistry(rng),
		titles:  NewNameRegistry(rng),
	}
}

// Reserve marks existing business names and event titles as taken.
func (g *Generator) Reserve(businessNames, eventTitles []string) {
	for _, n := range businessNames {
		g.names.Add(n)
	}
	for _, t := range eventTitles {
		g.titles.Add(t)
	}
}

// Fallbacks reports how many names needed the numeric suffix fallback.
func (g *Generator) Fallbacks() int { return g.fallbacks }

// Businesses generates n businesses with surrogate ids starting at startID.
func (g *Generator) Businesses(n, startID int) []entity.Business {
	pools := g.profile.Businesses
	categories := pools.Categories()
	out := make([]entity.Business, 0, n)

	for i := 0; i < n; i++ {
		category := pick(g.rng, categories)
		name := g.businessName(category)
		slug := domainSlug(name)

		b := entity.Business{
			ID:          fmt.Sprintf("%s%04d", strings.ToUpper(g.profile.Region), startID+i),
			Name:        name,
			Category:    category,
			Address:     fmt.Sprintf("%s, %s", pick(g.rng, pools.Districts), g.profile.City),
			City:        g.profile.City,
			Country:     g.profile.Country,
			Phone:       g.phone(),
			Description: g.businessDescription(name, category),
			Rating:      g.rating(),
			Verified:    g.rng.Float64() < pools.VerifiedRate,
			Email:       fmt.Sprintf("info@%s.%s", slug, g.profile.DomainTLD),
			Status:      entity.BusinessActive,
			CreatedAt:   entity.NewTimestamp(g.instant(pools.Created)),
		}
		if g.rng.Float64() < pools.WebsiteRate {
			website := fmt.Sprintf("www.%s.%s", slug, g.profile.DomainTLD)
			b.Website = &website
		}
		out = append(out, b)
	}
	return out
}

// Events generates n events with surrogate ids starting at startID.
func (g *Generator) Events(n, startID int) []entity.Event {
	pools := g.profile.Events
	categories := pools.Categories()
	out := make([]entity.Event, 0, n)
	public := true

	for i := 0; i < n; i++ {
		category := pick(g.rng, categories)
		title := g.eventTitle(category)
		venue := pick(g.rng, pools.Venues)

		start := g.eventStart()
		end := start.Add(time.Duration(pick(g.rng, pools.DurationHours)) * time.Hour)

		ev := entity.Event{
			ID:           fmt.Sprintf("EV%04d", startID+i),
			Title:        title,
			Category:     category,
			Description:  g.eventDescription(title, venue, category),
			StartDate:    entity.NewTimestamp(start),
			EndDate:      entity.NewTimestamp(end),
			VenueName:    venue,
			VenueAddress: fmt.Sprintf("%s, %s, %s", venue, g.profile.City, g.profile.Country),
			City:         g.profile.City,
			Country:      g.profile.Country,
			Organizer:    pick(g.rng, pools.Organizers),
			Tags:         eventTags(category, pools.Tags),
			IsPublic:     &public,
			Status:       entity.EventUpcoming,
			CreatedAt:    entity.NewTimestamp(g.instant(pools.Created)),
		}
		if images := pools.ImagesFor(category); len(images) > 0 {
			image := pick(g.rng, images)
			ev.ImageURL = &image
		}
		if pools.RegistrationURL != "" {
			url := strings.ReplaceAll(pools.RegistrationURL, "{n}", strconv.Itoa(startID+i))
			ev.RegistrationURL = &url
		}
		if len(pools.Capacities) > 0 {
			if capacity := pick(g.rng, pools.Capacities); capacity > 0 {
				ev.Capacity = &capacity
			}
		}
		out = append(out, ev)
	}
	return out
}

// AssignImages gives every event without an image one drawn from its
// category pool. With overwrite set, existing images are replaced too.
func (g *Generator) AssignImages(events []entity.Event, overwrite bool) int {
	assigned := 0
	for i := range events {
		if !overwrite && events[i].ImageURL != nil && *events[i].ImageURL != "" {
			continue
		}
		images := g.profile.Events.ImagesFor(events[i].Category)
		if len(images) == 0 {
			continue
		}
		image := pick(g.rng, images)
		events[i].ImageURL = &image
		assigned++
	}
	return assigned
}

func (g *Generator) businessName(category string) string {
	pools := g.profile.Businesses
	name, attempts, fellBack := g.names.Claim(func() (string, string) {
		base := pick(g.rng, pools.Prefixes) + " " + pick(g.rng, pools.Suffixes[category])
		if len(pools.Variations) > 0 && g.rng.Float64() < pools.VariationRate {
			return base + " " + pick(g.rng, pools.Variations), base
		}
		return base, base
	}, "%s %d")
	if fellBack {
		g.fallbacks++
		log.Debug().Str("name", name).Int("attempts", attempts).Msg("business name fell back to numeric suffix")
	}
	return name
}

func (g *Generator) eventTitle(category string) string {
	pools := g.profile.Events
	from, to := pools.Start.Bounds()
	title, attempts, fellBack := g.titles.Claim(func() (string, string) {
		topic := pick(g.rng, pools.Topics)
		kind := pick(g.rng, pools.Types[category])
		year := from.Year() + g.rng.Intn(to.Year()-from.Year()+1)
		r := strings.NewReplacer(
			"{topic}", topic,
			"{type}", kind,
			"{year}", strconv.Itoa(year),
			"{city}", g.profile.City,
			"{country}", g.profile.Country,
		)
		return r.Replace(pick(g.rng, pools.TitlePatterns)), topic + " " + kind
	}, "%s #%d")
	if fellBack {
		g.fallbacks++
		log.Debug().Str("title", title).Int("attempts", attempts).Msg("event title fell back to numeric suffix")
	}
	return title
}

func (g *Generator) businessDescription(name, category string) string {
	if tail, ok := g.profile.Businesses.Descriptions[category]; ok && tail != "" {
		return name + " " + tail
	}
	return fmt.Sprintf("%s is a %s business in %s, %s.", name, strings.ToLower(category), g.profile.City, g.profile.Country)
}

func (g *Generator) eventDescription(title, venue, category string) string {
	tmpl := g.profile.Events.Description
	if tmpl == "" {
		tmpl = "{title} at {venue}."
	}
	return strings.NewReplacer(
		"{title}", title,
		"{venue}", venue,
		"{category}", strings.ToLower(category),
		"{city}", g.profile.City,
	).Replace(tmpl)
}

func (g *Generator) phone() string {
	r := g.profile.Phone
	return fmt.Sprintf("%s %d", r.Prefix, r.Min+g.rng.Int63n(r.Max-r.Min+1))
}

func (g *Generator) rating() float64 {
	pools := g.profile.Businesses
	v := pools.RatingMin + g.rng.Float64()*(pools.RatingMax-pools.RatingMin)
	v = math.Round(v*10) / 10
	return math.Min(math.Max(v, pools.RatingMin), pools.RatingMax)
}

func (g *Generator) eventStart() time.Time {
	w := g.profile.Events.Start
	from, _ := w.Bounds()
	day := from.AddDate(0, 0, g.rng.Intn(w.Days()+1))
	return day.Add(time.Duration(pick(g.rng, g.profile.Events.StartHours)) * time.Hour)
}

func (g *Generator) instant(w catalog.Window) time.Time {
	from, _ := w.Bounds()
	return from.AddDate(0, 0, g.rng.Intn(w.Days()+1)).
		Add(time.Duration(g.rng.Intn(24)) * time.Hour).
		Add(time.Duration(g.rng.Intn(60)) * time.Minute)
}

func eventTags(category string, extra []string) entity.Tags {
	tags := make(entity.Tags, 0, len(extra)+1)
	if fields := strings.Fields(category); len(fields) > 0 {
		tags = append(tags, strings.ToLower(fields[0]))
	}
	return append(tags, extra...)
}

// domainSlug lowercases name, spells out "&" and drops everything that is not
// a letter or digit.
func domainSlug(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), "&", "and")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pick[T any](rng *rand.Rand, values []T) T {
	return values[rng.Intn(len(values))]
}
