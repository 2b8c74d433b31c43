package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/bara-directory/seeder/internal/entity"
)

//go:embed pools.yaml
var defaultPools []byte

// ErrUnknownProfile is returned when a requested profile is not defined.
var ErrUnknownProfile = errors.New("unknown pools profile")

// Pools is the set of region profiles the generator draws from.
type Pools struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Profile groups every value pool for one country.
type Profile struct {
	Country    string        `yaml:"country"`
	Region     string        `yaml:"region"`
	City       string        `yaml:"city"`
	DomainTLD  string        `yaml:"domain_tld"`
	Phone      PhoneRange    `yaml:"phone"`
	Businesses BusinessPools `yaml:"businesses"`
	Events     EventPools    `yaml:"events"`
}

// PhoneRange produces "<prefix> <n>" with n in [Min, Max].
type PhoneRange struct {
	Prefix string `yaml:"prefix"`
	Min    int64  `yaml:"min"`
	Max    int64  `yaml:"max"`
}

// Window is an inclusive day range, written as YYYY-MM-DD.
type Window struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`

	from time.Time
	to   time.Time
}

// Bounds returns the parsed window.
func (w Window) Bounds() (time.Time, time.Time) { return w.from, w.to }

// Days is the number of whole days between From and To.
func (w Window) Days() int { return int(w.to.Sub(w.from).Hours() / 24) }

func (w *Window) parse(field string) error {
	from, err := entity.ParseTimestamp(w.From)
	if err != nil {
		return fmt.Errorf("%s.from: %w", field, err)
	}
	to, err := entity.ParseTimestamp(w.To)
	if err != nil {
		return fmt.Errorf("%s.to: %w", field, err)
	}
	if from.IsZero() || to.IsZero() {
		return fmt.Errorf("%s: from and to are required", field)
	}
	if to.Before(from.Time) {
		return fmt.Errorf("%s: to is before from", field)
	}
	w.from, w.to = from.Time, to.Time
	return nil
}

// BusinessPools drive business generation. Suffixes is keyed by category.
type BusinessPools struct {
	Prefixes      []string            `yaml:"prefixes"`
	Suffixes      map[string][]string `yaml:"suffixes"`
	Variations    []string            `yaml:"variations"`
	VariationRate float64             `yaml:"variation_rate"`
	Districts     []string            `yaml:"districts"`
	Descriptions  map[string]string   `yaml:"descriptions"`
	WebsiteRate   float64             `yaml:"website_rate"`
	VerifiedRate  float64             `yaml:"verified_rate"`
	RatingMin     float64             `yaml:"rating_min"`
	RatingMax     float64             `yaml:"rating_max"`
	Created       Window              `yaml:"created"`
}

// Categories returns the configured categories in sorted order.
func (b BusinessPools) Categories() []string {
	keys := lo.Keys(b.Suffixes)
	slices.Sort(keys)
	return keys
}

// EventPools drive event generation. Types and Images are keyed by category.
type EventPools struct {
	Types           map[string][]string `yaml:"types"`
	Topics          []string            `yaml:"topics"`
	TitlePatterns   []string            `yaml:"title_patterns"`
	Venues          []string            `yaml:"venues"`
	Organizers      []string            `yaml:"organizers"`
	Images          map[string][]string `yaml:"images"`
	DefaultImages   string              `yaml:"default_images"`
	StartHours      []int               `yaml:"start_hours"`
	DurationHours   []int               `yaml:"duration_hours"`
	Capacities      []int               `yaml:"capacities"`
	Tags            []string            `yaml:"tags"`
	Description     string              `yaml:"description"`
	RegistrationURL string              `yaml:"registration_url"`
	Start           Window              `yaml:"start"`
	Created         Window              `yaml:"created"`
}

// Categories returns the configured categories in sorted order.
func (e EventPools) Categories() []string {
	keys := lo.Keys(e.Types)
	slices.Sort(keys)
	return keys
}

// ImagesFor returns the category's image pool, or the default pool when the
// category is unmapped.
func (e EventPools) ImagesFor(category string) []string {
	if images := e.Images[category]; len(images) > 0 {
		return images
	}
	return e.Images[e.DefaultImages]
}

// Default returns the embedded pools.
func Default() (*Pools, error) {
	return Parse(defaultPools)
}

// Load reads pools from path, or returns the embedded pools when path is empty.
func Load(path string) (*Pools, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pools file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a pools document.
func Parse(data []byte) (*Pools, error) {
	var pools Pools
	if err := yaml.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("decode pools: %w", err)
	}
	if len(pools.Profiles) == 0 {
		return nil, errors.New("pools: no profiles defined")
	}
	for name, profile := range pools.Profiles {
		if profile == nil {
			return nil, fmt.Errorf("pools: profile %q is empty", name)
		}
		if err := profile.validate(); err != nil {
			return nil, fmt.Errorf("pools: profile %q: %w", name, err)
		}
	}
	return &pools, nil
}

// Profile returns the named profile.
func (p *Pools) Profile(name string) (*Profile, error) {
	profile, ok := p.Profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return profile, nil
}

// Names lists the profile names in sorted order.
func (p *Pools) Names() []string {
	names := lo.Keys(p.Profiles)
	slices.Sort(names)
	return names
}

func (p *Profile) validate() error {
	if p.Country == "" || p.City == "" {
		return errors.New("country and city are required")
	}
	if p.Phone.Prefix == "" || p.Phone.Max < p.Phone.Min || p.Phone.Min <= 0 {
		return errors.New("phone range is invalid")
	}

	b := &p.Businesses
	if len(b.Prefixes) == 0 || len(b.Suffixes) == 0 || len(b.Districts) == 0 {
		return errors.New("businesses: prefixes, suffixes and districts are required")
	}
	for category, suffixes := range b.Suffixes {
		if !entity.IsBusinessCategory(category) {
			return fmt.Errorf("businesses: unknown category %q", category)
		}
		if len(suffixes) == 0 {
			return fmt.Errorf("businesses: category %q has no suffixes", category)
		}
	}
	if b.RatingMin < 0 || b.RatingMax > 5 || b.RatingMax < b.RatingMin {
		return errors.New("businesses: rating range must lie within 0-5")
	}
	if err := b.Created.parse("businesses.created"); err != nil {
		return err
	}

	e := &p.Events
	if len(e.Types) == 0 || len(e.Topics) == 0 || len(e.TitlePatterns) == 0 {
		return errors.New("events: types, topics and title_patterns are required")
	}
	for category, types := range e.Types {
		if len(types) == 0 {
			return fmt.Errorf("events: category %q has no types", category)
		}
	}
	if len(e.Venues) == 0 || len(e.Organizers) == 0 {
		return errors.New("events: venues and organizers are required")
	}
	if len(e.StartHours) == 0 || len(e.DurationHours) == 0 {
		return errors.New("events: start_hours and duration_hours are required")
	}
	for _, h := range e.DurationHours {
		if h <= 0 {
			return fmt.Errorf("events: duration %d must be positive", h)
		}
	}
	if len(e.ImagesFor(e.DefaultImages)) == 0 {
		return fmt.Errorf("events: default image pool %q is empty", e.DefaultImages)
	}
	if err := e.Start.parse("events.start"); err != nil {
		return err
	}
	return e.Created.parse("events.created")
}
