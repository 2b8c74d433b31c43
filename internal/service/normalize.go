package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/samber/lo"
	"golang.org/x/net/idna"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/entity"
)

var (
	// ErrMissingField marks a record without a required value.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField marks a record with a value outside its domain.
	ErrInvalidField = errors.New("invalid field value")
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const unknownRegion = "ZZ"

// FieldError names the offending field of a rejected record.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

func missing(field string) error { return &FieldError{Field: field, Err: ErrMissingField} }

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidField}, args...)...)}
}

// Normalizer is the transform stage: it trims and defaults source records and
// rejects the ones a destination would refuse.
type Normalizer struct {
	defaultCountry string
	regions        map[string]string
}

// NewNormalizer builds a normalizer. defaultCountry fills records without a
// country; phone regions come from the pools' country profiles.
func NewNormalizer(defaultCountry string, pools *catalog.Pools) *Normalizer {
	n := &Normalizer{defaultCountry: strings.TrimSpace(defaultCountry), regions: map[string]string{}}
	if pools != nil {
		for _, p := range pools.Profiles {
			n.regions[strings.ToLower(p.Country)] = strings.ToUpper(p.Region)
		}
	}
	return n
}

// Business normalises one business record.
func (n *Normalizer) Business(b entity.Business) (entity.Business, error) {
	b.Name = strings.TrimSpace(b.Name)
	b.Category = strings.TrimSpace(b.Category)
	b.City = strings.TrimSpace(b.City)
	b.Country = n.country(b.Country)
	b.Address = strings.TrimSpace(b.Address)
	b.Description = strings.TrimSpace(b.Description)

	switch {
	case b.Name == "":
		return b, missing("name")
	case b.Category == "":
		return b, missing("category")
	case b.City == "":
		return b, missing("city")
	case b.Country == "":
		return b, missing("country")
	}

	if b.Rating < 0 || b.Rating > 5 {
		return b, invalid("rating", "%.1f outside 0-5", b.Rating)
	}
	if b.Status == "" {
		b.Status = entity.BusinessActive
	}
	if !b.Status.Valid() {
		return b, invalid("status", "%q", b.Status)
	}

	b.Phone = normalizePhone(b.Phone, n.region(b.Country))
	email, err := cleanEmail(b.Email)
	if err != nil {
		return b, err
	}
	b.Email = email
	b.Website = trimmedOrNil(b.Website)
	return b, nil
}

// Event normalises one event record.
func (n *Normalizer) Event(e entity.Event) (entity.Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Category = strings.TrimSpace(e.Category)
	e.City = strings.TrimSpace(e.City)
	e.Country = n.country(e.Country)
	e.VenueName = strings.TrimSpace(e.VenueName)
	e.VenueAddress = strings.TrimSpace(e.VenueAddress)
	e.Organizer = strings.TrimSpace(e.Organizer)

	switch {
	case e.Title == "":
		return e, missing("title")
	case e.Category == "":
		return e, missing("category")
	case e.City == "":
		return e, missing("city")
	case e.Country == "":
		return e, missing("country")
	case e.StartDate.IsZero():
		return e, missing("start_date")
	case e.EndDate.IsZero():
		return e, missing("end_date")
	}
	if !e.EndDate.After(e.StartDate.Time) {
		return e, invalid("end_date", "%s is not after start %s", e.EndDate, e.StartDate)
	}
	if e.Capacity != nil && *e.Capacity <= 0 {
		e.Capacity = nil
	}

	e.RegistrationURL = trimmedOrNil(e.Registration())
	e.TicketURL = nil
	e.ImageURL = trimmedOrNil(e.ImageURL)
	e.Tags = lo.Compact(lo.Map(e.Tags, func(t string, _ int) string { return strings.TrimSpace(t) }))
	if e.IsPublic == nil {
		e.IsPublic = lo.ToPtr(true)
	}
	if e.Status == "" {
		e.Status = entity.EventUpcoming
	}
	return e, nil
}

func (n *Normalizer) country(value string) string {
	if c := strings.TrimSpace(value); c != "" {
		return c
	}
	return n.defaultCountry
}

func (n *Normalizer) region(country string) string {
	if r, ok := n.regions[strings.ToLower(country)]; ok && r != "" {
		return r
	}
	return unknownRegion
}

// normalizePhone formats valid numbers as E.164 and keeps anything else as
// written.
func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func cleanEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", nil
	}
	if !emailPattern.MatchString(email) {
		return "", invalid("email", "%q", raw)
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !isDomainValid(domain) {
		return "", invalid("email", "%q", raw)
	}
	if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
		return "", invalid("email", "%q", raw)
	}
	return email, nil
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
