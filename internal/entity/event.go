package entity

import "time"

// EventUpcoming is the status every imported event is written with.
const EventUpcoming = "upcoming"

// Event is a scheduled happening as it appears in seed files. Category is
// free text on the destination side.
type Event struct {
	ID              string    `json:"id,omitempty" csv:"id,omitempty"`
	Title           string    `json:"title" csv:"title"`
	Category        string    `json:"category" csv:"category"`
	Description     string    `json:"description" csv:"description"`
	StartDate       Timestamp `json:"start_date" csv:"start_date"`
	EndDate         Timestamp `json:"end_date" csv:"end_date"`
	VenueName       string    `json:"venue_name" csv:"venue_name"`
	VenueAddress    string    `json:"venue_address" csv:"venue_address"`
	City            string    `json:"city" csv:"city"`
	Country         string    `json:"country,omitempty" csv:"country,omitempty"`
	Organizer       string    `json:"organizer" csv:"organizer"`
	ImageURL        *string   `json:"image_url" csv:"image_url,omitempty"`
	RegistrationURL *string   `json:"registration_url" csv:"registration_url,omitempty"`
	TicketURL       *string   `json:"ticket_url,omitempty" csv:"ticket_url,omitempty"`
	Capacity        *int      `json:"capacity" csv:"capacity,omitempty"`
	Tags            Tags      `json:"tags" csv:"tags,omitempty"`
	IsPublic        *bool     `json:"is_public,omitempty" csv:"is_public,omitempty"`
	Status          string    `json:"event_status,omitempty" csv:"event_status,omitempty"`
	CreatedAt       Timestamp `json:"created_at" csv:"created_at,omitempty"`
}

// Label is the display name used in logs and failure reports.
func (e Event) Label() string { return e.Title }

// Registration returns the registration link, falling back to the ticket link.
func (e Event) Registration() *string {
	if e.RegistrationURL != nil && *e.RegistrationURL != "" {
		return e.RegistrationURL
	}
	if e.TicketURL != nil && *e.TicketURL != "" {
		return e.TicketURL
	}
	return nil
}

// EventRow is an event shaped for the destination table.
type EventRow struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	VenueName       string     `json:"venue_name"`
	VenueAddress    string     `json:"venue_address"`
	CityID          string     `json:"city_id"`
	CountryID       string     `json:"country_id"`
	Category        string     `json:"category"`
	OrganizerName   string     `json:"organizer_name"`
	RegistrationURL *string    `json:"registration_url"`
	EventImageURL   *string    `json:"event_image_url"`
	Tags            []string   `json:"tags"`
	Capacity        *int       `json:"capacity"`
	IsPublic        bool       `json:"is_public"`
	EventStatus     string     `json:"event_status"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}
