package entity

import "time"

// BusinessStatus enumerates the listing states of a business.
type BusinessStatus string

const (
	BusinessPending   BusinessStatus = "pending"
	BusinessActive    BusinessStatus = "active"
	BusinessSuspended BusinessStatus = "suspended"
	BusinessPremium   BusinessStatus = "premium"
)

// Valid reports whether s is one of the known statuses.
func (s BusinessStatus) Valid() bool {
	switch s {
	case BusinessPending, BusinessActive, BusinessSuspended, BusinessPremium:
		return true
	}
	return false
}

// BusinessCategories is the fixed set of directory categories.
var BusinessCategories = []string{
	"Restaurant",
	"Hotel",
	"Retail",
	"Services",
	"Healthcare",
	"Education",
	"Entertainment",
	"Technology",
	"Real Estate",
	"Transportation",
}

// IsBusinessCategory reports whether name belongs to BusinessCategories.
func IsBusinessCategory(name string) bool {
	for _, c := range BusinessCategories {
		if c == name {
			return true
		}
	}
	return false
}

// Business is a directory listing as it appears in seed files.
type Business struct {
	ID          string         `json:"id,omitempty" csv:"id,omitempty"`
	Name        string         `json:"name" csv:"name"`
	Category    string         `json:"category" csv:"category"`
	Address     string         `json:"address" csv:"address"`
	City        string         `json:"city" csv:"city"`
	Country     string         `json:"country" csv:"country"`
	Phone       string         `json:"phone" csv:"phone"`
	Description string         `json:"description" csv:"description"`
	Rating      float64        `json:"rating" csv:"rating,omitempty"`
	Verified    bool           `json:"verified" csv:"verified,omitempty"`
	Website     *string        `json:"website" csv:"website,omitempty"`
	Email       string         `json:"email" csv:"email"`
	Status      BusinessStatus `json:"status,omitempty" csv:"status,omitempty"`
	CreatedAt   Timestamp      `json:"created_at" csv:"created_at,omitempty"`
}

// Label is the display name used in logs and failure reports.
func (b Business) Label() string { return b.Name }

// BusinessRow is a business shaped for the destination table, with lookups
// replaced by identifiers.
type BusinessRow struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Address       string     `json:"address"`
	CityID        string     `json:"city_id"`
	CountryID     string     `json:"country_id"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Website       *string    `json:"website"`
	CategoryID    string     `json:"category_id"`
	AverageRating float64    `json:"average_rating"`
	IsVerified    bool       `json:"is_verified"`
	Status        string     `json:"status"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// BusinessListing is a stored business joined with its lookup names.
type BusinessListing struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	Address    *string   `json:"address,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Website    *string   `json:"website,omitempty"`
	Rating     *float64  `json:"average_rating,omitempty"`
	IsVerified bool      `json:"is_verified"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
