package entity

// LookupKind identifies a read-or-create reference table.
type LookupKind string

const (
	KindCountry       LookupKind = "country"
	KindCity          LookupKind = "city"
	KindCategory      LookupKind = "category"
	KindEventCategory LookupKind = "event_category"
)

var lookupTables = map[LookupKind]string{
	KindCountry:       "countries",
	KindCity:          "cities",
	KindCategory:      "categories",
	KindEventCategory: "event_categories",
}

// Table returns the destination table backing the kind, or "" when unknown.
func (k LookupKind) Table() string {
	return lookupTables[k]
}

// LookupRow is the payload written when a lookup entry has to be created.
// ParentID is only set for cities.
type LookupRow struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"country_id,omitempty"`
}
