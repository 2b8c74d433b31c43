package dto

// ListFilter contains query parameters for the business listing endpoint.
type ListFilter struct {
	Q         string
	Category  string
	City      string
	Country   string
	MinRating *float64
	Page      int
	PerPage   int
}
