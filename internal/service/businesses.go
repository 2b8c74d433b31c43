package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bara-directory/seeder/internal/dto"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/repository"
)

// ErrListingUnavailable is returned when the destination cannot be queried.
var ErrListingUnavailable = errors.New("business listing requires the database destination")

// BusinessLister reads stored businesses.
type BusinessLister interface {
	ListBusinesses(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error)
	CountByCountry(ctx context.Context, country string) (repository.CountryTotals, error)
}

// BusinessesService exposes the read side of the directory.
type BusinessesService struct {
	repo BusinessLister
}

// NewBusinessesService creates a new instance of BusinessesService. repo may
// be nil when no database is configured.
func NewBusinessesService(repo BusinessLister) *BusinessesService {
	return &BusinessesService{repo: repo}
}

// ListBusinesses returns businesses respecting pagination defaults.
func (s *BusinessesService) ListBusinesses(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error) {
	if s.repo == nil {
		return nil, ErrListingUnavailable
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.ListBusinesses(ctx, filter)
}

// Totals returns the stored business and event counts for country, the same
// numbers the verification block of a SQL script reports.
func (s *BusinessesService) Totals(ctx context.Context, country string) (repository.CountryTotals, error) {
	if s.repo == nil {
		return repository.CountryTotals{}, ErrListingUnavailable
	}
	country = strings.TrimSpace(country)
	if country == "" {
		return repository.CountryTotals{}, ValidationError{Message: "country is required"}
	}
	return s.repo.CountByCountry(ctx, country)
}
