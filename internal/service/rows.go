package service

import (
	"context"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/resolver"
)

// ResolveBusiness looks up the country, city and category of b and shapes
// it for the businesses table.
func ResolveBusiness(ctx context.Context, r *resolver.Resolver, b entity.Business) (entity.BusinessRow, error) {
	countryID, err := r.Country(ctx, b.Country)
	if err != nil {
		return entity.BusinessRow{}, err
	}
	cityID, err := r.City(ctx, b.City, countryID)
	if err != nil {
		return entity.BusinessRow{}, err
	}
	categoryID, err := r.Category(ctx, b.Category)
	if err != nil {
		return entity.BusinessRow{}, err
	}

	return entity.BusinessRow{
		Name:          b.Name,
		Description:   b.Description,
		Address:       b.Address,
		CityID:        cityID,
		CountryID:     countryID,
		Phone:         b.Phone,
		Email:         b.Email,
		Website:       b.Website,
		CategoryID:    categoryID,
		AverageRating: b.Rating,
		IsVerified:    b.Verified,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Ptr(),
	}, nil
}

// ResolveEvent looks up the country and city of e and makes sure its
// category exists. The events table stores the category as text.
func ResolveEvent(ctx context.Context, r *resolver.Resolver, e entity.Event) (entity.EventRow, error) {
	countryID, err := r.Country(ctx, e.Country)
	if err != nil {
		return entity.EventRow{}, err
	}
	cityID, err := r.City(ctx, e.City, countryID)
	if err != nil {
		return entity.EventRow{}, err
	}
	if _, err := r.EventCategory(ctx, e.Category); err != nil {
		return entity.EventRow{}, err
	}

	public := e.IsPublic == nil || *e.IsPublic
	return entity.EventRow{
		Title:           e.Title,
		Description:     e.Description,
		StartDate:       e.StartDate.UTC(),
		EndDate:         e.EndDate.UTC(),
		VenueName:       e.VenueName,
		VenueAddress:    e.VenueAddress,
		CityID:          cityID,
		CountryID:       countryID,
		Category:        e.Category,
		OrganizerName:   e.Organizer,
		RegistrationURL: e.Registration(),
		EventImageURL:   e.ImageURL,
		Tags:            []string(e.Tags),
		Capacity:        e.Capacity,
		IsPublic:        public,
		EventStatus:     e.Status,
		CreatedAt:       e.CreatedAt.Ptr(),
	}, nil
}
