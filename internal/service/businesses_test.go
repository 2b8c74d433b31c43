package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bara-directory/seeder/internal/dto"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/repository"
)

type stubBusinessLister struct {
	listFn  func(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error)
	countFn func(ctx context.Context, country string) (repository.CountryTotals, error)
}

func (s *stubBusinessLister) ListBusinesses(ctx context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error) {
	return s.listFn(ctx, filter)
}

func (s *stubBusinessLister) CountByCountry(ctx context.Context, country string) (repository.CountryTotals, error) {
	return s.countFn(ctx, country)
}

func TestBusinessesService_ListBusinesses(t *testing.T) {
	tests := map[string]struct {
		filter      dto.ListFilter
		wantPage    int
		wantPerPage int
	}{
		"defaults":        {wantPage: 1, wantPerPage: 20},
		"explicit values": {filter: dto.ListFilter{Page: 3, PerPage: 50}, wantPage: 3, wantPerPage: 50},
		"per page capped": {filter: dto.ListFilter{Page: 1, PerPage: 500}, wantPage: 1, wantPerPage: 100},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var got dto.ListFilter
			svc := NewBusinessesService(&stubBusinessLister{listFn: func(_ context.Context, filter dto.ListFilter) ([]entity.BusinessListing, error) {
				got = filter
				return []entity.BusinessListing{{ID: "1", Name: "Kigali Grill"}}, nil
			}})

			listings, err := svc.ListBusinesses(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(listings) != 1 || got.Page != tt.wantPage || got.PerPage != tt.wantPerPage {
				t.Fatalf("unexpected call: %+v (%d listings)", got, len(listings))
			}
		})
	}
}

func TestBusinessesService_Unavailable(t *testing.T) {
	svc := NewBusinessesService(nil)
	if _, err := svc.ListBusinesses(context.Background(), dto.ListFilter{}); !errors.Is(err, ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}
}

func TestBusinessesService_Totals(t *testing.T) {
	svc := NewBusinessesService(&stubBusinessLister{countFn: func(_ context.Context, country string) (repository.CountryTotals, error) {
		return repository.CountryTotals{Country: country, Businesses: 40, Events: 12}, nil
	}})

	totals, err := svc.Totals(context.Background(), " Rwanda ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.Country != "Rwanda" || totals.Businesses != 40 || totals.Events != 12 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	var validation ValidationError
	if _, err := svc.Totals(context.Background(), ""); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := NewBusinessesService(nil).Totals(context.Background(), "Rwanda"); !errors.Is(err, ErrListingUnavailable) {
		t.Fatalf("expected ErrListingUnavailable, got %v", err)
	}
}
