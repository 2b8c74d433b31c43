package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/dto"
	"github.com/bara-directory/seeder/internal/service"
)

// BusinessesHandler exposes the seeded directory for inspection.
type BusinessesHandler struct {
	service *service.BusinessesService
}

// NewBusinessesHandler creates a new handler instance.
func NewBusinessesHandler(service *service.BusinessesService) *BusinessesHandler {
	return &BusinessesHandler{service: service}
}

// List handles GET /businesses requests.
func (h *BusinessesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:        strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		City:     strings.TrimSpace(c.QueryParam("city")),
		Country:  strings.TrimSpace(c.QueryParam("country")),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		PerPage:  parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minRatingStr := strings.TrimSpace(c.QueryParam("min_rating")); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid min_rating")
		}
		filter.MinRating = &minRating
	}

	businesses, err := h.service.ListBusinesses(c.Request().Context(), filter)
	if err != nil {
		if errors.Is(err, service.ErrListingUnavailable) {
			return Error(c, http.StatusServiceUnavailable, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to list businesses")
	}

	return Success(c, http.StatusOK, "businesses retrieved", businesses)
}

// Totals handles GET /admin/totals requests.
func (h *BusinessesHandler) Totals(c echo.Context) error {
	totals, err := h.service.Totals(c.Request().Context(), c.QueryParam("country"))
	if err != nil {
		var validationErr service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return Error(c, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, service.ErrListingUnavailable):
			return Error(c, http.StatusServiceUnavailable, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to count rows")
		}
	}
	return Success(c, http.StatusOK, "totals retrieved", totals)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}

func parseBool(input string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && value
}
