package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/dto"
	"github.com/bara-directory/seeder/internal/service"
)

// GenerateHandler fabricates synthetic datasets.
type GenerateHandler struct {
	service *service.GeneratorService
}

// NewGenerateHandler constructs a GenerateHandler.
func NewGenerateHandler(service *service.GeneratorService) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// Profiles handles GET /admin/profiles requests.
func (h *GenerateHandler) Profiles(c echo.Context) error {
	return Success(c, http.StatusOK, "profiles retrieved", h.service.Profiles())
}

// Generate handles POST /admin/generate/:kind requests.
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req dto.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	params := service.GenerateParams{
		Profile: req.Profile,
		Count:   req.Count,
		Seed:    req.Seed,
		StartID: req.StartID,
		Upload:  req.Upload,
	}
	ctx := c.Request().Context()

	var resp dto.GenerateResponse
	switch c.Param("kind") {
	case kindBusinesses:
		res, err := h.service.GenerateBusinesses(ctx, params, nil)
		if err != nil {
			return generateError(c, err)
		}
		resp = dto.GenerateResponse{RunID: res.RunID, Count: len(res.Records), Fallbacks: res.Fallbacks, Artifact: res.Artifact, Records: res.Records}
	case kindEvents:
		res, err := h.service.GenerateEvents(ctx, params, nil)
		if err != nil {
			return generateError(c, err)
		}
		resp = dto.GenerateResponse{RunID: res.RunID, Count: len(res.Records), Fallbacks: res.Fallbacks, Artifact: res.Artifact, Records: res.Records}
	default:
		return Error(c, http.StatusNotFound, "unknown dataset kind")
	}

	return Success(c, http.StatusCreated, "dataset generated", resp)
}

func generateError(c echo.Context, err error) error {
	var validationErr service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return Error(c, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, catalog.ErrUnknownProfile):
		return Error(c, http.StatusBadRequest, err.Error())
	default:
		return Error(c, http.StatusInternalServerError, "failed to generate dataset")
	}
}
