package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/cache"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/service"
)

// ImportHandler loads uploaded datasets into the configured destination.
type ImportHandler struct {
	runner *service.Runner
}

// NewImportHandler wires a handler backed by the import runner.
func NewImportHandler(runner *service.Runner) *ImportHandler {
	return &ImportHandler{runner: runner}
}

// Import handles POST /admin/imports/:kind requests. The dataset is sent as
// the multipart field "file".
func (h *ImportHandler) Import(c echo.Context) error {
	kind := c.Param("kind")
	if kind != kindBusinesses && kind != kindEvents {
		return Error(c, http.StatusNotFound, "unknown import kind")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing dataset file")
	}

	ctx := c.Request().Context()
	var summary service.RunSummary
	switch kind {
	case kindBusinesses:
		records, decodeErr := decodeUpload[entity.Business](fileHeader)
		if decodeErr != nil {
			return uploadError(c, decodeErr)
		}
		summary, err = h.runner.ImportBusinesses(ctx, records)
	case kindEvents:
		records, decodeErr := decodeUpload[entity.Event](fileHeader)
		if decodeErr != nil {
			return uploadError(c, decodeErr)
		}
		summary, err = h.runner.ImportEvents(ctx, records)
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunInProgress), errors.Is(err, cache.ErrLockHeld):
			return Error(c, http.StatusConflict, "an import is already running")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return Error(c, http.StatusServiceUnavailable, "import cancelled")
		default:
			return Error(c, http.StatusInternalServerError, "import failed")
		}
	}

	return Success(c, http.StatusOK, kind+" import finished", summary)
}
