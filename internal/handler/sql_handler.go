package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
)

const defaultScriptTitle = "Directory seed data"

// SQLHandler renders uploaded datasets as a SQL script.
type SQLHandler struct {
	service *service.SQLService
}

// NewSQLHandler constructs a SQLHandler.
func NewSQLHandler(service *service.SQLService) *SQLHandler {
	return &SQLHandler{service: service}
}

// Render handles POST /admin/sql requests. The multipart form carries the
// optional files "businesses" and "events" plus the fields title, country,
// upsert and upload.
func (h *SQLHandler) Render(c echo.Context) error {
	req := service.SQLRequest{
		Title:   strings.TrimSpace(c.FormValue("title")),
		Country: strings.TrimSpace(c.FormValue("country")),
		Mode:    sink.ParseMode(parseBool(c.FormValue("upsert"))),
		Upload:  parseBool(c.FormValue("upload")),
	}
	if req.Title == "" {
		req.Title = defaultScriptTitle
	}

	var err error
	if req.Businesses, err = optionalUpload[entity.Business](c, kindBusinesses); err != nil {
		return uploadError(c, err)
	}
	if req.Events, err = optionalUpload[entity.Event](c, kindEvents); err != nil {
		return uploadError(c, err)
	}

	var buf bytes.Buffer
	res, err := h.service.Render(c.Request().Context(), &buf, req)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to render sql")
	}

	header := c.Response().Header()
	header.Set("X-Run-ID", res.RunID)
	header.Set("X-Skipped-Records", strconv.Itoa(res.Skipped))
	if res.Artifact != "" {
		header.Set("X-Artifact", res.Artifact)
	}
	return c.Blob(http.StatusOK, "application/sql; charset=utf-8", buf.Bytes())
}
