package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bara-directory/seeder/internal/dataset"
)

const (
	kindBusinesses = "businesses"
	kindEvents     = "events"
)

var errEmptyDataset = errors.New("dataset is empty")

// decodeUpload reads a dataset file; the format follows the file extension.
func decodeUpload[T any](fileHeader *multipart.FileHeader) ([]T, error) {
	format, err := dataset.FormatFromPath(fileHeader.Filename)
	if err != nil {
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	records, err := dataset.Decode[T](file, format)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errEmptyDataset
	}
	return records, nil
}

// optionalUpload decodes the named form file, returning nil when it is absent.
func optionalUpload[T any](c echo.Context, field string) ([]T, error) {
	fileHeader, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s upload: %w", field, err)
	}
	return decodeUpload[T](fileHeader)
}

func uploadError(c echo.Context, err error) error {
	var parseErr *dataset.ParseError
	switch {
	case errors.Is(err, dataset.ErrUnsupportedFormat):
		return Error(c, http.StatusBadRequest, "unsupported dataset format (use json, csv or xlsx)")
	case errors.Is(err, errEmptyDataset):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &parseErr):
		return Error(c, http.StatusBadRequest, parseErr.Error())
	default:
		return Error(c, http.StatusBadRequest, "unable to read uploaded file")
	}
}
