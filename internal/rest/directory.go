package rest

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/sink"
)

const (
	businessConflict = "name,category_id"
	eventConflict    = "title,start_date,city_id"
)

// Directory is the REST destination: a resolver store plus business and
// event writers, one request per call.
type Directory struct {
	client *Client
	mode   sink.Mode
}

// NewDirectory wraps client. Upsert mode merges on the natural keys.
func NewDirectory(client *Client, mode sink.Mode) *Directory {
	return &Directory{client: client, mode: mode}
}

func (d *Directory) Name() string { return "rest" }

type idRow struct {
	ID any `json:"id"`
}

// FindLookup queries table by exact name, and by country for cities.
func (d *Directory) FindLookup(ctx context.Context, kind entity.LookupKind, name, parentID string) (string, bool, error) {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("name", "eq."+name)
	if kind == entity.KindCity && parentID != "" {
		query.Set("country_id", "eq."+parentID)
	}
	query.Set("limit", "1")

	var rows []idRow
	if err := d.client.Select(ctx, kind.Table(), query, &rows); err != nil {
		return "", false, err
	}
	if len(rows) == 0 || rows[0].ID == nil {
		return "", false, nil
	}
	return fmt.Sprint(rows[0].ID), true, nil
}

// CreateLookup inserts row and returns the new identifier.
func (d *Directory) CreateLookup(ctx context.Context, kind entity.LookupKind, row entity.LookupRow) (string, error) {
	var rows []idRow
	if err := d.client.Insert(ctx, kind.Table(), row, "", &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].ID == nil {
		return "", fmt.Errorf("insert %s %q: no id returned", kind.Table(), row.Name)
	}
	return fmt.Sprint(rows[0].ID), nil
}

func (d *Directory) WriteBusiness(ctx context.Context, row entity.BusinessRow) error {
	return d.client.Insert(ctx, "businesses", row, d.conflict(businessConflict), nil)
}

func (d *Directory) WriteEvent(ctx context.Context, row entity.EventRow) error {
	return d.client.Insert(ctx, "events", row, d.conflict(eventConflict), nil)
}

func (d *Directory) conflict(columns string) string {
	if d.mode == sink.ModeUpsert {
		return columns
	}
	return ""
}

var (
	_ resolver.Store      = (*Directory)(nil)
	_ sink.BusinessWriter = (*Directory)(nil)
	_ sink.EventWriter    = (*Directory)(nil)
)
