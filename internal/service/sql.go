package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/pipeline"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/sink"
	"github.com/bara-directory/seeder/internal/sqltext"
	"github.com/bara-directory/seeder/internal/storage"
)

// SQLRequest describes one generated script.
type SQLRequest struct {
	Title      string
	Country    string
	Mode       sink.Mode
	Businesses []entity.Business
	Events     []entity.Event
	Upload     bool
}

// SQLResult reports what went into the script.
type SQLResult struct {
	RunID      string         `json:"run_id"`
	Businesses pipeline.Stats `json:"businesses"`
	Events     pipeline.Stats `json:"events"`
	Skipped    int            `json:"skipped"`
	Artifact   string         `json:"artifact,omitempty"`
}

// SQLService renders datasets as standalone SQL scripts.
type SQLService struct {
	normalizer *Normalizer
	storage    storage.StorageService
	observer   pipeline.Observer
}

// NewSQLService builds the service. store and observer may be nil.
func NewSQLService(normalizer *Normalizer, store storage.StorageService, observer pipeline.Observer) *SQLService {
	return &SQLService{normalizer: normalizer, storage: store, observer: observer}
}

// Render writes the script for req to w. Records rejected by the normaliser
// are left out and counted as skipped.
func (s *SQLService) Render(ctx context.Context, w io.Writer, req SQLRequest) (SQLResult, error) {
	res := SQLResult{RunID: uuid.NewString()}
	out := w
	var buf bytes.Buffer
	if req.Upload && s.storage != nil {
		out = io.MultiWriter(w, &buf)
	}

	businesses, events, err := s.normalize(req, &res)
	if err != nil {
		return res, err
	}

	script := sqltext.NewWriter(out, req.Mode, resolver.DescribeIn(req.Country))
	script.Header(req.Title, time.Now())
	script.Lookups(businesses, events)

	bp := &pipeline.Pipeline[entity.Business, entity.Business]{
		Name:     "sql-businesses",
		Label:    entity.Business.Label,
		Resolve:  pipeline.Identity[entity.Business],
		Sink:     script.BusinessSink(),
		Retry:    pipeline.NoRetry,
		Observer: s.observer,
	}
	if res.Businesses, err = bp.Run(ctx, businesses); err != nil {
		return res, err
	}
	ep := &pipeline.Pipeline[entity.Event, entity.Event]{
		Name:     "sql-events",
		Label:    entity.Event.Label,
		Resolve:  pipeline.Identity[entity.Event],
		Sink:     script.EventSink(),
		Retry:    pipeline.NoRetry,
		Observer: s.observer,
	}
	if res.Events, err = ep.Run(ctx, events); err != nil {
		return res, err
	}

	script.Verification()
	if err := script.Flush(); err != nil {
		return res, err
	}

	if buf.Len() > 0 {
		name := fmt.Sprintf("%s/seed-%s.sql", time.Now().UTC().Format("2006-01-02"), res.RunID)
		location, err := s.storage.Upload(ctx, name, buf.Bytes(), "application/sql")
		if err != nil {
			return res, fmt.Errorf("upload sql artifact: %w", err)
		}
		res.Artifact = location
	}
	return res, nil
}

// normalize drops records the normaliser rejects. The lookup preamble covers
// only the remaining ones.
func (s *SQLService) normalize(req SQLRequest, res *SQLResult) ([]entity.Business, []entity.Event, error) {
	if len(req.Businesses) == 0 && len(req.Events) == 0 {
		return nil, nil, ValidationError{Message: "no records to render"}
	}
	businesses := make([]entity.Business, 0, len(req.Businesses))
	for _, b := range req.Businesses {
		nb, err := s.normalizer.Business(b)
		if err != nil {
			log.Warn().Err(err).Str("record", b.Label()).Msg("skipping business")
			res.Skipped++
			continue
		}
		businesses = append(businesses, nb)
	}
	events := make([]entity.Event, 0, len(req.Events))
	for _, e := range req.Events {
		ne, err := s.normalizer.Event(e)
		if err != nil {
			log.Warn().Err(err).Str("record", e.Label()).Msg("skipping event")
			res.Skipped++
			continue
		}
		events = append(events, ne)
	}
	return businesses, events, nil
}
