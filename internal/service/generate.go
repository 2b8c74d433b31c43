package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/dataset"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/generator"
	"github.com/bara-directory/seeder/internal/storage"
)

// MaxGenerateCount bounds a single generation request.
const MaxGenerateCount = 10000

// GenerateParams selects what to fabricate.
type GenerateParams struct {
	Profile string
	Count   int
	Seed    int64
	// StartID is the first surrogate id; zero continues after the existing records.
	StartID int
	Upload  bool
}

// GenerateResult carries fabricated records and where they were uploaded.
type GenerateResult[T any] struct {
	RunID     string
	Records   []T
	Fallbacks int
	Artifact  string
}

// GeneratorService fabricates datasets from the pools and optionally stores
// them as artifacts.
type GeneratorService struct {
	pools   *catalog.Pools
	storage storage.StorageService
}

// NewGeneratorService builds the service. store may be nil.
func NewGeneratorService(pools *catalog.Pools, store storage.StorageService) *GeneratorService {
	return &GeneratorService{pools: pools, storage: store}
}

// Profiles lists the available pool profiles.
func (s *GeneratorService) Profiles() []string { return s.pools.Names() }

// GenerateBusinesses fabricates params.Count businesses whose names do not
// collide with existing.
func (s *GeneratorService) GenerateBusinesses(ctx context.Context, params GenerateParams, existing []entity.Business) (GenerateResult[entity.Business], error) {
	g, err := s.generator(params)
	if err != nil {
		return GenerateResult[entity.Business]{}, err
	}
	g.Reserve(lo.Map(existing, func(b entity.Business, _ int) string { return b.Name }), nil)

	res := GenerateResult[entity.Business]{
		RunID:   uuid.NewString(),
		Records: g.Businesses(params.Count, startID(params.StartID, len(existing))),
	}
	res.Fallbacks = g.Fallbacks()
	res.Artifact, err = upload(ctx, s.storage, params.Upload, res.RunID, "businesses", res.Records)
	return res, err
}

// GenerateEvents fabricates params.Count events whose titles do not collide
// with existing.
func (s *GeneratorService) GenerateEvents(ctx context.Context, params GenerateParams, existing []entity.Event) (GenerateResult[entity.Event], error) {
	g, err := s.generator(params)
	if err != nil {
		return GenerateResult[entity.Event]{}, err
	}
	g.Reserve(nil, lo.Map(existing, func(e entity.Event, _ int) string { return e.Title }))

	res := GenerateResult[entity.Event]{
		RunID:   uuid.NewString(),
		Records: g.Events(params.Count, startID(params.StartID, len(existing))),
	}
	res.Fallbacks = g.Fallbacks()
	res.Artifact, err = upload(ctx, s.storage, params.Upload, res.RunID, "events", res.Records)
	return res, err
}

// AssignImages fills event images from the profile's category pools and
// returns how many events changed.
func (s *GeneratorService) AssignImages(profile string, events []entity.Event, overwrite bool, seed int64) (int, error) {
	p, err := s.pools.Profile(profile)
	if err != nil {
		return 0, err
	}
	return generator.New(p, seed).AssignImages(events, overwrite), nil
}

func (s *GeneratorService) generator(params GenerateParams) (*generator.Generator, error) {
	if params.Count <= 0 || params.Count > MaxGenerateCount {
		return nil, ValidationError{Message: fmt.Sprintf("count must be between 1 and %d", MaxGenerateCount)}
	}
	profile, err := s.pools.Profile(params.Profile)
	if err != nil {
		return nil, err
	}
	return generator.New(profile, params.Seed), nil
}

func startID(requested, existing int) int {
	if requested > 0 {
		return requested
	}
	return existing + 1
}

func upload[T any](ctx context.Context, store storage.StorageService, enabled bool, runID, kind string, records []T) (string, error) {
	if !enabled || store == nil {
		return "", nil
	}
	data, err := dataset.Marshal(records)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s/%s-%s.json", time.Now().UTC().Format("2006-01-02"), kind, runID)
	location, err := store.Upload(ctx, name, data, "application/json")
	if err != nil {
		return "", fmt.Errorf("upload %s artifact: %w", kind, err)
	}
	log.Info().Str("run_id", runID).Str("artifact", location).Msg("uploaded generated dataset")
	return location, nil
}
