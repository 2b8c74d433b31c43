package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/app"
	"github.com/bara-directory/seeder/internal/dataset"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/service"
)

func runGenerate(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	kind := fs.String("kind", "businesses", "what to generate: businesses or events")
	profile := fs.String("profile", "rwanda", "pools profile to draw from")
	count := fs.Int("count", 100, "number of records")
	seed := fs.Int64("seed", 0, "random seed; 0 picks one from the clock")
	startID := fs.Int("start-id", 0, "first surrogate id; 0 continues after -existing")
	existing := fs.String("existing", "", "dataset whose names and titles must not be reused")
	out := fs.String("out", "", "output JSON file; stdout when empty")
	upload := fs.Bool("upload", false, "also store the dataset as an artifact")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, closeStore, err := app.OpenStorage(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.NewGeneratorService(e.pools, store)
	params := service.GenerateParams{Profile: *profile, Count: *count, Seed: *seed, StartID: *startID, Upload: *upload}

	switch *kind {
	case "businesses":
		prior, err := loadExisting[entity.Business](*existing)
		if err != nil {
			return err
		}
		res, err := svc.GenerateBusinesses(ctx, params, prior)
		if err != nil {
			return err
		}
		logGenerated(res.RunID, len(res.Records), res.Fallbacks, res.Artifact)
		return emit(e, *out, res.Records)
	case "events":
		prior, err := loadExisting[entity.Event](*existing)
		if err != nil {
			return err
		}
		res, err := svc.GenerateEvents(ctx, params, prior)
		if err != nil {
			return err
		}
		logGenerated(res.RunID, len(res.Records), res.Fallbacks, res.Artifact)
		return emit(e, *out, res.Records)
	}
	return fmt.Errorf("unknown kind %q: use businesses or events", *kind)
}

func loadExisting[T any](path string) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	return dataset.Load[T](path)
}

func logGenerated(runID string, n, fallbacks int, artifact string) {
	log.Info().
		Str("run_id", runID).
		Int("records", n).
		Int("name_fallbacks", fallbacks).
		Str("artifact", artifact).
		Msg("dataset generated")
}

// emit writes records to path, or to stdout when path is empty.
func emit[T any](e *env, path string, records []T) error {
	if path != "" {
		return dataset.Save(path, records)
	}
	data, err := dataset.Marshal(records)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, string(data))
	return err
}
