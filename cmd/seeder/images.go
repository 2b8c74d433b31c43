package main

import (
	"context"
	"errors"
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/dataset"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/service"
)

func runImages(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("images", flag.ContinueOnError)
	in := fs.String("in", "", "events dataset file")
	out := fs.String("out", "", "output JSON file; defaults to -in")
	profile := fs.String("profile", "rwanda", "pools profile whose image pools are used")
	overwrite := fs.Bool("overwrite", false, "replace images that are already set")
	seed := fs.Int64("seed", 0, "random seed; 0 picks one from the clock")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}
	if *out == "" {
		*out = *in
	}

	events, err := dataset.Load[entity.Event](*in)
	if err != nil {
		return err
	}
	assigned, err := service.NewGeneratorService(e.pools, nil).AssignImages(*profile, events, *overwrite, *seed)
	if err != nil {
		return err
	}
	if err := dataset.Save(*out, events); err != nil {
		return err
	}
	log.Info().Int("events", len(events)).Int("assigned", assigned).Str("out", *out).Msg("event images assigned")
	return nil
}
