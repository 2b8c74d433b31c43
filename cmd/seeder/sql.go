package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/app"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
)

func runSQL(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("sql", flag.ContinueOnError)
	businessesPath := fs.String("businesses", "", "businesses dataset file")
	eventsPath := fs.String("events", "", "events dataset file")
	out := fs.String("out", "", "script file; stdout when empty")
	title := fs.String("title", "Directory seed data", "title written in the script header")
	country := fs.String("country", e.cfg.DefaultCountry, "country the created lookups are described in")
	upsert := fs.Bool("upsert", e.cfg.ImportMode == string(sink.ModeUpsert), "emit ON CONFLICT upserts instead of plain inserts")
	upload := fs.Bool("upload", false, "also store the script as an artifact")
	defaultCountry := fs.String("default-country", e.cfg.DefaultCountry, "country for records that name none")
	showProgress := fs.Bool("progress", false, "draw a progress bar on stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *businessesPath == "" && *eventsPath == "" {
		return errors.New("at least one of -businesses or -events is required")
	}

	businesses, err := loadExisting[entity.Business](*businessesPath)
	if err != nil {
		return err
	}
	events, err := loadExisting[entity.Event](*eventsPath)
	if err != nil {
		return err
	}

	store, closeStore, err := app.OpenStorage(ctx, e.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	observer, done := progress(*showProgress, len(businesses)+len(events), "SQL")
	defer done()
	svc := service.NewSQLService(service.NewNormalizer(*defaultCountry, e.pools), store, observer)

	var w io.Writer = e.stdout
	if *out != "" {
		if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	res, err := svc.Render(ctx, w, service.SQLRequest{
		Title:      *title,
		Country:    *country,
		Mode:       sink.ParseMode(*upsert),
		Businesses: businesses,
		Events:     events,
		Upload:     *upload,
	})
	if err != nil {
		return err
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("businesses", res.Businesses.Succeeded).
		Int("events", res.Events.Succeeded).
		Int("skipped", res.Skipped).
		Str("artifact", res.Artifact).
		Msg("sql script rendered")
	return nil
}
