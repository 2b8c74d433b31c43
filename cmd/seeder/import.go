package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/bara-directory/seeder/internal/app"
	"github.com/bara-directory/seeder/internal/dataset"
	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
	"github.com/bara-directory/seeder/internal/storage"
)

var errRecordsFailed = errors.New("some records failed")

func runImport(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	kind := fs.String("kind", "businesses", "what to import: businesses or events")
	in := fs.String("in", "", "dataset file (.json, .csv or .xlsx)")
	artifact := fs.String("artifact", "", "object name of a previously uploaded dataset, read from the artifact store instead of -in")
	upsert := fs.Bool("upsert", e.cfg.ImportMode == string(sink.ModeUpsert), "update rows that already exist instead of inserting duplicates")
	dryRun := fs.Bool("dry-run", false, "resolve and write into memory only")
	defaultCountry := fs.String("default-country", e.cfg.DefaultCountry, "country for records that name none")
	lookupOnly := fs.String("lookup-only", "", "comma separated lookup kinds that must already exist (country, city, category, event_category)")
	strict := fs.Bool("strict", false, "exit non-zero when any record fails")
	showProgress := fs.Bool("progress", true, "draw a progress bar on stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*in == "") == (*artifact == "") {
		return errors.New("exactly one of -in or -artifact is required")
	}
	kinds, err := parseKinds(*lookupOnly)
	if err != nil {
		return err
	}

	mode := sink.ParseMode(*upsert)
	stack, err := app.Open(ctx, e.cfg, app.Options{Mode: mode, DryRun: *dryRun})
	if err != nil {
		return err
	}
	defer stack.Close()

	opts := stack.RunnerOptions(e.cfg, mode)
	runner := func(total int, description string) (*service.Runner, func()) {
		observer, done := progress(*showProgress, total, description)
		opts.Observer = observer
		res := stack.Resolver(resolver.DescribeIn(*defaultCountry), kinds...)
		return service.NewRunner(stack.Destination, res, service.NewNormalizer(*defaultCountry, e.pools), opts), done
	}

	var summary service.RunSummary
	switch *kind {
	case "businesses":
		records, err := loadRecords[entity.Business](ctx, stack.Storage, *in, *artifact)
		if err != nil {
			return err
		}
		r, done := runner(len(records), "Businesses")
		summary, err = r.ImportBusinesses(ctx, records)
		done()
		if err != nil {
			return err
		}
	case "events":
		records, err := loadRecords[entity.Event](ctx, stack.Storage, *in, *artifact)
		if err != nil {
			return err
		}
		r, done := runner(len(records), "Events")
		summary, err = r.ImportEvents(ctx, records)
		done()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q: use businesses or events", *kind)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(out))

	if *strict && summary.Stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errRecordsFailed, summary.Stats.Failed, summary.Stats.Total)
	}
	return nil
}

func parseKinds(value string) ([]entity.LookupKind, error) {
	var kinds []entity.LookupKind
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind := entity.LookupKind(part)
		if kind.Table() == "" {
			return nil, fmt.Errorf("unknown lookup kind %q", part)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// loadRecords reads the dataset from path, or downloads the named artifact
// when one is given.
func loadRecords[T any](ctx context.Context, store storage.StorageService, path, artifact string) ([]T, error) {
	if artifact == "" {
		return dataset.Load[T](path)
	}
	if store == nil {
		return nil, errors.New("-artifact needs GCS_BUCKET or ARTIFACT_DIR")
	}
	format, err := dataset.FormatFromPath(artifact)
	if err != nil {
		return nil, err
	}
	data, err := store.Download(ctx, artifact)
	if err != nil {
		return nil, err
	}
	return dataset.Decode[T](bytes.NewReader(data), format)
}
