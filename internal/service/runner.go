package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/entity"
	"github.com/bara-directory/seeder/internal/notify"
	"github.com/bara-directory/seeder/internal/pipeline"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/sink"
)

// ErrRunInProgress is returned when this process is already running an import.
var ErrRunInProgress = errors.New("an import is already running")

// ValidationError indicates that the caller supplied unusable input.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// Destination is where imports go: a lookup store plus row writers.
type Destination interface {
	Name() string
	resolver.Store
	sink.BusinessWriter
	sink.EventWriter
}

// Locker serialises imports across processes.
type Locker interface {
	AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (func(context.Context) error, error)
}

// RunRecorder receives the summary of every finished run.
type RunRecorder interface {
	RunFinished(stats pipeline.Stats, finished time.Time)
}

// RunSummary is returned to callers and published once a run ends.
type RunSummary struct {
	RunID       string         `json:"run_id"`
	Kind        string         `json:"kind"`
	Destination string         `json:"destination"`
	Mode        sink.Mode      `json:"mode"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Cancelled   bool           `json:"cancelled"`
	Stats       pipeline.Stats `json:"stats"`
	Lookups     resolver.Stats `json:"lookups"`
}

// RunnerOptions carries the optional collaborators of a Runner.
type RunnerOptions struct {
	Mode     sink.Mode
	Retry    pipeline.RetryPolicy
	Observer pipeline.Observer
	Recorder RunRecorder
	Locker   Locker
	LockTTL  time.Duration
	Notifier notify.Notifier
}

// Runner executes import runs against one destination, one run at a time.
type Runner struct {
	dest       Destination
	resolver   *resolver.Resolver
	normalizer *Normalizer
	opts       RunnerOptions

	mu sync.Mutex
}

// NewRunner wires a runner.
func NewRunner(dest Destination, res *resolver.Resolver, normalizer *Normalizer, opts RunnerOptions) *Runner {
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = pipeline.NoRetry
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Minute
	}
	if opts.Mode == "" {
		opts.Mode = sink.ModeInsert
	}
	return &Runner{dest: dest, resolver: res, normalizer: normalizer, opts: opts}
}

// ImportBusinesses normalises, resolves and writes records in order.
func (r *Runner) ImportBusinesses(ctx context.Context, records []entity.Business) (RunSummary, error) {
	p := &pipeline.Pipeline[entity.Business, entity.BusinessRow]{
		Name:      "businesses",
		Label:     entity.Business.Label,
		Transform: r.normalizer.Business,
		Resolve: func(ctx context.Context, b entity.Business) (entity.BusinessRow, error) {
			return ResolveBusiness(ctx, r.resolver, b)
		},
		Sink:     sink.Businesses(r.dest.Name(), r.dest),
		Retry:    r.opts.Retry,
		Observer: r.opts.Observer,
	}
	return execute(ctx, r, p, records)
}

// ImportEvents normalises, resolves and writes records in order.
func (r *Runner) ImportEvents(ctx context.Context, records []entity.Event) (RunSummary, error) {
	p := &pipeline.Pipeline[entity.Event, entity.EventRow]{
		Name:      "events",
		Label:     entity.Event.Label,
		Transform: r.normalizer.Event,
		Resolve: func(ctx context.Context, e entity.Event) (entity.EventRow, error) {
			return ResolveEvent(ctx, r.resolver, e)
		},
		Sink:     sink.Events(r.dest.Name(), r.dest),
		Retry:    r.opts.Retry,
		Observer: r.opts.Observer,
	}
	return execute(ctx, r, p, records)
}

func execute[In, Out any](ctx context.Context, r *Runner, p *pipeline.Pipeline[In, Out], records []In) (RunSummary, error) {
	if !r.mu.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	summary := RunSummary{
		RunID:       uuid.NewString(),
		Kind:        p.Name,
		Destination: r.dest.Name(),
		Mode:        r.opts.Mode,
		StartedAt:   time.Now().UTC(),
	}
	logger := log.With().Str("run_id", summary.RunID).Str("kind", p.Name).Logger()

	if r.opts.Locker != nil {
		release, err := r.opts.Locker.AcquireLock(ctx, "import", summary.RunID, r.opts.LockTTL)
		if err != nil {
			return summary, fmt.Errorf("acquire import lock: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("failed to release import lock")
			}
		}()
	}

	r.resolver.Reset()
	stats, runErr := p.Run(ctx, records)
	summary.FinishedAt = time.Now().UTC()
	summary.Stats = stats
	summary.Lookups = r.resolver.Stats()
	summary.Cancelled = runErr != nil

	if r.opts.Recorder != nil {
		r.opts.Recorder.RunFinished(stats, summary.FinishedAt)
	}

	event := "completed"
	if summary.Cancelled {
		event = "cancelled"
	}
	if err := r.opts.Notifier.Publish(context.WithoutCancel(ctx), event, summary); err != nil {
		logger.Warn().Err(err).Msg("failed to publish run summary")
	}

	logger.Info().
		Str("destination", summary.Destination).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("lookups_created", summary.Lookups.Created).
		Dur("duration", stats.Duration).
		Msg("run " + event)
	return summary, runErr
}
