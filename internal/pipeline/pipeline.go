package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/sink"
)

// Stage names the step at which a record failed.
type Stage string

const (
	StageTransform Stage = "transform"
	StageResolve   Stage = "resolve"
	StageWrite     Stage = "write"
)

// Outcome is reported to observers once per record.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeFailed  Outcome = "failed"
)

// Failure describes one record that did not reach the sink.
type Failure struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Stage Stage  `json:"stage"`
	Error string `json:"error"`
}

// Stats summarises a run. Failures keeps at most MaxFailureDetails entries.
type Stats struct {
	Pipeline  string        `json:"pipeline"`
	Sink      string        `json:"sink"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Retries   int           `json:"retries"`
	Duration  time.Duration `json:"duration"`
	Failures  []Failure     `json:"failures,omitempty"`
}

// MaxFailureDetails caps the failures kept in Stats.
const MaxFailureDetails = 100

// Observer receives per-record outcomes, for metrics and progress display.
type Observer interface {
	Observe(pipeline string, outcome Outcome, stage Stage, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(pipeline string, outcome Outcome, stage Stage, elapsed time.Duration)

func (f ObserverFunc) Observe(pipeline string, outcome Outcome, stage Stage, elapsed time.Duration) {
	f(pipeline, outcome, stage, elapsed)
}

// Pipeline moves records through transform, resolve and sink, one record at
// a time and in input order. A failing record is logged, counted and skipped;
// nothing already written is rolled back.
type Pipeline[In, Out any] struct {
	Name      string
	Label     func(In) string
	Transform func(In) (In, error)
	Resolve   func(context.Context, In) (Out, error)
	Sink      sink.Sink[Out]
	Retry     RetryPolicy
	Observer  Observer
}

// Run processes records. The returned error is non-nil only when ctx is
// cancelled; per-record failures are reported through Stats.
func (p *Pipeline[In, Out]) Run(ctx context.Context, records []In) (Stats, error) {
	stats := Stats{Pipeline: p.Name, Sink: p.Sink.Name(), Total: len(records)}
	started := time.Now()

	logger := log.With().Str("pipeline", p.Name).Str("sink", stats.Sink).Logger()
	logger.Info().Int("records", len(records)).Msg("pipeline started")

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(started)
			return stats, err
		}
		recordStart := time.Now()
		label := p.label(record)

		stage, retries, err := p.process(ctx, record)
		stats.Retries += retries
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctxErr := ctx.Err(); ctxErr != nil {
					stats.Duration = time.Since(started)
					return stats, ctxErr
				}
			}
			stats.Failed++
			if len(stats.Failures) < MaxFailureDetails {
				stats.Failures = append(stats.Failures, Failure{Index: i, Label: label, Stage: stage, Error: err.Error()})
			}
			logger.Error().Err(err).Str("record", label).Str("stage", string(stage)).Msg("record failed")
			p.observe(OutcomeFailed, stage, time.Since(recordStart))
			continue
		}
		stats.Succeeded++
		p.observe(OutcomeWritten, StageWrite, time.Since(recordStart))
	}

	stats.Duration = time.Since(started)
	logger.Info().
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("retries", stats.Retries).
		Msg("pipeline finished")
	return stats, nil
}

func (p *Pipeline[In, Out]) process(ctx context.Context, record In) (Stage, int, error) {
	if p.Transform != nil {
		var err error
		if record, err = p.Transform(record); err != nil {
			return StageTransform, 0, err
		}
	}
	out, err := p.Resolve(ctx, record)
	if err != nil {
		return StageResolve, 0, err
	}
	retries, err := Retry(ctx, p.Retry, func() error {
		return p.Sink.Write(ctx, out)
	})
	if err != nil {
		return StageWrite, retries, err
	}
	return StageWrite, retries, nil
}

func (p *Pipeline[In, Out]) label(record In) string {
	if p.Label == nil {
		return ""
	}
	return p.Label(record)
}

func (p *Pipeline[In, Out]) observe(outcome Outcome, stage Stage, elapsed time.Duration) {
	if p.Observer != nil {
		p.Observer.Observe(p.Name, outcome, stage, elapsed)
	}
}

// Identity is a Resolve step for sinks that take records unchanged.
func Identity[T any](_ context.Context, record T) (T, error) {
	return record, nil
}
