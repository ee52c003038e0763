package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
	"github.com/git-pkgs/enrich/internal/downloads"
)

// Runner fans out package aggregation over a batch of identifiers and
// fans the results back in, preserving input order.
type Runner struct {
	client      client.JSONGetter
	endpoints   client.Endpoints
	concurrency int
	window      WindowFunc
	align       downloads.Alignment
	now         func() time.Time
	log         zerolog.Logger
	breaker     bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithClient sets a custom client for upstream requests.
func WithClient(c client.JSONGetter) Option {
	return func(r *Runner) {
		r.client = c
	}
}

// WithEndpoints overrides the upstream base URLs.
func WithEndpoints(e client.Endpoints) Option {
	return func(r *Runner) {
		r.endpoints = e
	}
}

// WithConcurrency sets the cap on in-flight upstream requests across the
// whole batch.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithTrailingDays queries a trailing window of n days and buckets it in
// fixed 7-day chunks, keeping a trailing partial week. This is the
// default, with n = 60.
func WithTrailingDays(n int) Option {
	return func(r *Runner) {
		r.window = func(now time.Time) downloads.Window {
			return downloads.TrailingWindow(now, n)
		}
		r.align = downloads.AlignFixedChunk
	}
}

// WithCalendarWeeks queries the last n completed calendar weeks, ending
// last Sunday, and buckets them Monday-aligned, dropping partial weeks.
// This is the refresh policy for already-populated packages.
func WithCalendarWeeks(n int) Option {
	return func(r *Runner) {
		r.window = func(now time.Time) downloads.Window {
			return downloads.CompletedWeeksWindow(now, n)
		}
		r.align = downloads.AlignCalendarWeek
	}
}

// WithLogger sets the logger for per-package progress events.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithClock sets the time source used to compute trend windows.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithCircuitBreaker wraps the client with per-host circuit breakers.
func WithCircuitBreaker() Option {
	return func(r *Runner) {
		r.breaker = true
	}
}

// NewRunner creates a batch runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		endpoints:   client.DefaultEndpoints(),
		concurrency: core.DefaultConcurrency,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	WithTrailingDays(60)(r)
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = client.DefaultClient()
	}
	if r.breaker {
		r.client = client.NewBreakerClient(r.client)
	}
	return r
}

// Run aggregates every identifier concurrently and returns one record per
// identifier, in input order. Individual failures never abort the batch;
// they surface as records with a populated error field and in the failure
// tally.
func (r *Runner) Run(ctx context.Context, identifiers []string) core.BatchResult {
	agg := NewAggregator(r.endpoints, r.client, core.NewLimiter(r.concurrency), r.window, r.align, r.now)

	records := make([]core.Record, len(identifiers))

	var g errgroup.Group
	for i, id := range identifiers {
		g.Go(func() error {
			rec := agg.Aggregate(ctx, id)
			if rec.Failed() {
				r.log.Warn().Str("package", rec.Name).Str("error", rec.Error).Msg("package enrichment failed")
			} else {
				r.log.Info().Str("package", rec.Name).Msg("package enriched")
			}
			records[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	result := core.BatchResult{Records: records}
	for i := range records {
		if records[i].Failed() {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result
}
