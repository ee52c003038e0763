// Package enrich aggregates npm package data from three independent
// upstream sources (registry metadata, ecosyste.ms usage statistics, and
// the npm downloads API) into one normalized record per package.
//
// A batch run fans out over all input identifiers concurrently while a
// single shared limiter caps in-flight upstream requests; one unreachable
// or malformed package never aborts the batch.
//
// Basic usage:
//
//	runner := enrich.New()
//	result := runner.Run(context.Background(), []string{"react", "left-pad"})
//	for _, rec := range result.Records {
//		if rec.Failed() {
//			log.Printf("%s: %s", rec.Name, rec.Error)
//			continue
//		}
//		fmt.Println(rec.Name, rec.Downloads.Total)
//	}
//
// The refresh policy for already-populated packages uses completed
// calendar weeks instead of a trailing day window:
//
//	runner := enrich.New(enrich.WithCalendarWeeks(8))
package enrich

import (
	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
	"github.com/git-pkgs/enrich/internal/downloads"
	"github.com/git-pkgs/enrich/internal/pipeline"
)

// Re-export types from internal/core
type (
	// Record is the normalized enrichment result for one package.
	Record = core.Record

	// BatchResult is the ordered result set for one batch run.
	BatchResult = core.BatchResult

	// Day is a calendar day marshaling as "2006-01-02".
	Day = core.Day

	// DailyDownload is one day of the raw download time series.
	DailyDownload = core.DailyDownload

	// WeeklyBucket is a weekly aggregate of daily downloads.
	WeeklyBucket = core.WeeklyBucket

	// DownloadSummary combines the lifetime total with weekly trends.
	DownloadSummary = core.DownloadSummary

	// Limiter bounds concurrently executing upstream requests.
	Limiter = core.Limiter
)

// Re-export types from client
type (
	// Client is the HTTP client used for upstream JSON APIs.
	Client = client.Client

	// Endpoints constructs request URLs for the three upstream sources.
	Endpoints = client.Endpoints

	// HTTPError represents a non-success response from an upstream.
	HTTPError = client.HTTPError
)

// Re-export the runner and its options
type (
	// Runner fans out enrichment over a batch of identifiers.
	Runner = pipeline.Runner

	// Option configures a Runner.
	Option = pipeline.Option
)

var (
	WithClient         = pipeline.WithClient
	WithEndpoints      = pipeline.WithEndpoints
	WithConcurrency    = pipeline.WithConcurrency
	WithTrailingDays   = pipeline.WithTrailingDays
	WithCalendarWeeks  = pipeline.WithCalendarWeeks
	WithLogger         = pipeline.WithLogger
	WithClock          = pipeline.WithClock
	WithCircuitBreaker = pipeline.WithCircuitBreaker
)

// DefaultConcurrency is the default cap on in-flight upstream requests.
const DefaultConcurrency = core.DefaultConcurrency

// NewDay returns the Day for a given calendar date.
var NewDay = core.NewDay

// DayOf truncates a time to its calendar day in UTC.
var DayOf = core.DayOf

// New creates a batch runner. With no options it talks to the production
// endpoints, caps in-flight requests at DefaultConcurrency, and buckets a
// trailing 60-day window into fixed 7-day chunks.
func New(opts ...Option) *Runner {
	return pipeline.NewRunner(opts...)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - DNS-cached dialing
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...client.Option) *Client {
	return client.NewClient(opts...)
}

// DefaultEndpoints returns the production upstream endpoints.
func DefaultEndpoints() Endpoints {
	return client.DefaultEndpoints()
}

// PackagePage returns the canonical npmjs.com page for a package.
func PackagePage(name string) string {
	return client.PackagePage(name)
}

// ParseIdentifier resolves a batch input identifier (a plain npm name or
// a pkg:npm/... package URL) to a registry package name.
func ParseIdentifier(id string) (string, error) {
	return core.ParseIdentifier(id)
}

// Bucketing alignments, re-exported for callers that aggregate their own
// series.
type Alignment = downloads.Alignment

const (
	AlignFixedChunk   = downloads.AlignFixedChunk
	AlignCalendarWeek = downloads.AlignCalendarWeek
)

// Bucketize converts a chronological daily series into weekly aggregates
// under the given alignment.
func Bucketize(series []DailyDownload, align Alignment) []WeeklyBucket {
	return downloads.Bucketize(series, align)
}
