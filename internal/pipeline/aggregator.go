// Package pipeline orchestrates per-package enrichment and batch fan-out.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
	"github.com/git-pkgs/enrich/internal/downloads"
	"github.com/git-pkgs/enrich/internal/ecosystems"
	"github.com/git-pkgs/enrich/internal/registry"
)

// WindowFunc computes the trend query window from the current time.
type WindowFunc func(now time.Time) downloads.Window

// Aggregator runs the fetch/compose sequence for a single package:
// metadata, then usage statistics, then download trends, every upstream
// call gated through one shared limiter. The first failing stage
// short-circuits into an error record; nothing escapes as an error.
type Aggregator struct {
	registry *registry.Source
	stats    *ecosystems.Source
	trends   *downloads.Source

	limiter *core.Limiter
	window  WindowFunc
	align   downloads.Alignment
	now     func() time.Time
}

// NewAggregator wires the three sources to a shared limiter.
func NewAggregator(endpoints client.Endpoints, c client.JSONGetter, limiter *core.Limiter, window WindowFunc, align downloads.Alignment, now func() time.Time) *Aggregator {
	return &Aggregator{
		registry: registry.New(endpoints, c),
		stats:    ecosystems.New(endpoints, c),
		trends:   downloads.New(endpoints, c),
		limiter:  limiter,
		window:   window,
		align:    align,
		now:      now,
	}
}

// Aggregate produces the normalized record for one input identifier. All
// failure modes, including panics from decoding faults, resolve to an
// error record so that no single package can terminate a batch.
func (a *Aggregator) Aggregate(ctx context.Context, id string) (rec core.Record) {
	name := id
	defer func() {
		if r := recover(); r != nil {
			rec = core.ErrorRecord(name, fmt.Sprintf("unexpected fault: %v", r))
		}
	}()

	name, err := core.ParseIdentifier(id)
	if err != nil {
		return core.ErrorRecord(id, err.Error())
	}

	var meta *core.Metadata
	err = a.limiter.Do(ctx, func() error {
		var ferr error
		meta, ferr = a.registry.FetchMetadata(ctx, name)
		return ferr
	})
	if err != nil {
		return core.ErrorRecord(name, fmt.Sprintf("fetch package info: %v", err))
	}

	var usage *core.UsageStats
	err = a.limiter.Do(ctx, func() error {
		var ferr error
		usage, ferr = a.stats.FetchUsage(ctx, name)
		return ferr
	})
	if err != nil {
		return core.ErrorRecord(name, fmt.Sprintf("fetch ecosystem stats: %v", err))
	}

	var series []core.DailyDownload
	err = a.limiter.Do(ctx, func() error {
		var ferr error
		series, ferr = a.trends.FetchRange(ctx, name, a.window(a.now()))
		return ferr
	})
	if err != nil {
		return core.ErrorRecord(name, fmt.Sprintf("fetch download stats: %v", err))
	}

	trends := downloads.Bucketize(series, a.align)

	return core.Record{
		Name:             name,
		Description:      meta.Description,
		Link:             client.PackagePage(name),
		Dependencies:     meta.Dependencies,
		PeerDependencies: meta.PeerDependencies,
		Downloads: core.DownloadSummary{
			Total:        usage.TotalDownloads,
			WeeklyTrends: trends,
		},
		DependentPackagesCount: usage.DependentCount,
		LatestVersion:          meta.LatestVersion,
	}
}
