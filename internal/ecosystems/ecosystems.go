// Package ecosystems fetches aggregate usage statistics from the
// ecosyste.ms package API.
package ecosystems

import (
	"context"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
)

// Source fetches usage statistics for one package at a time.
type Source struct {
	endpoints client.Endpoints
	client    client.JSONGetter
}

// New creates a usage statistics source.
func New(endpoints client.Endpoints, c client.JSONGetter) *Source {
	return &Source{endpoints: endpoints, client: c}
}

type statsResponse struct {
	Downloads              int64 `json:"downloads"`
	DependentPackagesCount int64 `json:"dependent_packages_count"`
}

// FetchUsage retrieves total downloads and dependent package count.
// Fields missing from a success response stay at 0; that is valid data,
// not a failure.
func (s *Source) FetchUsage(ctx context.Context, name string) (*core.UsageStats, error) {
	var resp statsResponse
	if err := s.client.GetJSON(ctx, s.endpoints.Stats(name), &resp); err != nil {
		return nil, err
	}

	return &core.UsageStats{
		TotalDownloads: resp.Downloads,
		DependentCount: resp.DependentPackagesCount,
	}, nil
}
