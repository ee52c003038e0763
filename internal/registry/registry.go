// Package registry fetches canonical package metadata from the npm
// registry API.
package registry

import (
	"context"
	"errors"
	"sort"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
)

// ErrNoVersionInfo is returned when the registry document has no
// resolvable "latest" version.
var ErrNoVersionInfo = errors.New("no version information found")

// Source fetches metadata for one package at a time.
type Source struct {
	endpoints client.Endpoints
	client    client.JSONGetter
}

// New creates a metadata source backed by the given endpoints and client.
func New(endpoints client.Endpoints, c client.JSONGetter) *Source {
	return &Source{endpoints: endpoints, client: c}
}

type packageResponse struct {
	Description string                 `json:"description"`
	DistTags    map[string]string      `json:"dist-tags"`
	Versions    map[string]versionInfo `json:"versions"`
}

type versionInfo struct {
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// FetchMetadata retrieves the registry document for name and extracts the
// description, dependency name sets, and latest version tag.
func (s *Source) FetchMetadata(ctx context.Context, name string) (*core.Metadata, error) {
	var resp packageResponse
	if err := s.client.GetJSON(ctx, s.endpoints.Package(name), &resp); err != nil {
		return nil, err
	}

	latest := resp.DistTags["latest"]
	if latest == "" {
		return nil, ErrNoVersionInfo
	}
	v, ok := resp.Versions[latest]
	if !ok {
		return nil, ErrNoVersionInfo
	}

	return &core.Metadata{
		Description:      resp.Description,
		Dependencies:     sortedKeys(v.Dependencies),
		PeerDependencies: sortedKeys(v.PeerDependencies),
		LatestVersion:    latest,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
