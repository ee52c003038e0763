package client

import (
	"fmt"
	"net/url"
	"strings"
)

// Default upstream base URLs.
const (
	DefaultRegistryURL = "https://registry.npmjs.org"
	DefaultStatsURL    = "https://packages.ecosyste.ms/api/v1/registries/npmjs.org/packages"
	DefaultTrendURL    = "https://api.npmjs.org/downloads"
)

// Endpoints constructs request URLs for the three upstream data sources.
// A zero value is not usable; call DefaultEndpoints or fill in all bases.
type Endpoints struct {
	RegistryBase string
	StatsBase    string
	TrendBase    string
}

// DefaultEndpoints returns the production upstream endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		RegistryBase: DefaultRegistryURL,
		StatsBase:    DefaultStatsURL,
		TrendBase:    DefaultTrendURL,
	}
}

// Package returns the registry metadata URL for a package.
// Scoped names are path-escaped the way the registry expects.
func (e Endpoints) Package(name string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(e.RegistryBase, "/"), url.PathEscape(name))
}

// Stats returns the aggregate usage statistics URL for a package.
func (e Endpoints) Stats(name string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(e.StatsBase, "/"), name)
}

// Range returns the daily download time-series URL for a package over the
// inclusive date range [start, end], both formatted as YYYY-MM-DD.
func (e Endpoints) Range(start, end, name string) string {
	return fmt.Sprintf("%s/range/%s:%s/%s", strings.TrimSuffix(e.TrendBase, "/"), start, end, name)
}

// PackagePage returns the canonical npmjs.com page for a package.
func PackagePage(name string) string {
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}
