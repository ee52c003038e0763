// Package core provides the shared data model and concurrency primitives
// for the enrichment pipeline.
package core

import (
	"fmt"
	"strings"
	"time"
)

const dayFormat = "2006-01-02"

// Day is a calendar day. It marshals as "2006-01-02", matching the date
// strings used by the download time-series API.
type Day struct {
	time.Time
}

// NewDay returns the Day for a given calendar date.
func NewDay(year int, month time.Month, day int) Day {
	return Day{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a time to its calendar day in UTC.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return NewDay(y, m, d)
}

// AddDays returns the day n days after d.
func (d Day) AddDays(n int) Day {
	return Day{d.Time.AddDate(0, 0, n)}
}

func (d Day) String() string {
	return d.Format(dayFormat)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dayFormat) + `"`), nil
}

func (d *Day) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	t, err := time.ParseInLocation(dayFormat, s, time.UTC)
	if err != nil {
		return fmt.Errorf("parsing day %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Metadata holds the fields extracted from the registry document for a
// package's latest version.
type Metadata struct {
	Description      string
	Dependencies     []string
	PeerDependencies []string
	LatestVersion    string
}

// UsageStats holds aggregate figures from the usage statistics source.
type UsageStats struct {
	TotalDownloads int64
	DependentCount int64
}

// DailyDownload is one day of the raw download time series.
type DailyDownload struct {
	Day       Day   `json:"day"`
	Downloads int64 `json:"downloads"`
}

// WeeklyBucket is a weekly aggregate of daily downloads. Downloads is the
// sum over the 1-7 days assigned to the bucket.
type WeeklyBucket struct {
	WeekEnding Day   `json:"week_ending"`
	Downloads  int64 `json:"downloads"`
}

// DownloadSummary combines the lifetime total with the weekly trend series.
type DownloadSummary struct {
	Total        int64          `json:"total"`
	WeeklyTrends []WeeklyBucket `json:"weekly_trends"`
}

// Record is the normalized result for one package. Either Error is empty
// and the data fields are populated, or Error carries the failing stage's
// message and every other field holds its zero/empty form.
type Record struct {
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	Link                   string          `json:"link"`
	Dependencies           []string        `json:"dependencies"`
	PeerDependencies       []string        `json:"peerDependencies"`
	Downloads              DownloadSummary `json:"downloads"`
	DependentPackagesCount int64           `json:"dependent_packages_count"`
	LatestVersion          string          `json:"latest_version"`
	Error                  string          `json:"error,omitempty"`
}

// Failed reports whether the record represents a per-package failure.
func (r *Record) Failed() bool {
	return r.Error != ""
}

// ErrorRecord builds the failure form of a record. Collections are empty
// rather than nil so the record serializes with [] instead of null.
func ErrorRecord(name, msg string) Record {
	return Record{
		Name:             name,
		Dependencies:     []string{},
		PeerDependencies: []string{},
		Downloads:        DownloadSummary{WeeklyTrends: []WeeklyBucket{}},
		Error:            msg,
	}
}

// BatchResult is the outcome of one batch run. Records is ordered to match
// the input identifier order.
type BatchResult struct {
	Records   []Record `json:"records"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
}
