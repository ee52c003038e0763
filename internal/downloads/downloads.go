// Package downloads fetches daily download time series from the npm
// downloads API and aggregates them into weekly buckets.
package downloads

import (
	"context"
	"time"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
)

// Window is an inclusive date range for the time-series query.
type Window struct {
	Start core.Day
	End   core.Day
}

// TrailingWindow returns the window covering the `days` days up to now.
// This is the initial-population window, paired with fixed-chunk
// bucketing.
func TrailingWindow(now time.Time, days int) Window {
	end := core.DayOf(now)
	return Window{Start: end.AddDays(-days), End: end}
}

// CompletedWeeksWindow returns the window covering the last `weeks`
// completed calendar weeks, ending on the most recent Sunday (today, if
// today is Sunday). This is the refresh window, paired with calendar-week
// bucketing.
func CompletedWeeksWindow(now time.Time, weeks int) Window {
	today := core.DayOf(now)
	lastSunday := today.AddDays(-int(today.Weekday()))
	return Window{Start: lastSunday.AddDays(-weeks * 7), End: lastSunday}
}

// Source fetches raw daily download series for one package at a time.
type Source struct {
	endpoints client.Endpoints
	client    client.JSONGetter
}

// New creates a download trend source.
func New(endpoints client.Endpoints, c client.JSONGetter) *Source {
	return &Source{endpoints: endpoints, client: c}
}

type rangeResponse struct {
	Downloads []core.DailyDownload `json:"downloads"`
}

// FetchRange retrieves the per-day download series over w, in
// chronological order as returned by the API. An empty series is valid.
func (s *Source) FetchRange(ctx context.Context, name string, w Window) ([]core.DailyDownload, error) {
	url := s.endpoints.Range(w.Start.String(), w.End.String(), name)

	var resp rangeResponse
	if err := s.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp.Downloads, nil
}
