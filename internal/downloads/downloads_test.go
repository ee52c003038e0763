package downloads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/git-pkgs/enrich/client"
	"github.com/git-pkgs/enrich/internal/core"
)

func testEndpoints(base string) client.Endpoints {
	return client.Endpoints{RegistryBase: base, StatsBase: base, TrendBase: base}
}

func TestFetchRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/range/2024-01-01:2024-01-03/left-pad" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"start": "2024-01-01",
			"end": "2024-01-03",
			"package": "left-pad",
			"downloads": [
				{"day": "2024-01-01", "downloads": 100},
				{"day": "2024-01-02", "downloads": 200},
				{"day": "2024-01-03", "downloads": 300}
			]
		}`))
	}))
	defer server.Close()

	src := New(testEndpoints(server.URL), client.DefaultClient())
	w := Window{Start: core.NewDay(2024, time.January, 1), End: core.NewDay(2024, time.January, 3)}
	series, err := src.FetchRange(context.Background(), "left-pad", w)
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("got %d days, want 3", len(series))
	}
	if !series[0].Day.Equal(w.Start.Time) || series[0].Downloads != 100 {
		t.Errorf("unexpected first day: %+v", series[0])
	}
	if series[2].Downloads != 300 {
		t.Errorf("last day downloads = %d, want 300", series[2].Downloads)
	}
}

func TestFetchRangeEmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"downloads": []}`))
	}))
	defer server.Close()

	src := New(testEndpoints(server.URL), client.DefaultClient())
	w := Window{Start: core.NewDay(2024, time.January, 1), End: core.NewDay(2024, time.January, 3)}
	series, err := src.FetchRange(context.Background(), "brand-new-package", w)
	if err != nil {
		t.Fatalf("FetchRange failed: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("got %d days, want 0", len(series))
	}
}

func TestFetchRangeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := New(testEndpoints(server.URL), client.DefaultClient())
	w := Window{Start: core.NewDay(2024, time.January, 1), End: core.NewDay(2024, time.January, 3)}
	_, err := src.FetchRange(context.Background(), "left-pad", w)

	var httpErr *client.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("FetchRange = %v, want *client.HTTPError", err)
	}
	if httpErr.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", httpErr.StatusCode)
	}
}

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)
	w := TrailingWindow(now, 60)

	if got, want := w.End, core.NewDay(2024, time.March, 6); !got.Equal(want.Time) {
		t.Errorf("End = %v, want %v", got, want)
	}
	if got, want := w.Start, core.NewDay(2024, time.January, 6); !got.Equal(want.Time) {
		t.Errorf("Start = %v, want %v", got, want)
	}
}

func TestCompletedWeeksWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart core.Day
		wantEnd   core.Day
	}{
		{
			"midweek",
			time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC), // Wednesday
			core.NewDay(2024, time.January, 7),
			core.NewDay(2024, time.March, 3),
		},
		{
			"on a Sunday",
			time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC),
			core.NewDay(2024, time.January, 7),
			core.NewDay(2024, time.March, 3),
		},
		{
			"on a Monday",
			time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
			core.NewDay(2024, time.January, 7),
			core.NewDay(2024, time.March, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := CompletedWeeksWindow(tt.now, 8)
			if !w.Start.Equal(tt.wantStart.Time) {
				t.Errorf("Start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantEnd.Time) {
				t.Errorf("End = %v, want %v", w.End, tt.wantEnd)
			}
			if w.End.Weekday() != time.Sunday {
				t.Errorf("End weekday = %v, want Sunday", w.End.Weekday())
			}
		})
	}
}
