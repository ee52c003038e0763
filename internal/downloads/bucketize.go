package downloads

import (
	"time"

	"github.com/git-pkgs/enrich/internal/core"
)

// Alignment selects how daily entries are grouped into weekly buckets.
type Alignment int

const (
	// AlignFixedChunk groups the series into consecutive chunks of 7 days
	// in arrival order, independent of calendar weekday. A trailing chunk
	// of 1-6 days becomes a final partial bucket. Each bucket's
	// week_ending is the last day present in its chunk.
	AlignFixedChunk Alignment = iota

	// AlignCalendarWeek groups by calendar week starting Monday. A week is
	// emitted only once all 7 of its days have been observed; incomplete
	// weeks at either boundary of the series are dropped. Each bucket's
	// week_ending is the week's Sunday.
	AlignCalendarWeek
)

// Bucketize converts a chronological daily series into weekly aggregates
// under the given alignment. It is pure: the same series and alignment
// always produce the same buckets.
func Bucketize(series []core.DailyDownload, align Alignment) []core.WeeklyBucket {
	switch align {
	case AlignCalendarWeek:
		return bucketizeCalendar(series)
	default:
		return bucketizeFixed(series)
	}
}

func bucketizeFixed(series []core.DailyDownload) []core.WeeklyBucket {
	buckets := make([]core.WeeklyBucket, 0, (len(series)+6)/7)

	var sum int64
	var count int
	for i, d := range series {
		sum += d.Downloads
		count++
		if count == 7 || i == len(series)-1 {
			buckets = append(buckets, core.WeeklyBucket{
				WeekEnding: d.Day,
				Downloads:  sum,
			})
			sum, count = 0, 0
		}
	}
	return buckets
}

func bucketizeCalendar(series []core.DailyDownload) []core.WeeklyBucket {
	buckets := make([]core.WeeklyBucket, 0, len(series)/7)

	var weekStart core.Day
	var sum int64
	var count int
	for _, d := range series {
		if d.Day.Weekday() == time.Monday {
			weekStart = d.Day
			sum, count = 0, 0
		} else if count == 0 {
			// Mid-week series start, or a week abandoned after a gap:
			// skip until the next Monday opens a fresh week.
			continue
		}

		// Each entry must be the tracked Monday's next consecutive day.
		// A gap that jumps into a different week abandons the
		// accumulation rather than merging days from two weeks.
		if !d.Day.Equal(weekStart.AddDays(count).Time) {
			sum, count = 0, 0
			continue
		}

		sum += d.Downloads
		count++
		if count == 7 {
			buckets = append(buckets, core.WeeklyBucket{
				WeekEnding: d.Day,
				Downloads:  sum,
			})
		}
	}
	return buckets
}
