package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/justsurfingit/jobtracker/internal/models"
)

type TimeView string

const (
	ViewMonth TimeView = "month"
	ViewWeek  TimeView = "week"
	ViewDay   TimeView = "day"
)

// maxDayBuckets caps the day view to the most recent buckets.
const maxDayBuckets = 30

// ParseTimeView maps a query value to a TimeView. Blank means month.
func ParseTimeView(s string) (TimeView, error) {
	switch TimeView(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	case ViewDay:
		return ViewDay, nil
	}
	return "", fmt.Errorf("unknown time view %q", s)
}

// normalize maps any value outside the three known views to month.
func (v TimeView) normalize() TimeView {
	switch v {
	case ViewWeek, ViewDay:
		return v
	}
	return ViewMonth
}

// Bucket is one bar of the applications-over-time chart.
type Bucket struct {
	Key          string `json:"key"`
	Label        string `json:"name"`
	Applications int    `json:"applications"`
}

// Histogram counts submitted applications per time bucket, oldest first.
// Wishlist entries and records without a parseable applied_on are skipped.
// Unknown views are treated as month.
func Histogram(jobs []models.Job, view TimeView) []Bucket {
	view = view.normalize()
	counts := make(map[string]int)
	starts := make(map[string]time.Time)

	for _, job := range jobs {
		if job.Status == models.StatusWishlist {
			continue
		}
		d, ok := ParseDate(job.AppliedOn)
		if !ok {
			continue
		}
		start := bucketStart(d, view)
		key := start.Format(keyLayout(view))
		counts[key]++
		starts[key] = start
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Keys are zero-padded ISO strings so lexical order is chronological.
	sort.Strings(keys)

	if view == ViewDay && len(keys) > maxDayBuckets {
		keys = keys[len(keys)-maxDayBuckets:]
	}

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{
			Key:          k,
			Label:        starts[k].Format(labelLayout(view)),
			Applications: counts[k],
		})
	}
	return out
}

func bucketStart(d time.Time, view TimeView) time.Time {
	switch view {
	case ViewMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case ViewWeek:
		return weekStart(d)
	default:
		return d
	}
}

func keyLayout(view TimeView) string {
	if view == ViewMonth {
		return "2006-01"
	}
	return dateLayout
}

func labelLayout(view TimeView) string {
	if view == ViewMonth {
		return "Jan 2006"
	}
	return "Jan 2"
}
