// Package stats turns a job collection into the figures shown on the
// statistics page: status counts, funnel rates, the next interview and the
// applications-over-time histogram.
//
// Everything here is pure. Callers pass the collection, the time view and
// the evaluation time explicitly.
package stats

import (
	"fmt"
	"time"

	"github.com/justsurfingit/jobtracker/internal/models"
)

type StatusCount struct {
	Status models.Status `json:"name"`
	Count  int           `json:"value"`
}

type Funnel struct {
	TotalJobs    int `json:"total_jobs"`
	Applied      int `json:"applied"`
	Offers       int `json:"offers"`
	Rejected     int `json:"rejected"`
	HadInterview int `json:"had_interview"`
	HadOffer     int `json:"had_offer"`
	// GotResponse is HadInterview + HadOffer. A record with both milestones
	// counts twice; the rate displays are calibrated to that.
	GotResponse int `json:"got_response"`

	ResponseRate   string `json:"response_rate"`
	ConversionRate string `json:"conversion_rate"`
	RejectionRate  string `json:"rejection_rate"`
}

type Report struct {
	StatusCounts map[models.Status]int `json:"status_counts"`
	// Breakdown holds the same counts in first-appearance order.
	Breakdown []StatusCount `json:"breakdown"`
	Funnel    Funnel        `json:"funnel"`
	Upcoming  *models.Job   `json:"upcoming_interview"`
	View      TimeView      `json:"view"`
	Timeline  []Bucket      `json:"timeline"`
}

// Compute builds the full report for jobs as seen at now. Unknown views
// report as month.
func Compute(jobs []models.Job, view TimeView, now time.Time) Report {
	view = view.normalize()
	counts, breakdown := CountStatuses(jobs)
	return Report{
		StatusCounts: counts,
		Breakdown:    breakdown,
		Funnel:       FunnelOf(jobs, counts),
		Upcoming:     UpcomingInterview(jobs, now),
		View:         view,
		Timeline:     Histogram(jobs, view),
	}
}

// CountStatuses tallies jobs per status. Jobs with no status count as Unknown.
func CountStatuses(jobs []models.Job) (map[models.Status]int, []StatusCount) {
	counts := make(map[models.Status]int)
	breakdown := make([]StatusCount, 0, len(models.Statuses))
	index := make(map[models.Status]int)

	for _, job := range jobs {
		s := job.Status
		if s == "" {
			s = models.StatusUnknown
		}
		counts[s]++
		if i, ok := index[s]; ok {
			breakdown[i].Count++
			continue
		}
		index[s] = len(breakdown)
		breakdown = append(breakdown, StatusCount{Status: s, Count: 1})
	}
	return counts, breakdown
}

// FunnelOf derives the pipeline counts and rates. counts must come from
// CountStatuses over the same jobs.
func FunnelOf(jobs []models.Job, counts map[models.Status]int) Funnel {
	f := Funnel{
		TotalJobs: len(jobs),
		Offers:    counts[models.StatusOffer],
		Rejected:  counts[models.StatusRejected],
	}
	for _, job := range jobs {
		if job.Status.Submitted() {
			f.Applied++
		}
		if job.HadInterview || job.Status == models.StatusInterview {
			f.HadInterview++
		}
		if job.HadOffer || job.Status == models.StatusOffer {
			f.HadOffer++
		}
	}
	f.GotResponse = f.HadInterview + f.HadOffer
	f.ResponseRate = Rate(f.GotResponse, f.Applied)
	f.ConversionRate = Rate(f.Offers, f.Applied)
	f.RejectionRate = Rate(f.Rejected, f.Applied)
	return f
}

// Rate renders n/of as a percentage with one decimal, or "0" when of is zero.
func Rate(n, of int) string {
	if of == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(n)/float64(of)*100)
}

// UpcomingInterview picks the Interview-stage job with the earliest deadline
// strictly after now. Ties keep collection order. Returns nil when none match.
func UpcomingInterview(jobs []models.Job, now time.Time) *models.Job {
	var (
		best     *models.Job
		bestDate time.Time
	)
	for i := range jobs {
		job := &jobs[i]
		if job.Status != models.StatusInterview {
			continue
		}
		d, ok := ParseDate(job.Deadline)
		if !ok || !d.After(now) {
			continue
		}
		if best == nil || d.Before(bestDate) {
			best, bestDate = job, d
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}
