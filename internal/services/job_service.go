package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/stats"
	"github.com/justsurfingit/jobtracker/internal/store"
)

var ErrInvalidJob = errors.New("invalid job")

type JobService struct {
	Store store.Store
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func NewJobService(s store.Store, log logrus.FieldLogger) *JobService {
	return &JobService{
		Store: s,
		Log:   log,
		Now:   time.Now,
	}
}

// CreateJob builds a new record from the request and stores it for owner.
func (s *JobService) CreateJob(ctx context.Context, owner store.Owner, req *dtos.JobCreationRequest) (*models.Job, error) {
	title := strings.TrimSpace(req.Title)
	company := strings.TrimSpace(req.Company)
	if title == "" || company == "" {
		return nil, ErrInvalidJob
	}

	status := req.Status
	if status == "" {
		status = models.StatusWishlist
	}

	// The new-job form pre-fills today's date.
	appliedOn := s.Now().Format("2006-01-02")
	if req.AppliedOn != nil {
		appliedOn = strings.TrimSpace(*req.AppliedOn)
	}

	job := &models.Job{
		ID:         uuid.NewString(),
		Title:      title,
		Company:    company,
		Status:     status,
		Portal:     req.Portal,
		StatusLink: strings.TrimSpace(req.StatusLink),
		AppliedOn:  appliedOn,
		Deadline:   strings.TrimSpace(req.Deadline),
		Notes:      req.Notes,
	}
	job.MarkMilestones()

	if err := s.Store.Create(ctx, owner, job); err != nil {
		s.logFor(owner).WithError(err).WithField("company", company).Warn("create job failed")
		return nil, err
	}
	s.logFor(owner).WithFields(logrus.Fields{"job_id": job.ID, "status": job.Status}).Info("job created")
	return job, nil
}

func (s *JobService) UpdateJob(ctx context.Context, owner store.Owner, id string, req *dtos.JobUpdateRequest) (*models.Job, error) {
	patch := req.Patch()
	if patch.Title != nil {
		*patch.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Company != nil {
		*patch.Company = strings.TrimSpace(*patch.Company)
	}
	if (patch.Title != nil && *patch.Title == "") || (patch.Company != nil && *patch.Company == "") {
		return nil, ErrInvalidJob
	}
	if patch.Empty() {
		return s.Store.Get(ctx, owner, id)
	}

	job, err := s.Store.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}
	s.logFor(owner).WithFields(logrus.Fields{"job_id": id, "status": job.Status}).Info("job updated")
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, owner store.Owner, id string) error {
	if err := s.Store.Delete(ctx, owner, id); err != nil {
		return err
	}
	s.logFor(owner).WithField("job_id", id).Info("job deleted")
	return nil
}

func (s *JobService) GetJob(ctx context.Context, owner store.Owner, id string) (*models.Job, error) {
	return s.Store.Get(ctx, owner, id)
}

// ListJobs returns the owner's jobs, narrowed by the optional filters.
// q matches title, company or notes case-insensitively.
func (s *JobService) ListJobs(ctx context.Context, owner store.Owner, q dtos.JobListQuery) ([]models.Job, error) {
	jobs, err := s.Store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	if q.Status == "" && q.Portal == "" && needle == "" {
		return jobs, nil
	}

	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if q.Status != "" && j.Status != q.Status {
			continue
		}
		if q.Portal != "" && j.Portal != q.Portal {
			continue
		}
		if needle != "" && !matches(j, needle) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func matches(j models.Job, needle string) bool {
	for _, field := range []string{j.Title, j.Company, j.Notes} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Stats loads the owner's collection and aggregates it.
func (s *JobService) Stats(ctx context.Context, owner store.Owner, view stats.TimeView) (*stats.Report, error) {
	jobs, err := s.Store.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	report := stats.Compute(jobs, view, s.Now())
	return &report, nil
}

func (s *JobService) logFor(owner store.Owner) logrus.FieldLogger {
	if owner.Guest {
		return s.Log.WithField("owner", "guest")
	}
	return s.Log.WithField("owner", owner.UserID)
}
