package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobtracker/internal/models"
)

// pgUniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

// Durable stores jobs in the jobs table, one collection per user id.
type Durable struct {
	DB *gorm.DB
}

func NewDurable(db *gorm.DB) *Durable {
	return &Durable{DB: db}
}

func (s *Durable) scoped(ctx context.Context, owner Owner) *gorm.DB {
	return s.DB.WithContext(ctx).Where("owner_id = ?", owner.UserID)
}

func (s *Durable) List(ctx context.Context, owner Owner) ([]models.Job, error) {
	var jobs []models.Job
	err := s.scoped(ctx, owner).Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Durable) Get(ctx context.Context, owner Owner, id string) (*models.Job, error) {
	var job models.Job
	err := s.scoped(ctx, owner).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &job, nil
}

func (s *Durable) Create(ctx context.Context, owner Owner, job *models.Job) error {
	job.OwnerID = owner.UserID
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *Durable) Update(ctx context.Context, owner Owner, id string, patch models.JobPatch) (*models.Job, error) {
	job, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	job.Apply(patch)

	// Save writes zero values too, so cleared optional fields are persisted.
	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update job %s: %w", id, err)
	}
	return job, nil
}

func (s *Durable) Delete(ctx context.Context, owner Owner, id string) error {
	res := s.scoped(ctx, owner).Where("id = ?", id).Delete(&models.Job{})
	if res.Error != nil {
		return fmt.Errorf("delete job %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
