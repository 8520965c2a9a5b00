package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/sentimeter/internal/models"
	"gorm.io/gorm"
)

// JobStore reads and writes BatchJob rows.
type JobStore struct {
	db *gorm.DB
}

// NewJobStore returns a JobStore backed by db.
func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new processing job with the given number of items and
// returns it with its generated id.
func (s *JobStore) Create(ctx context.Context, totalItems int) (*models.BatchJob, error) {
	job := &models.BatchJob{
		ID:         uuid.NewString(),
		Status:     models.JobProcessing,
		TotalItems: totalItems,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("store: create job: %w", err)
	}
	return job, nil
}

// Get returns the job with id, or ErrNotFound.
func (s *JobStore) Get(ctx context.Context, id string) (*models.BatchJob, error) {
	var job models.BatchJob
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get job %s: %w", id, err)
	}
	return &job, nil
}

// List returns the most recently created jobs, newest first.
func (s *JobStore) List(ctx context.Context, limit int) ([]models.BatchJob, error) {
	var jobs []models.BatchJob
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("store: list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateProgress records processed items. The counter never moves backward
// and only processing jobs are touched.
func (s *JobStore) UpdateProgress(ctx context.Context, id string, processed int) error {
	result := s.db.WithContext(ctx).Model(&models.BatchJob{}).
		Where("id = ? AND status = ? AND processed_items <= ?", id, models.JobProcessing, processed).
		Updates(map[string]interface{}{
			"processed_items": processed,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("store: update progress for %s: %w", id, result.Error)
	}
	return nil
}

// Complete moves a processing job to completed with its final results.
func (s *JobStore) Complete(ctx context.Context, id string, processed int, results models.ItemResults, at time.Time) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status":          models.JobCompleted,
		"processed_items": processed,
		"results":         results,
		"completed_at":    at,
		"updated_at":      at,
	})
}

// Fail moves a processing job to failed. Results may be nil.
func (s *JobStore) Fail(ctx context.Context, id string, processed int, results models.ItemResults, reason string) error {
	return s.finish(ctx, id, map[string]interface{}{
		"status":          models.JobFailed,
		"processed_items": processed,
		"results":         results,
		"error":           reason,
		"updated_at":      time.Now(),
	})
}

func (s *JobStore) finish(ctx context.Context, id string, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.BatchJob{}).
		Where("id = ? AND status = ?", id, models.JobProcessing).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("store: finish job %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: finish job %s: %w", id, ErrNotProcessing)
	}
	return nil
}

// FailStale marks every processing job not updated since before as failed
// and returns how many were affected.
func (s *JobStore) FailStale(ctx context.Context, before time.Time, reason string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.BatchJob{}).
		Where("status = ? AND updated_at < ?", models.JobProcessing, before).
		Updates(map[string]interface{}{
			"status":     models.JobFailed,
			"error":      reason,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("store: fail stale jobs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
