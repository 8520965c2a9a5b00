package batch

import (
	"context"

	"github.com/zulandar/sentimeter/internal/models"
)

// JobReader looks up jobs.
type JobReader interface {
	Get(ctx context.Context, id string) (*models.BatchJob, error)
	List(ctx context.Context, limit int) ([]models.BatchJob, error)
}

// Reporter returns job snapshots straight from the store.
type Reporter struct {
	jobs JobReader
}

// NewReporter returns a Reporter over jobs.
func NewReporter(jobs JobReader) *Reporter {
	return &Reporter{jobs: jobs}
}

// Status returns the current state of job id. Unknown ids yield the
// store's not-found error.
func (r *Reporter) Status(ctx context.Context, id string) (*models.BatchJob, error) {
	return r.jobs.Get(ctx, id)
}

// Recent returns up to limit jobs, newest first.
func (r *Reporter) Recent(ctx context.Context, limit int) ([]models.BatchJob, error) {
	return r.jobs.List(ctx, limit)
}
