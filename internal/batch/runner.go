// Package batch runs bulk sentiment analysis as detached background jobs
// and reports their progress.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/sentimeter/internal/logging"
	"github.com/zulandar/sentimeter/internal/models"
	"github.com/zulandar/sentimeter/internal/oracle"
)

// DefaultDelay is the pause between items when no policy is configured.
const DefaultDelay = 100 * time.Millisecond

var (
	// ErrEmptyBatch is returned when no texts were submitted.
	ErrEmptyBatch = errors.New("batch: texts array is required and must not be empty")
	// ErrBlankText is returned when one of the submitted texts is blank.
	ErrBlankText = errors.New("batch: texts must not contain blank entries")
)

// JobStore is the persistence the runner needs.
type JobStore interface {
	Create(ctx context.Context, totalItems int) (*models.BatchJob, error)
	UpdateProgress(ctx context.Context, id string, processed int) error
	Complete(ctx context.Context, id string, processed int, results models.ItemResults, at time.Time) error
	Fail(ctx context.Context, id string, processed int, results models.ItemResults, reason string) error
}

// Analyzer classifies one text and records it in history.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (oracle.Classification, error)
}

// RunnerOpts configures a Runner.
type RunnerOpts struct {
	Jobs     JobStore
	Analyzer Analyzer
	Backoff  BackoffPolicy
	Log      logrus.FieldLogger
}

// Runner starts one background goroutine per submitted batch. The job row
// is the only channel between that goroutine and everyone else.
type Runner struct {
	jobs     JobStore
	analyzer Analyzer
	backoff  BackoffPolicy
	log      logrus.FieldLogger
	sleep    func(time.Duration)
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewRunner returns a Runner. Jobs and Analyzer are required.
func NewRunner(opts RunnerOpts) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, fmt.Errorf("batch: job store is required")
	}
	if opts.Analyzer == nil {
		return nil, fmt.Errorf("batch: analyzer is required")
	}
	if opts.Backoff == nil {
		opts.Backoff = FixedDelay(DefaultDelay)
	}
	return &Runner{
		jobs:     opts.Jobs,
		analyzer: opts.Analyzer,
		backoff:  opts.Backoff,
		log:      logging.OrDiscard(opts.Log),
		sleep:    time.Sleep,
		now:      time.Now,
	}, nil
}

// Validate checks texts without creating anything.
func Validate(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyBatch
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w (index %d)", ErrBlankText, i)
		}
	}
	return nil
}

// Submit creates a processing job for texts and returns it immediately.
// The items are processed in a detached goroutine that outlives ctx.
func (r *Runner) Submit(ctx context.Context, texts []string) (*models.BatchJob, error) {
	if err := Validate(texts); err != nil {
		return nil, err
	}

	job, err := r.jobs.Create(ctx, len(texts))
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"job_id": job.ID, "total_items": len(texts)}).Info("batch job created")

	items := make([]string, len(texts))
	copy(items, texts)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), job.ID, items)
	}()
	return job, nil
}

// Wait blocks until every running batch has finished or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, jobID string, texts []string) {
	log := r.log.WithField("job_id", jobID)
	results := make(models.ItemResults, 0, len(texts))
	processed := 0
	failures := 0
	unavailable := 0
	var lastUnavailable error

	for i, text := range texts {
		c, err := r.analyzer.Analyze(ctx, text)
		if err != nil {
			failures++
			if oracle.Unavailable(err) {
				unavailable++
				lastUnavailable = err
			}
			log.WithError(err).WithField("item", i).Warn("batch item failed")
			results = append(results, models.ItemResult{Text: text, Success: false, Error: err.Error()})
		} else {
			failures = 0
			score := c.Score
			results = append(results, models.ItemResult{
				Text:        text,
				Sentiment:   string(c.Sentiment),
				Score:       &score,
				Explanation: c.Explanation,
				Keywords:    c.Keywords,
				Success:     true,
			})
		}

		processed++
		if err := r.jobs.UpdateProgress(ctx, jobID, processed); err != nil {
			log.WithError(err).WithField("processed_items", processed).Error("failed to update batch progress")
		}

		if i < len(texts)-1 {
			if d := r.backoff.NextDelay(failures, err); d > 0 {
				r.sleep(d)
			}
		}
	}

	if unavailable == len(texts) {
		reason := lastUnavailable.Error()
		if err := r.jobs.Fail(ctx, jobID, processed, results, reason); err != nil {
			log.WithError(err).Error("failed to mark batch job failed")
			return
		}
		log.WithField("error", reason).Warn("batch job failed: AI service unavailable for every item")
		return
	}

	if err := r.jobs.Complete(ctx, jobID, processed, results, r.now()); err != nil {
		log.WithError(err).Error("failed to mark batch job completed")
		// Still reach a terminal state, without the results.
		if ferr := r.jobs.Fail(ctx, jobID, processed, nil, "finalize: "+err.Error()); ferr != nil {
			log.WithError(ferr).Error("failed to mark batch job failed after finalize error")
		}
		return
	}
	log.WithFields(logrus.Fields{
		"processed_items": processed,
		"failed_items":    countFailed(results),
	}).Info("batch job completed")
}

func countFailed(results models.ItemResults) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
