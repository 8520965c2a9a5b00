package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/sentimeter/internal/logging"
)

// InterruptedReason is recorded on jobs the sweeper gives up on.
const InterruptedReason = "interrupted: batch job stopped reporting progress"

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// StaleFailer fails processing jobs that stopped making progress.
type StaleFailer interface {
	FailStale(ctx context.Context, before time.Time, reason string) (int64, error)
}

// SweeperOpts configures a Sweeper.
type SweeperOpts struct {
	Jobs       StaleFailer
	StaleAfter time.Duration
	Schedule   string
	Log        logrus.FieldLogger
}

// Sweeper periodically fails jobs left in processing by a process that
// exited mid-batch.
type Sweeper struct {
	jobs       StaleFailer
	staleAfter time.Duration
	schedule   cron.Schedule
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewSweeper validates opts and returns a Sweeper.
func NewSweeper(opts SweeperOpts) (*Sweeper, error) {
	if opts.Jobs == nil {
		return nil, fmt.Errorf("batch: sweeper job store is required")
	}
	if opts.StaleAfter <= 0 {
		return nil, fmt.Errorf("batch: sweeper stale_after must be positive")
	}
	sched, err := cronParser.Parse(opts.Schedule)
	if err != nil {
		return nil, fmt.Errorf("batch: parse sweep schedule %q: %w", opts.Schedule, err)
	}
	return &Sweeper{
		jobs:       opts.Jobs,
		staleAfter: opts.StaleAfter,
		schedule:   sched,
		log:        logging.OrDiscard(opts.Log),
		now:        time.Now,
	}, nil
}

// Sweep fails every processing job idle for longer than stale_after.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)
	n, err := s.jobs.FailStale(ctx, cutoff, InterruptedReason)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithFields(logrus.Fields{"jobs": n, "cutoff": cutoff}).Warn("failed stale batch jobs")
	}
	return n, nil
}

// Run sweeps once immediately, then on every tick of the schedule until
// ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		s.log.WithError(err).Error("stale job sweep failed")
	}

	c := cron.New(cron.WithParser(cronParser))
	c.Schedule(s.schedule, cron.FuncJob(func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.log.WithError(err).Error("stale job sweep failed")
		}
	}))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// Next returns when the next scheduled sweep fires after t.
func (s *Sweeper) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}
