// Package jobs runs the periodic maintenance tasks of the shop on a cron
// schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/robfig/cron/v3"
)

const (
	ResetTokensSchedule     = "*/15 * * * *"
	RevokedSessionsSchedule = "@daily"
	PendingOrdersSchedule   = "*/10 * * * *"

	PendingOrderGrace = 30 * time.Minute
	jobTimeout        = 2 * time.Minute
)

type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	jobs   []Job
}

func NewScheduler(logger *slog.Logger, jobs ...Job) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		logger: logger,
		jobs:   jobs,
	}
	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.Schedule, s.wrap(j)); err != nil {
			return nil, fmt.Errorf("jobs: schedule %s %q: %w", j.Name, j.Schedule, err)
		}
	}
	return s, nil
}

func (s *Scheduler) wrap(j Job) func() {
	return func() {
		_ = s.RunNow(context.Background(), j.Name)
	}
}

// RunNow runs the named job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, j := range s.jobs {
		if j.Name != name {
			continue
		}
		l := s.logger.With("job", j.Name)
		ctx, cancel := context.WithTimeout(logging.IntoContext(ctx, l), jobTimeout)
		defer cancel()

		start := time.Now()
		err := j.Run(ctx)
		metrics.JobRunsTotal.WithLabelValues(j.Name, metrics.Result(err)).Inc()
		if err != nil {
			l.Error("job_failed", "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return err
		}
		l.Info("job_completed", "duration_ms", time.Since(start).Milliseconds())
		return nil
	}
	return fmt.Errorf("jobs: unknown job %q", name)
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Defaults wires the standard maintenance jobs.
func Defaults(r *repo.GormRepo, orders *service.OrderService, now func() time.Time) []Job {
	if now == nil {
		now = time.Now
	}
	return []Job{
		{
			Name:     "purge_reset_tokens",
			Schedule: ResetTokensSchedule,
			Run: func(ctx context.Context) error {
				n, err := r.ClearExpiredResetTokens(ctx, now().UnixMilli())
				if err == nil && n > 0 {
					logging.FromContext(ctx).Info("reset_tokens_cleared", "count", n)
				}
				return err
			},
		},
		{
			Name:     "purge_revoked_sessions",
			Schedule: RevokedSessionsSchedule,
			Run: func(ctx context.Context) error {
				n, err := r.PurgeRevokedSessions(ctx, now().Add(-session.MaxAge))
				if err == nil && n > 0 {
					logging.FromContext(ctx).Info("revoked_sessions_purged", "count", n)
				}
				return err
			},
		},
		{
			Name:     "reconcile_pending_orders",
			Schedule: PendingOrdersSchedule,
			Run: func(ctx context.Context) error {
				_, err := orders.ReconcilePending(ctx, PendingOrderGrace)
				return err
			},
		},
	}
}
