// Package scheduler runs the recurring background jobs. The only job
// today is the monthly settlement generation run.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	appsettlement "github.com/pms/backend/internal/application/settlement"
)

// SettlementRunner generates the previous month's settlements
type SettlementRunner interface {
	Run(ctx context.Context, ref time.Time) (*appsettlement.GenerationSummary, error)
}

// Scheduler owns the gocron scheduler and the registered jobs
type Scheduler struct {
	sched  gocron.Scheduler
	logger *zap.Logger
}

// New creates a scheduler with the monthly settlement job registered on
// the given day of month. The job fires at 02:00 server time, after the
// night audit window.
func New(runner SettlementRunner, dayOfMonth int, logger *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.MonthlyJob(
			1,
			gocron.NewDaysOfTheMonth(dayOfMonth),
			gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0)),
		),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			summary, err := runner.Run(ctx, time.Now())
			if err != nil {
				logger.Error("monthly settlement generation failed", zap.Error(err))
				return
			}
			logger.Info("monthly settlement generation finished",
				zap.String("period", summary.Period),
				zap.Int("created", len(summary.Created)),
				zap.Int("skipped", len(summary.Skipped)),
				zap.Int("failed", len(summary.Failed)),
			)
		}),
		gocron.WithName("monthly-settlement-generation"),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{sched: sched, logger: logger}, nil
}

// Start begins running the registered jobs
func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.sched.Jobs())))
}

// Stop shuts the scheduler down, waiting for running jobs
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
