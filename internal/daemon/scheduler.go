package daemon

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/typdocs/internal/errors"
)

// Scheduler wraps gocron for periodic fetch-and-build runs.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create gocron scheduler")
	}
	return &Scheduler{scheduler: s}, nil
}

// SchedulePeriodic registers task to run every interval. Returns the job ID.
func (s *Scheduler) SchedulePeriodic(interval time.Duration, name string, task func()) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to create periodic job").
			WithContext("name", name)
	}
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}
