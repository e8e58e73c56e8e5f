package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phuslu/log"

	"github.com/i474232898/marketscan/internal/common"
)

// DefaultJobTimeout bounds one reload run.
const DefaultJobTimeout = 30 * time.Second

// Reloader refreshes the served dataset.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler periodically reloads the dataset.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reloader  Reloader
	interval  time.Duration
	timeout   time.Duration
	logger    *log.Logger
}

// New creates a new Scheduler. A non-positive interval disables reloading.
func New(interval time.Duration, reloader Reloader, logger *log.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reloader:  reloader,
		interval:  interval,
		timeout:   DefaultJobTimeout,
		logger:    common.OrDiscard(logger),
	}
}

// Start schedules the reload job and starts the underlying scheduler. The
// first run happens one interval after Start; the caller loads the initial
// dataset itself.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("scheduler: reload interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("scheduler: dataset reload scheduled")
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Debug().Msg("scheduler: running dataset reload job")
	if err := s.reloader.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("scheduler: reload failed")
		return
	}
	s.logger.Debug().Msg("scheduler: completed dataset reload job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
