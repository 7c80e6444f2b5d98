package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/whirlwatch/internal/stats"
)

// reloadTimeout bounds one scheduled reload
const reloadTimeout = 2 * time.Minute

// Reloader reloads the loaded scope
type Reloader interface {
	Reload(ctx context.Context) (stats.Summary, error)
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	reloader Reloader
	schedule string
	logger   *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(reloader Reloader, schedule string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reloader: reloader,
		schedule: schedule,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.WithField("schedule", s.schedule).Info("Starting scheduler")

	// Full reload, the only reconciliation with edits made by other list members
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runReload()
	})
	if err != nil {
		return fmt.Errorf("failed to add reload job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running reload to finish
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runReload executes the reload job
func (s *Scheduler) runReload() {
	s.logger.Debug("Running scheduled reload")
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	summary, err := s.reloader.Reload(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Reload job failed")
		return
	}
	s.logger.WithField("records", summary.TotalCount).Info("Reload job completed successfully")
}
