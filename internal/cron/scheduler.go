package cron

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
)

// Scheduler enqueues recurring maintenance jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	queue     jobs.JobQueue
	log       *logger.Logger
}

// New schedules the daily streak sweep at sweepAt ("15:04") in loc.
func New(queue jobs.JobQueue, loc *time.Location, sweepAt string) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		queue:     queue,
		log:       logger.Default().WithPrefix("cron"),
	}
	if _, err := s.scheduler.Every(1).Day().At(sweepAt).Do(s.enqueueStreakSweep); err != nil {
		return nil, fmt.Errorf("schedule streak sweep at %q: %w", sweepAt, err)
	}
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
	s.log.Info("scheduler started, next streak sweep at %s", s.NextSweep().Format(time.RFC3339))
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// NextSweep reports when the streak sweep fires next.
func (s *Scheduler) NextSweep() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

func (s *Scheduler) enqueueStreakSweep() {
	if err := s.queue.EnqueueStreakSweep(); err != nil {
		s.log.Warn("failed to enqueue streak sweep: %v", err)
		return
	}
	s.log.Debug("streak sweep enqueued")
}
