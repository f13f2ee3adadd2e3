package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"market-data-adapter/internal/logger"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs background jobs on cron schedules with a seconds field.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(context.Background(), "Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "Scheduler stopped")
}

// AddJob registers job under schedule, e.g. "0 0 * * * *" or "@every 30m".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return err
	}

	logger.Info(context.Background(), "Job registered", "schedule", schedule, "job", job.Name())
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	logger.Info(context.Background(), "Running job immediately", "job", job.Name())
	return job.Run()
}

func (s *Scheduler) run(job Job) {
	timer := logger.StartOperation(context.Background(), "scheduler.job", "job", job.Name())
	if err := job.Run(); err != nil {
		timer.EndWithError(err)
		return
	}
	timer.End()
}
