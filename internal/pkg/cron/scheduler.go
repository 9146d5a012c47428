package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals. A job never overlaps with itself.
type Scheduler struct {
	jobs    []Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running map[string]*sync.Mutex
	started bool
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    make([]Job, 0),
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]*sync.Mutex),
	}
}

// AddJob adds a job to the scheduler. Jobs added after Start are ignored.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		slog.Warn("Cron job registered after start, ignoring", "name", name)
		return
	}

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	s.running[name] = &sync.Mutex{}
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Jobs returns the names of registered jobs in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.Name)
	}
	return names
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	_ = s.executeJob(s.ctx, job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			_ = s.executeJob(s.ctx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) error {
	lock := s.running[job.Name]
	if !lock.TryLock() {
		slog.Warn("Cron job still running, skipping tick", "name", job.Name)
		return nil
	}
	defer lock.Unlock()

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return fmt.Errorf("%s: %w", job.Name, err)
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}

// RunOnce runs every job once and returns the joined job errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, job := range jobs {
		if err := s.executeJob(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
