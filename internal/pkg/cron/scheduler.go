package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrSchedulerRunning = errors.New("scheduler is already running")

// Job is a named function run every Interval. Each run is bounded by
// Timeout, which defaults to the interval.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// JobStatus is the run history of one job.
type JobStatus struct {
	Name         string
	Interval     time.Duration
	Runs         int
	Failures     int
	LastRun      time.Time
	LastDuration time.Duration
	LastError    string
}

type jobState struct {
	job    Job
	status JobStatus
}

// Scheduler runs registered jobs on fixed intervals for the lifetime of the
// context passed to Run.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []*jobState
	running bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers fn under name. Jobs added after Run has started are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &jobState{
		job:    Job{Name: name, Interval: interval, Timeout: interval, Fn: fn},
		status: JobStatus{Name: name, Interval: interval},
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Run executes every job once, then on its interval, until ctx is done.
// It returns after all in-flight runs have finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerRunning
	}
	s.running = true
	jobs := append([]*jobState(nil), s.jobs...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	slog.Info("Cron scheduler started", "job_count", len(jobs))

	var wg sync.WaitGroup
	for _, js := range jobs {
		wg.Add(1)
		go func(js *jobState) {
			defer wg.Done()
			s.loop(ctx, js)
		}(js)
	}
	wg.Wait()

	for _, st := range s.Status() {
		slog.Info("Cron scheduler stopped job", "name", st.Name, "runs", st.Runs, "failures", st.Failures)
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, js *jobState) {
	ticker := time.NewTicker(js.job.Interval)
	defer ticker.Stop()

	s.execute(ctx, js)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, js)
		}
	}
}

// execute runs one job and records the outcome.
func (s *Scheduler) execute(ctx context.Context, js *jobState) error {
	runCtx := ctx
	if js.job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, js.job.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := js.job.Fn(runCtx)
	elapsed := time.Since(start)

	s.mu.Lock()
	js.status.Runs++
	js.status.LastRun = start
	js.status.LastDuration = elapsed
	js.status.LastError = ""
	if err != nil {
		js.status.Failures++
		js.status.LastError = err.Error()
	}
	failures := js.status.Failures
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed",
			"name", js.job.Name,
			"duration", elapsed,
			"failures", failures,
			"error", err,
		)
		return fmt.Errorf("job %s: %w", js.job.Name, err)
	}
	slog.Debug("Cron job completed", "name", js.job.Name, "duration", elapsed)
	return nil
}

// RunOnce runs every job once in registration order and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	jobs := append([]*jobState(nil), s.jobs...)
	s.mu.Unlock()

	var errs []error
	for _, js := range jobs {
		if err := s.execute(ctx, js); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status returns a copy of every job's run history.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, js := range s.jobs {
		out = append(out, js.status)
	}
	return out
}
