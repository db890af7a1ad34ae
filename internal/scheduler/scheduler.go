package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/symfx/pkg/logger"
)

// Scheduler runs desk housekeeping jobs on cron schedules
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	maxRetries int
	retryDelay time.Duration
}

// Option customises a Scheduler
type Option func(*Scheduler)

// WithRetry sets how often a failing run is retried and the wait between tries
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryDelay = delay
	}
}

// New creates a new scheduler
func New(log *logger.Logger, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		// SkipIfStillRunning: a slow run never overlaps the next tick
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:     log.Component("scheduler"),
		jobs:       make(map[string]Job),
		entries:    make(map[string]cron.EntryID),
		history:    make(map[string]*JobHistory),
		ctx:        ctx,
		cancel:     cancel,
		maxRetries: 2,
		retryDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers job under its name
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.entries[name] = id
	s.history[name] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job; its history is dropped with it
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.entries, name)
	delete(s.history, name)
	s.logger.WithField("job", name).Info("Job removed from scheduler")

	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts the schedule, cancels running jobs and waits for them
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a job now, outside its schedule, and waits for it
func (s *Scheduler) RunJob(name string) (JobResult, error) {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", name)
	}

	return s.runJob(job), nil
}

func (s *Scheduler) runJob(job Job) JobResult {
	s.wg.Add(1)
	defer s.wg.Done()

	name := job.Name()
	start := time.Now()
	log := s.logger.WithField("job", name)
	log.Debug("Job started")

	result := JobResult{JobName: name, StartTime: start}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		result.Attempts = attempt + 1

		lastErr = job.Run(s.ctx)
		if lastErr == nil {
			result.Success = true
			break
		}
		if s.ctx.Err() != nil {
			break
		}

		log.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed, retrying")

		if attempt < s.maxRetries {
			select {
			case <-s.ctx.Done():
			case <-time.After(s.retryDelay):
			}
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)
	if lastErr != nil && !result.Success {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[name]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	if result.Success {
		log.WithField("duration", result.Duration).Debug("Job completed")
	} else {
		log.WithFields(map[string]interface{}{
			"duration": result.Duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

// JobHistory returns a copy of the history for a job
func (s *Scheduler) JobHistory(name string) (JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[name]
	if !exists {
		return JobHistory{}, fmt.Errorf("job %s not found", name)
	}
	return JobHistory{Results: history.Latest(len(history.Results))}, nil
}

// Jobs returns the registered job names, sorted
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobStats summarises one job's history
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// Stats returns statistics for every job
func (s *Scheduler) Stats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.history))
	for name, history := range s.history {
		st := JobStats{
			JobName:      name,
			Schedule:     s.jobs[name].Schedule(),
			TotalRuns:    len(history.Results),
			FailureCount: history.Failures(),
			SuccessRate:  history.SuccessRate(),
		}
		if latest := history.Latest(1); len(latest) == 1 {
			st.LastRun = &latest[0].StartTime
			st.LastError = latest[0].Error
		}
		stats[name] = st
	}
	return stats
}
