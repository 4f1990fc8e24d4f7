package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic maintenance jobs (weekly-totals refresh and the
// retention cleanups) on a cron timetable. A NATS-KV lock keeps each job on a
// single instance per tick.
type Scheduler struct {
	cron    *cron.Cron
	locks   *LockManager
	jobs    map[string]*JobDefinition
	mu      sync.RWMutex
	started bool
}

var (
	scheduler *Scheduler
	once      sync.Once
)

// GetScheduler returns the singleton scheduler, or nil before NewScheduler ran.
func GetScheduler() *Scheduler {
	return scheduler
}

// NewScheduler creates the singleton scheduler backed by the given lock manager.
func NewScheduler(locks *LockManager) *Scheduler {
	once.Do(func() {
		scheduler = &Scheduler{
			cron: cron.New(cron.WithSeconds(), cron.WithChain(
				cron.Recover(cron.DefaultLogger),
			)),
			locks: locks,
			jobs:  make(map[string]*JobDefinition),
		}
	})
	return scheduler
}

// RegisterJob records a job definition. Disabled jobs stay visible in the
// admin listing but get no cron entry.
func (s *Scheduler) RegisterJob(job JobDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Name] = &job

	if !job.Enabled {
		log.Info("Maintenance job %s registered but disabled", job.Name)
		return nil
	}

	if _, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job.Name) }); err != nil {
		return fmt.Errorf("job %s has an invalid schedule %q: %w", job.Name, job.Schedule, err)
	}

	log.Info("Maintenance job %s scheduled (%s)", job.Name, job.Schedule)
	return nil
}

// runJob acquires the cluster-wide lock for the job, runs its handler and
// records the outcome in job_executions.
func (s *Scheduler) runJob(jobName string) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists || !job.Enabled {
		return
	}

	if !s.locks.TryLock(jobName) {
		log.Debug("Maintenance job %s already running on another instance", jobName)
		return
	}
	defer s.locks.Unlock(jobName)

	execution := s.beginExecution(jobName)
	if execution == nil {
		return
	}

	ctx := NewJobContext(jobName, execution.ID)

	var jobErr error
	if job.Timeout > 0 {
		jobErr = s.runBounded(ctx, job.Handler, job.Timeout)
	} else {
		jobErr = job.Handler(ctx)
	}

	s.finishExecution(execution, ctx, jobErr)
}

// beginExecution persists the running execution record. Returns nil when the
// record cannot be written; the job is skipped in that case since its outcome
// could not be audited.
func (s *Scheduler) beginExecution(jobName string) *JobExecution {
	execution := &JobExecution{
		ID:         uuid.New(),
		JobName:    jobName,
		InstanceID: s.locks.GetInstanceID(),
		Status:     JobStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := db.Create(execution).Error; err != nil {
		log.Error("Failed to record start of maintenance job %s: %v", jobName, err)
		return nil
	}
	log.Info("Maintenance job %s started (execution %s)", jobName, execution.ID)
	return execution
}

func (s *Scheduler) finishExecution(execution *JobExecution, ctx *JobContext, jobErr error) {
	now := time.Now()
	execution.CompletedAt = &now
	execution.DurationMs = now.Sub(execution.StartedAt).Milliseconds()
	execution.RecordsProcessed = ctx.GetProcessed()

	if jobErr != nil {
		execution.Status = JobStatusFailed
		execution.Error = jobErr.Error()
		log.Error("Maintenance job %s failed: %v", execution.JobName, jobErr)
	} else {
		execution.Status = JobStatusCompleted
		log.Info("Maintenance job %s completed (%d records, %dms)",
			execution.JobName, execution.RecordsProcessed, execution.DurationMs)
	}

	if meta := ctx.GetMetadata(); len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			execution.Metadata = string(raw)
		}
	}

	if err := db.Save(execution).Error; err != nil {
		log.Error("Failed to record outcome of maintenance job %s: %v", execution.JobName, err)
	}
}

// runBounded runs a handler under a deadline. The handler goroutine is left to
// finish on its own if it overruns; only the execution record reports the
// timeout.
func (s *Scheduler) runBounded(jobCtx *JobContext, handler JobHandler, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- handler(jobCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins ticking. Safe to call more than once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	log.Info("Maintenance scheduler started with %d jobs", len(s.jobs))
}

// Stop halts the timetable and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	log.Info("Maintenance scheduler stopped")
}

// RunNow triggers a job outside its timetable, typically from the admin API.
func (s *Scheduler) RunNow(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("unknown job %s", jobName)
	}
	if !job.Enabled {
		return fmt.Errorf("job %s is disabled", jobName)
	}

	go s.runJob(jobName)
	return nil
}

// GetJobs returns a copy of the registered job definitions.
func (s *Scheduler) GetJobs() map[string]*JobDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*JobDefinition, len(s.jobs))
	for k, v := range s.jobs {
		result[k] = v
	}
	return result
}

// GetRecentExecutions returns the latest execution records, optionally
// filtered to one job.
func (s *Scheduler) GetRecentExecutions(jobName string, limit int) ([]JobExecution, error) {
	var executions []JobExecution
	query := db.Model(&JobExecution{}).Order("started_at DESC").Limit(limit)
	if jobName != "" {
		query = query.Where("job_name = ?", jobName)
	}
	if err := query.Find(&executions).Error; err != nil {
		return nil, err
	}
	return executions, nil
}

// GetLastExecution returns the most recent execution of one job.
func (s *Scheduler) GetLastExecution(jobName string) (*JobExecution, error) {
	var execution JobExecution
	err := db.Model(&JobExecution{}).
		Where("job_name = ?", jobName).
		Order("started_at DESC").
		First(&execution).Error
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

// CleanupOldExecutions drops execution records started before the retention
// window and returns how many were removed.
func (s *Scheduler) CleanupOldExecutions(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := db.Where("started_at < ?", cutoff).Delete(&JobExecution{})
	return result.RowsAffected, result.Error
}
