package jobs

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobExecution is the audit record for one maintenance job run: which
// instance ran it, how long it took and how many rows it touched.
type JobExecution struct {
	ID               uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	JobName          string     `gorm:"size:100;not null;index:idx_job_started,priority:1" json:"job_name"`
	InstanceID       string     `gorm:"size:100;not null" json:"instance_id"`
	Status           JobStatus  `gorm:"size:20;not null;default:running" json:"status"`
	StartedAt        time.Time  `gorm:"not null;index:idx_job_started,priority:2" json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	DurationMs       int64      `gorm:"default:0" json:"duration_ms"`
	RecordsProcessed int        `gorm:"default:0" json:"records_processed"`
	Error            string     `gorm:"type:text" json:"error,omitempty"`
	Metadata         string     `gorm:"type:json" json:"metadata,omitempty"`
}

func (JobExecution) TableName() string {
	return "job_executions"
}

// JobDefinition describes one entry in the maintenance timetable. Schedule is
// a six-field cron expression (seconds first).
type JobDefinition struct {
	Name        string
	Description string
	Schedule    string
	Timeout     time.Duration
	Handler     JobHandler
	Enabled     bool
}

type JobHandler func(ctx *JobContext) error

// JobContext carries the running execution's identity and accumulates the
// processed-row count and metadata that end up on the JobExecution record.
type JobContext struct {
	JobName     string
	ExecutionID uuid.UUID
	StartedAt   time.Time
	processed   int
	metadata    map[string]any
}

func NewJobContext(jobName string, executionID uuid.UUID) *JobContext {
	return &JobContext{
		JobName:     jobName,
		ExecutionID: executionID,
		StartedAt:   time.Now(),
		metadata:    make(map[string]any),
	}
}

// IncrementProcessed adds to the processed-row counter.
func (ctx *JobContext) IncrementProcessed(count int) {
	ctx.processed += count
}

func (ctx *JobContext) GetProcessed() int {
	return ctx.processed
}

func (ctx *JobContext) SetMetadata(key string, value any) {
	ctx.metadata[key] = value
}

func (ctx *JobContext) GetMetadata() map[string]any {
	return ctx.metadata
}
