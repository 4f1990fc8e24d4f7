package jobs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]*JobDefinition),
	}
}

func TestRegisterJobKeepsDisabledJobsListed(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.RegisterJob(JobDefinition{
		Name:     "cleanup_sessions",
		Schedule: "0 0 3 * * *",
		Enabled:  false,
	}))

	jobs := s.GetJobs()
	require.Contains(t, jobs, "cleanup_sessions")
	assert.False(t, jobs["cleanup_sessions"].Enabled)
}

func TestRegisterJobRejectsInvalidSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.RegisterJob(JobDefinition{
		Name:     "broken",
		Schedule: "not a cron expression",
		Enabled:  true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestRunNowRejectsUnknownAndDisabledJobs(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.RegisterJob(JobDefinition{
		Name:     "cleanup_sessions",
		Schedule: "0 0 3 * * *",
		Enabled:  false,
	}))

	assert.Error(t, s.RunNow("no_such_job"))
	assert.Error(t, s.RunNow("cleanup_sessions"))
}

func TestJobContextAccumulators(t *testing.T) {
	ctx := NewJobContext("refresh_weekly_totals", uuid.New())
	ctx.IncrementProcessed(3)
	ctx.IncrementProcessed(2)
	ctx.SetMetadata("cutoff", "2025-01-01")

	assert.Equal(t, 5, ctx.GetProcessed())
	assert.Equal(t, "2025-01-01", ctx.GetMetadata()["cutoff"])
}
