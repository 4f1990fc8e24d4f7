package jobs

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	capnats "github.com/teamcapacity/capacity-backend/apps/nats"
)

// App represents the Jobs application module
type App struct{}

var _ application.Application = (*App)(nil)

// Register initializes the jobs module
func (App) Register() error {
	db.UseModel(JobExecution{})
	return nil
}

// Router registers HTTP routes for job management
func (App) Router() error {
	evo.Use("/api/admin/jobs", auth.RequireAdmin)

	evo.Get("/api/admin/jobs", GetJobs)
	evo.Get("/api/admin/jobs/executions", GetJobExecutions)
	evo.Get("/api/admin/jobs/settings", GetJobSettings)
	evo.Put("/api/admin/jobs/settings", UpdateJobSettings)
	evo.Post("/api/admin/jobs/:name/run", RunJob)

	return nil
}

// WhenReady initializes the scheduler after all apps are ready
func (App) WhenReady() error {
	if !settings.Get("JOBS.ENABLED", true).Bool() {
		log.Info("Jobs are disabled, skipping scheduler initialization")
		return nil
	}

	InitJobSettings()

	js := capnats.GetJetStream()
	if js == nil {
		log.Warning("JetStream not available, background jobs will not run")
		return nil
	}

	locks, err := NewLockManager(js)
	if err != nil {
		log.Error("Failed to create lock manager: %v", err)
		return err
	}

	s := NewScheduler(locks)
	RegisterAllJobs(s)
	s.Start()

	log.Info("Job scheduler running")
	return nil
}

// Shutdown gracefully stops the scheduler
func (App) Shutdown() error {
	if scheduler != nil {
		scheduler.Stop()
	}
	return nil
}

// Name returns the app name
func (App) Name() string {
	return "jobs"
}
