package main

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"

	"github.com/teamcapacity/capacity-backend/apps/assignments"
	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/capacity"
	"github.com/teamcapacity/capacity-backend/apps/employees"
	"github.com/teamcapacity/capacity-backend/apps/jobs"
	"github.com/teamcapacity/capacity-backend/apps/live"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/nats"
	"github.com/teamcapacity/capacity-backend/apps/projects"
	"github.com/teamcapacity/capacity-backend/apps/redis"
	"github.com/teamcapacity/capacity-backend/apps/schedule"
	"github.com/teamcapacity/capacity-backend/apps/sessions"
	"github.com/teamcapacity/capacity-backend/apps/system"
	"github.com/teamcapacity/capacity-backend/apps/webhook"
)

func main() {
	evo.Setup()

	var apps = application.GetInstance()
	apps.Register(
		system.App{}, auth.App{}, models.App{}, nats.App{}, redis.App{},
		schedule.App{}, projects.App{}, employees.App{}, assignments.App{},
		capacity.App{}, sessions.App{}, webhook.App{}, live.App{}, jobs.App{},
	)

	evo.Run()
}
