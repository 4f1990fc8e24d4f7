package schedule

import (
	"github.com/getevo/evo/v2"

	"github.com/teamcapacity/capacity-backend/apps/auth"
)

type App struct{}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Use("/api/schedule", auth.RequireUser)
	evo.Get("/api/schedule/calendar/:year", controller.Calendar)
	evo.Post("/api/schedule/resolve", controller.Resolve)
	evo.Post("/api/schedule/distribute", controller.Distribute)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "schedule"
}
