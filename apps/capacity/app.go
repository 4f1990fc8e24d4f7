package capacity

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

	evo.Use("/api/capacity", auth.RequireUser)

	evo.Get("/api/capacity/scio", controller.GetScioCapacity)
	evo.Post("/api/capacity/scio", controller.UpsertScioCapacity)

	evo.Get("/api/capacity/subcontracted", controller.GetSubcontractCapacity)
	evo.Post("/api/capacity/subcontracted", controller.UpsertSubcontractCapacity)

	evo.Get("/api/capacity/prg-external", controller.GetPrgExternalCapacity)
	evo.Post("/api/capacity/prg-external", controller.UpsertPrgExternalCapacity)

	evo.Get("/api/capacity/weekly-totals", controller.GetWeeklyTotals)
	evo.Post("/api/capacity/weekly-totals/refresh", controller.RefreshTotals)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "capacity"
}
