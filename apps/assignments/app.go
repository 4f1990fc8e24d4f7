package assignments

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

	evo.Use("/api/assignments", auth.RequireUser)

	evo.Get("/api/assignments", controller.ListAssignments)
	evo.Post("/api/assignments", controller.CreateAssignment)
	evo.Post("/api/assignments/bulk-distribute", controller.BulkDistribute)

	evo.Get("/api/assignments/summary/:project_id", controller.SummaryByProject)
	evo.Get("/api/assignments/capacity", controller.CapacityByDepartment)
	evo.Get("/api/assignments/utilization", controller.UtilizationReport)

	evo.Put("/api/assignments/:id", controller.UpdateAssignment)
	evo.Delete("/api/assignments/:id", controller.DeleteAssignment)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "assignments"
}
