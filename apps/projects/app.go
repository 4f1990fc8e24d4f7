package projects

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

	evo.Use("/api/projects", auth.RequireUser)

	evo.Get("/api/projects", controller.ListProjects)
	evo.Post("/api/projects", controller.CreateProject)
	evo.Get("/api/projects/statistics", controller.Statistics)
	evo.Get("/api/projects/by-facility", controller.ByFacility)

	evo.Get("/api/projects/:id", controller.GetProject)
	evo.Put("/api/projects/:id", controller.UpdateProject)
	evo.Delete("/api/projects/:id", controller.DeleteProject)
	evo.Post("/api/projects/:id/hide", controller.HideProject)
	evo.Post("/api/projects/:id/unhide", controller.UnhideProject)

	evo.Get("/api/projects/:id/timeline", controller.Timeline)
	evo.Get("/api/projects/:id/budget-report", controller.BudgetReport)
	evo.Post("/api/projects/:id/departments", controller.AddDepartmentPlan)
	evo.Put("/api/projects/:id/budget-hours", controller.UpdateBudgetHours)

	evo.Get("/api/projects/:id/change-orders", controller.ListChangeOrders)
	evo.Post("/api/projects/:id/change-orders", controller.CreateChangeOrder)
	evo.Delete("/api/projects/:id/change-orders/:order_id", controller.DeleteChangeOrder)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "projects"
}
