package employees

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

	evo.Use("/api/employees", auth.RequireUser)

	evo.Get("/api/employees", controller.ListEmployees)
	evo.Post("/api/employees", controller.CreateEmployee)
	evo.Get("/api/employees/capacity-summary", controller.CapacitySummary)
	evo.Get("/api/employees/by-department/:department", controller.ByDepartment)

	evo.Get("/api/employees/:id", controller.GetEmployee)
	evo.Put("/api/employees/:id", controller.UpdateEmployee)
	evo.Delete("/api/employees/:id", controller.DeleteEmployee)
	evo.Get("/api/employees/:id/workload", controller.Workload)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "employees"
}
