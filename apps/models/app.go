package models

import (
	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
)

type App struct{}

func (a App) Register() error {
	// Register all models with GORM (auth models are registered in auth app)
	db.UseModel(Employee{})
	db.UseModel(Project{})
	db.UseModel(DepartmentStageConfig{})
	db.UseModel(ProjectBudget{})
	db.UseModel(ProjectChangeOrder{})
	db.UseModel(Assignment{})

	// Weekly team capacity models
	db.UseModel(ScioTeamCapacity{})
	db.UseModel(SubcontractedTeamCapacity{})
	db.UseModel(PrgExternalTeamCapacity{})
	db.UseModel(DepartmentWeeklyTotal{})

	// Audit trail
	db.UseModel(ActivityLog{})

	// Runtime configuration
	db.UseModel(Setting{})

	// Session tracking
	db.UseModel(UserSession{})
	db.UseModel(UserDailyActivity{})

	// Outbound webhooks
	db.UseModel(Webhook{})
	db.UseModel(WebhookDelivery{})

	return nil
}

func (a App) Router() error {
	return nil
}

func (a App) WhenReady() error {
	if args.Exists("--migration-do") {
		err := db.DoMigration()
		if err != nil {
			return err
		}
	}
	return nil
}

func (a App) Name() string {
	return "models"
}
