package webhook

import (
	"github.com/getevo/evo/v2"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
)

type App struct {
}

func (a App) Register() error {
	// Models broadcast through this callback to avoid a circular dependency
	models.WebhookBroadcaster = BroadcastWebhook
	return nil
}

func (a App) Router() error {
	var controller Controller

	// Webhook CRUD is auto-generated by restify from the embedded model API

	evo.Use("/api/admin/webhooks", auth.RequireAdmin)
	evo.Post("/api/admin/webhooks/:id/test", controller.TestWebhook)
	evo.Get("/api/admin/webhooks/:id/deliveries", controller.ListDeliveries)

	return nil
}

func (a App) WhenReady() error {
	GenerateMockWebhook()
	return nil
}

func (a App) Name() string {
	return "webhook"
}
