package webhook

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

// TestWebhook sends a test payload to the webhook
func (c Controller) TestWebhook(request *evo.Request) any {
	webhookID := request.Param("id").String()

	var webhook models.Webhook
	if err := db.First(&webhook, webhookID).Error; err != nil {
		return response.NotFound("Webhook not found")
	}

	if err := SendWebhook(&webhook, models.WebhookEventWebhookTest, map[string]any{
		"message":    "This is a test webhook",
		"webhook_id": webhook.ID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return response.InternalError("Failed to send test webhook: " + err.Error())
	}

	return response.Message("Test webhook sent successfully")
}

// ListDeliveries returns recent delivery attempts for one webhook
func (c Controller) ListDeliveries(request *evo.Request) any {
	webhookID := request.Param("id").Int()
	if webhookID <= 0 {
		return response.ErrInvalidInput.Response()
	}

	limit := request.Query("limit").Int()
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var deliveries []models.WebhookDelivery
	if err := db.Where("webhook_id = ?", webhookID).
		Order("created_at DESC").
		Limit(limit).
		Find(&deliveries).Error; err != nil {
		return response.HandleDBError(err, "webhook deliveries")
	}

	return response.List(deliveries, len(deliveries))
}
