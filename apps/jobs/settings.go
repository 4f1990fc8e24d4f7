package jobs

import (
	"strconv"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/log"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

// Job settings keys
const (
	SettingSessionRetentionDays     = "jobs.sessions.retention_days"
	SettingActivityLogRetentionDays = "jobs.activity_logs.retention_days"
	SettingWebhookRetentionDays     = "jobs.webhook_deliveries.retention_days"
)

// JobSettingsCategory is the settings category for job settings
const JobSettingsCategory = "jobs"

// DefaultJobSettings defines the default values for job settings
var DefaultJobSettings = []models.Setting{
	{
		Key:      SettingSessionRetentionDays,
		Value:    "90",
		Type:     "number",
		Category: JobSettingsCategory,
		Label:    "Delete Inactive Sessions After (days)",
	},
	{
		Key:      SettingActivityLogRetentionDays,
		Value:    "365",
		Type:     "number",
		Category: JobSettingsCategory,
		Label:    "Delete Activity Logs After (days)",
	},
	{
		Key:      SettingWebhookRetentionDays,
		Value:    "30",
		Type:     "number",
		Category: JobSettingsCategory,
		Label:    "Delete Webhook Deliveries After (days)",
	},
}

// InitJobSettings creates default job settings if they don't exist
func InitJobSettings() {
	for _, setting := range DefaultJobSettings {
		existing, err := models.GetSetting(setting.Key)
		if err != nil || existing == nil {
			if err := models.SetSetting(setting.Key, setting.Value, setting.Type, setting.Category, setting.Label); err != nil {
				log.Error("Failed to create default job setting %s: %v", setting.Key, err)
			}
		}
	}
}

// GetSessionRetentionDays returns how long inactive sessions are kept. Zero disables cleanup.
func GetSessionRetentionDays() int {
	return getSettingInt(SettingSessionRetentionDays, 90)
}

// GetActivityLogRetentionDays returns how long activity log entries are kept. Zero disables cleanup.
func GetActivityLogRetentionDays() int {
	return getSettingInt(SettingActivityLogRetentionDays, 365)
}

// GetWebhookDeliveryRetentionDays returns how long webhook delivery records are kept. Zero disables cleanup.
func GetWebhookDeliveryRetentionDays() int {
	return getSettingInt(SettingWebhookRetentionDays, 30)
}

func getSettingInt(key string, defaultValue int) int {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil {
		return defaultValue
	}
	val, err := strconv.Atoi(setting.Value)
	if err != nil {
		return defaultValue
	}
	return val
}

// JobSettingsResponse represents the retention settings for API responses
type JobSettingsResponse struct {
	SessionRetentionDays     int `json:"session_retention_days"`
	ActivityLogRetentionDays int `json:"activity_log_retention_days"`
	WebhookRetentionDays     int `json:"webhook_retention_days"`
}

// JobSettingsUpdateRequest represents a partial update to retention settings
type JobSettingsUpdateRequest struct {
	SessionRetentionDays     *int `json:"session_retention_days"`
	ActivityLogRetentionDays *int `json:"activity_log_retention_days"`
	WebhookRetentionDays     *int `json:"webhook_retention_days"`
}

// GetJobSettings returns all job retention settings
// GET /api/admin/jobs/settings
func GetJobSettings(request *evo.Request) any {
	return response.OK(JobSettingsResponse{
		SessionRetentionDays:     GetSessionRetentionDays(),
		ActivityLogRetentionDays: GetActivityLogRetentionDays(),
		WebhookRetentionDays:     GetWebhookDeliveryRetentionDays(),
	})
}

// UpdateJobSettings updates job retention settings
// PUT /api/admin/jobs/settings
func UpdateJobSettings(request *evo.Request) any {
	var input JobSettingsUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	updates := map[string]*int{
		SettingSessionRetentionDays:     input.SessionRetentionDays,
		SettingActivityLogRetentionDays: input.ActivityLogRetentionDays,
		SettingWebhookRetentionDays:     input.WebhookRetentionDays,
	}

	for key, value := range updates {
		if value == nil {
			continue
		}
		if *value < 0 {
			return response.BadRequest("Retention days cannot be negative")
		}
		if err := models.SetSetting(key, strconv.Itoa(*value), "number", JobSettingsCategory, ""); err != nil {
			log.Error("Failed to update job setting %s: %v", key, err)
			return response.ErrDatabaseError.Response()
		}
	}

	return GetJobSettings(request)
}
