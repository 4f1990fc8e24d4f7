package jobs

import (
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"

	"github.com/teamcapacity/capacity-backend/apps/capacity"
	"github.com/teamcapacity/capacity-backend/apps/models"
)

// Job names as constants for consistency
const (
	JobRefreshWeeklyTotals      = "refresh_weekly_totals"
	JobCleanupStaleSessions     = "cleanup_stale_sessions"
	JobCleanupActivityLogs      = "cleanup_activity_logs"
	JobCleanupWebhookDeliveries = "cleanup_webhook_deliveries"
	JobCleanupJobExecutions     = "cleanup_job_executions"
)

// RegisterAllJobs registers all background jobs with the scheduler
func RegisterAllJobs(s *Scheduler) {
	definitions := []JobDefinition{
		{
			Name:        JobRefreshWeeklyTotals,
			Description: "Rebuild per-department weekly hour totals from assignments",
			Schedule:    "0 15 * * * *", // hourly at :15
			Timeout:     10 * time.Minute,
			Handler:     handleRefreshWeeklyTotals,
			Enabled:     true,
		},
		{
			Name:        JobCleanupStaleSessions,
			Description: "Delete user sessions with no activity beyond the retention period",
			Schedule:    "0 0 3 * * *", // daily at 03:00
			Timeout:     5 * time.Minute,
			Handler:     handleCleanupStaleSessions,
			Enabled:     true,
		},
		{
			Name:        JobCleanupActivityLogs,
			Description: "Delete activity log entries older than the retention period",
			Schedule:    "0 15 3 * * *", // daily at 03:15
			Timeout:     10 * time.Minute,
			Handler:     handleCleanupActivityLogs,
			Enabled:     true,
		},
		{
			Name:        JobCleanupWebhookDeliveries,
			Description: "Delete webhook delivery records older than the retention period",
			Schedule:    "0 30 3 * * *", // daily at 03:30
			Timeout:     5 * time.Minute,
			Handler:     handleCleanupWebhookDeliveries,
			Enabled:     true,
		},
		{
			Name:        JobCleanupJobExecutions,
			Description: "Clean up job execution history older than 7 days",
			Schedule:    "0 0 2 * * *", // daily at 02:00
			Timeout:     5 * time.Minute,
			Handler:     handleCleanupJobExecutions,
			Enabled:     true,
		},
	}

	for _, definition := range definitions {
		if err := s.RegisterJob(definition); err != nil {
			log.Error("Failed to register job %s: %v", definition.Name, err)
		}
	}
}

func handleRefreshWeeklyTotals(ctx *JobContext) error {
	rows, err := capacity.RefreshWeeklyTotals()
	if err != nil {
		return err
	}

	ctx.IncrementProcessed(rows)
	ctx.SetMetadata("totals_rebuilt", rows)
	return nil
}

func handleCleanupStaleSessions(ctx *JobContext) error {
	retentionDays := GetSessionRetentionDays()
	if retentionDays <= 0 {
		log.Info("[%s] Session retention disabled, skipping", JobCleanupStaleSessions)
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("last_activity < ?", cutoff).Delete(&models.UserSession{})
	if result.Error != nil {
		return result.Error
	}

	ctx.IncrementProcessed(int(result.RowsAffected))
	ctx.SetMetadata("retention_days", retentionDays)
	return nil
}

func handleCleanupActivityLogs(ctx *JobContext) error {
	retentionDays := GetActivityLogRetentionDays()
	if retentionDays <= 0 {
		log.Info("[%s] Activity log retention disabled, skipping", JobCleanupActivityLogs)
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return result.Error
	}

	ctx.IncrementProcessed(int(result.RowsAffected))
	ctx.SetMetadata("retention_days", retentionDays)
	return nil
}

func handleCleanupWebhookDeliveries(ctx *JobContext) error {
	retentionDays := GetWebhookDeliveryRetentionDays()
	if retentionDays <= 0 {
		log.Info("[%s] Webhook delivery retention disabled, skipping", JobCleanupWebhookDeliveries)
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("created_at < ?", cutoff).Delete(&models.WebhookDelivery{})
	if result.Error != nil {
		return result.Error
	}

	ctx.IncrementProcessed(int(result.RowsAffected))
	return nil
}

func handleCleanupJobExecutions(ctx *JobContext) error {
	deleted, err := GetScheduler().CleanupOldExecutions(7 * 24 * time.Hour)
	if err != nil {
		return err
	}

	ctx.IncrementProcessed(int(deleted))
	return nil
}
