package models

import (
	"encoding/json"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
)

// LogActivity creates a new activity log entry asynchronously
func LogActivity(entry ActivityLogEntry) {
	go func() {
		if err := createActivityLog(entry); err != nil {
			log.Error("Failed to create activity log: %v", err)
		}
	}()
}

// LogActivitySync creates a new activity log entry synchronously
func LogActivitySync(entry ActivityLogEntry) error {
	return createActivityLog(entry)
}

// createActivityLog is the internal function that actually creates the log entry
func createActivityLog(entry ActivityLogEntry) error {
	activityLog := ActivityLog{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		UserID:     entry.UserID,
	}

	if entry.OldValues != nil {
		if oldValuesJSON, err := json.Marshal(entry.OldValues); err == nil {
			activityLog.OldValues = oldValuesJSON
		}
	}

	if entry.NewValues != nil {
		if newValuesJSON, err := json.Marshal(entry.NewValues); err == nil {
			activityLog.NewValues = newValuesJSON
		}
	}

	if entry.Metadata != nil {
		if metadataJSON, err := json.Marshal(entry.Metadata); err == nil {
			activityLog.Metadata = metadataJSON
		}
	}

	if entry.IPAddress != "" {
		activityLog.IPAddress = &entry.IPAddress
	}

	return db.Create(&activityLog).Error
}

// LogProjectCreate logs a project creation
func LogProjectCreate(projectID uuid.UUID, userID *uuid.UUID, newValues map[string]any, ip string) {
	LogActivity(ActivityLogEntry{
		EntityType: EntityProject,
		EntityID:   projectID.String(),
		Action:     ActionCreate,
		UserID:     userID,
		NewValues:  newValues,
		IPAddress:  ip,
	})
}

// LogProjectUpdate logs a project update with changed fields
func LogProjectUpdate(projectID uuid.UUID, userID *uuid.UUID, oldValues, newValues map[string]any, ip string) {
	LogActivity(ActivityLogEntry{
		EntityType: EntityProject,
		EntityID:   projectID.String(),
		Action:     ActionUpdate,
		UserID:     userID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  ip,
	})
}

// LogProjectDelete logs a project deletion with its cascade size
func LogProjectDelete(projectID uuid.UUID, userID *uuid.UUID, oldValues map[string]any, assignmentCount int64, ip string) {
	LogActivity(ActivityLogEntry{
		EntityType: EntityProject,
		EntityID:   projectID.String(),
		Action:     ActionDelete,
		UserID:     userID,
		OldValues:  oldValues,
		Metadata:   map[string]any{"cascaded_assignments": assignmentCount},
		IPAddress:  ip,
	})
}

// LogAssignmentBulkCreate logs the bulk assignment generation for a project
// department performed by the hour distribution pipeline
func LogAssignmentBulkCreate(projectID uuid.UUID, userID *uuid.UUID, department string, count int, totalHours float64, ip string) {
	LogActivity(ActivityLogEntry{
		EntityType: EntityAssignment,
		EntityID:   projectID.String(),
		Action:     ActionBulkCreate,
		UserID:     userID,
		Metadata: map[string]any{
			"department":  department,
			"assignments": count,
			"total_hours": totalHours,
		},
		IPAddress: ip,
	})
}

// GetActivityLogs retrieves activity logs with filtering and pagination
func GetActivityLogs(entityType, entityID, action string, userID *uuid.UUID, limit, offset int) ([]ActivityLog, int64, error) {
	var logs []ActivityLog
	var total int64

	query := db.Model(&ActivityLog{})

	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if userID != nil {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, total, err
}

// GetEntityActivityLogs retrieves all activity logs for a specific entity
func GetEntityActivityLogs(entityType, entityID string, limit int) ([]ActivityLog, error) {
	var logs []ActivityLog

	if limit <= 0 {
		limit = 50
	}

	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error

	return logs, err
}

// LogBudgetChange logs a department budget hour change on a project
func LogBudgetChange(projectID uuid.UUID, userID *uuid.UUID, department string, oldHours, newHours float64, ip string) {
	LogActivity(ActivityLogEntry{
		EntityType: EntityBudget,
		EntityID:   projectID.String(),
		Action:     ActionBudgetChange,
		UserID:     userID,
		OldValues:  map[string]any{"department": department, "hours_allocated": oldHours},
		NewValues:  map[string]any{"department": department, "hours_allocated": newHours},
		IPAddress:  ip,
	})
}
