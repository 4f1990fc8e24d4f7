package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"github.com/teamcapacity/capacity-backend/apps/auth"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity log action constants
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionBulkCreate   = "bulk_create"
	ActionBudgetChange = "budget_change"
	ActionLogin        = "login"
	ActionLogout       = "logout"
)

// Activity log entity type constants
const (
	EntityEmployee    = "employee"
	EntityProject     = "project"
	EntityAssignment  = "assignment"
	EntityStageConfig = "department_stage"
	EntityBudget      = "project_budget"
	EntityChangeOrder = "change_order"
	EntityCapacity    = "team_capacity"
	EntityUser        = "user"
	EntitySetting     = "setting"
)

// ActivityLog is the audit trail: one row per mutation with old/new values
type ActivityLog struct {
	ID         uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	EntityType string         `gorm:"column:entity_type;size:50;not null;index" json:"entity_type"`
	EntityID   string         `gorm:"column:entity_id;size:36;not null;index" json:"entity_id"`
	Action     string         `gorm:"column:action;size:50;not null;index" json:"action"`
	UserID     *uuid.UUID     `gorm:"column:user_id;type:char(36);index;fk:users" json:"user_id"`
	OldValues  datatypes.JSON `gorm:"column:old_values;type:json" json:"old_values,omitempty"`
	NewValues  datatypes.JSON `gorm:"column:new_values;type:json" json:"new_values,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:json" json:"metadata,omitempty"`
	IPAddress  *string        `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	// Relationships
	User *auth.User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`

	restify.API
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ActivityLogEntry is a helper struct for creating activity log entries
type ActivityLogEntry struct {
	EntityType string
	EntityID   string
	Action     string
	UserID     *uuid.UUID
	OldValues  map[string]any
	NewValues  map[string]any
	Metadata   map[string]any
	IPAddress  string
}
