package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserSession is one browser session of a user. Liveness is derived from
// LastActivity, there is no is_active flag: a session whose heartbeat is
// older than the timeout counts as ended.
type UserSession struct {
	ID           uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:char(36);not null;index;fk:users" json:"user_id"`
	SessionID    string         `gorm:"column:session_id;size:100;not null;index" json:"session_id"`
	TabID        *string        `gorm:"column:tab_id;size:100" json:"tab_id,omitempty"`
	IPAddress    string         `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent    string         `gorm:"column:user_agent;size:500" json:"user_agent"`
	DeviceInfo   datatypes.JSON `gorm:"column:device_info;type:json" json:"device_info,omitempty"`
	StartedAt    time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	LastActivity time.Time      `gorm:"column:last_activity;not null;index" json:"last_activity"`

	restify.API
}

func (UserSession) TableName() string {
	return "user_sessions"
}

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UserDailyActivity accumulates a user's active seconds per calendar day,
// fed by session heartbeats.
type UserDailyActivity struct {
	ID                 uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"column:user_id;type:char(36);not null;uniqueIndex:idx_user_activity_date;fk:users" json:"user_id"`
	ActivityDate       string         `gorm:"column:activity_date;type:date;not null;uniqueIndex:idx_user_activity_date" json:"activity_date"`
	TotalActiveSeconds int            `gorm:"column:total_active_seconds;not null;default:0" json:"total_active_seconds"`
	FirstActivity      time.Time      `gorm:"column:first_activity" json:"first_activity"`
	LastActivity       time.Time      `gorm:"column:last_activity" json:"last_activity"`
	SessionCount       int            `gorm:"column:session_count;not null;default:0" json:"session_count"`
	ActivePeriods      datatypes.JSON `gorm:"column:active_periods;type:json" json:"active_periods,omitempty"`

	restify.API
}

func (UserDailyActivity) TableName() string {
	return "user_daily_activities"
}

func (a *UserDailyActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
