package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScioTeamCapacity is the in-house team capacity of one department for one
// week, in hours.
type ScioTeamCapacity struct {
	ID            uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Department    string    `gorm:"column:department;size:10;not null;uniqueIndex:idx_scio_department_week" json:"department"`
	WeekStartDate string    `gorm:"column:week_start_date;type:date;not null;uniqueIndex:idx_scio_department_week" json:"week_start_date"`
	Capacity      float64   `gorm:"column:capacity;not null;default:0" json:"capacity"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	restify.API
}

func (ScioTeamCapacity) TableName() string {
	return "scio_team_capacities"
}

func (c *ScioTeamCapacity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SubcontractedTeamCapacity is headcount from a subcontract company for one
// week (BUILD department only).
type SubcontractedTeamCapacity struct {
	ID            uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Company       string    `gorm:"column:company;size:100;not null;uniqueIndex:idx_sub_company_week" json:"company"`
	WeekStartDate string    `gorm:"column:week_start_date;type:date;not null;uniqueIndex:idx_sub_company_week" json:"week_start_date"`
	Capacity      int       `gorm:"column:capacity;not null;default:0" json:"capacity"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	restify.API
}

func (SubcontractedTeamCapacity) TableName() string {
	return "subcontracted_team_capacities"
}

func (c *SubcontractedTeamCapacity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PrgExternalTeamCapacity is headcount from an external PRG team for one week.
type PrgExternalTeamCapacity struct {
	ID            uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	TeamName      string    `gorm:"column:team_name;size:100;not null;uniqueIndex:idx_prg_team_week" json:"team_name"`
	WeekStartDate string    `gorm:"column:week_start_date;type:date;not null;uniqueIndex:idx_prg_team_week" json:"week_start_date"`
	Capacity      int       `gorm:"column:capacity;not null;default:0" json:"capacity"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	restify.API
}

func (PrgExternalTeamCapacity) TableName() string {
	return "prg_external_team_capacities"
}

func (c *PrgExternalTeamCapacity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DepartmentWeeklyTotal caches the summed assignment hours per department and
// week. Maintained by the weekly-totals refresh job and the assignment
// mutation paths; reads never recompute on the fly.
type DepartmentWeeklyTotal struct {
	ID            uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Department    string    `gorm:"column:department;size:10;not null;uniqueIndex:idx_total_department_week" json:"department"`
	WeekStartDate string    `gorm:"column:week_start_date;type:date;not null;uniqueIndex:idx_total_department_week" json:"week_start_date"`
	TotalHours    float64   `gorm:"column:total_hours;not null;default:0" json:"total_hours"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	restify.API
}

func (DepartmentWeeklyTotal) TableName() string {
	return "department_weekly_totals"
}

func (t *DepartmentWeeklyTotal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
