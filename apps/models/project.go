package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a unit of work with a life span. EndDate is always derived from
// StartDate + NumberOfWeeks*7 days and is never edited independently.
type Project struct {
	ID                   uuid.UUID      `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name                 string         `gorm:"column:name;size:255;not null;index" json:"name"`
	Client               string         `gorm:"column:client;size:255;not null" json:"client"`
	StartDate            string         `gorm:"column:start_date;type:date;not null;index" json:"start_date"`
	EndDate              string         `gorm:"column:end_date;type:date;not null;index" json:"end_date"`
	Facility             string         `gorm:"column:facility;size:10;not null;check:facility IN ('AL','MI','MX')" json:"facility"`
	NumberOfWeeks        int            `gorm:"column:number_of_weeks;not null" json:"number_of_weeks"`
	ProjectManagerID     *uuid.UUID     `gorm:"column:project_manager_id;type:char(36);index;fk:employees" json:"project_manager_id,omitempty"`
	VisibleInDepartments datatypes.JSON `gorm:"column:visible_in_departments;type:json" json:"visible_in_departments,omitempty"`
	IsHidden             bool           `gorm:"column:is_hidden;not null;default:false;index" json:"is_hidden"`
	HiddenAt             *time.Time     `gorm:"column:hidden_at" json:"hidden_at,omitempty"`
	CreatedAt            time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	ProjectManager   *Employee               `gorm:"foreignKey:ProjectManagerID;references:ID" json:"project_manager,omitempty"`
	DepartmentStages []DepartmentStageConfig `gorm:"foreignKey:ProjectID;references:ID" json:"department_stages,omitempty"`
	Budgets          []ProjectBudget         `gorm:"foreignKey:ProjectID;references:ID" json:"budgets,omitempty"`
	ChangeOrders     []ProjectChangeOrder    `gorm:"foreignKey:ProjectID;references:ID" json:"change_orders,omitempty"`
	Assignments      []Assignment            `gorm:"foreignKey:ProjectID;references:ID" json:"assignments,omitempty"`

	restify.API
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DepartmentStageConfig is one department's stage window within a project.
// WeekStart/WeekEnd are 1-based week indices relative to the project's own
// start week; DepartmentStartDate is the authoritative absolute date the
// window was derived from. One row per project+department.
type DepartmentStageConfig struct {
	ID                  uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ProjectID           uuid.UUID `gorm:"column:project_id;type:char(36);not null;index;uniqueIndex:idx_project_department;fk:projects" json:"project_id"`
	Department          string    `gorm:"column:department;size:10;not null;uniqueIndex:idx_project_department" json:"department"`
	Stage               *string   `gorm:"column:stage;size:50" json:"stage,omitempty"`
	WeekStart           int       `gorm:"column:week_start;not null" json:"week_start"`
	WeekEnd             int       `gorm:"column:week_end;not null" json:"week_end"`
	DepartmentStartDate *string   `gorm:"column:department_start_date;type:date" json:"department_start_date,omitempty"`
	DurationWeeks       *int      `gorm:"column:duration_weeks" json:"duration_weeks,omitempty"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`

	restify.API
}

func (DepartmentStageConfig) TableName() string {
	return "department_stage_configs"
}

func (c *DepartmentStageConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SpanWeeks returns the stage duration in weeks, falling back to the relative
// window when DurationWeeks is absent (legacy rows predate the column).
func (c DepartmentStageConfig) SpanWeeks() int {
	if c.DurationWeeks != nil && *c.DurationWeeks > 0 {
		return *c.DurationWeeks
	}
	return c.WeekEnd - c.WeekStart + 1
}

// ProjectBudget tracks the hour budget of one department on one project.
// HoursAllocated is independent of the generated week-by-week distribution.
type ProjectBudget struct {
	ID             uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ProjectID      uuid.UUID `gorm:"column:project_id;type:char(36);not null;index;uniqueIndex:idx_budget_project_department;fk:projects" json:"project_id"`
	Department     string    `gorm:"column:department;size:10;not null;uniqueIndex:idx_budget_project_department" json:"department"`
	HoursAllocated float64   `gorm:"column:hours_allocated;not null;default:0" json:"hours_allocated"`
	HoursUtilized  float64   `gorm:"column:hours_utilized;not null;default:0" json:"hours_utilized"`
	HoursForecast  float64   `gorm:"column:hours_forecast;not null;default:0" json:"hours_forecast"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`

	restify.API
}

func (ProjectBudget) TableName() string {
	return "project_budgets"
}

func (b *ProjectBudget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UtilizationPercent reports (utilized+forecast)/allocated as a percentage.
func (b ProjectBudget) UtilizationPercent() float64 {
	if b.HoursAllocated == 0 {
		return 0
	}
	return (b.HoursUtilized + b.HoursForecast) / b.HoursAllocated * 100
}

// ProjectChangeOrder is an externally tracked scope addition for one
// department on one project (e.g. CO01). Referenced by assignments but not
// interpreted by the scheduling core.
type ProjectChangeOrder struct {
	ID          uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:char(36);not null;index;uniqueIndex:idx_co_project_department_name;fk:projects" json:"project_id"`
	Department  string    `gorm:"column:department;size:10;not null;uniqueIndex:idx_co_project_department_name" json:"department"`
	Name        string    `gorm:"column:name;size:50;not null;uniqueIndex:idx_co_project_department_name" json:"name"`
	HoursQuoted float64   `gorm:"column:hours_quoted;not null;default:0" json:"hours_quoted"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`

	restify.API
}

func (ProjectChangeOrder) TableName() string {
	return "project_change_orders"
}

func (co *ProjectChangeOrder) BeforeCreate(tx *gorm.DB) error {
	if co.ID == uuid.Nil {
		co.ID = uuid.New()
	}
	return nil
}
