package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment is the atomic unit of scheduled work: hours for one employee on
// one project for one calendar week. WeekStartDate is the week's Monday in
// canonical YYYY-MM-DD form; dates act as week identifiers and are compared
// for equality, never as timestamps.
type Assignment struct {
	ID            uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	EmployeeID    uuid.UUID  `gorm:"column:employee_id;type:char(36);not null;index;index:idx_employee_week;fk:employees" json:"employee_id"`
	ProjectID     uuid.UUID  `gorm:"column:project_id;type:char(36);not null;index;fk:projects" json:"project_id"`
	WeekStartDate string     `gorm:"column:week_start_date;type:date;not null;index;index:idx_employee_week" json:"week_start_date"`
	Hours         float64    `gorm:"column:hours;not null;default:0" json:"hours"`
	ScioHours     *float64   `gorm:"column:scio_hours" json:"scio_hours,omitempty"`
	ExternalHours *float64   `gorm:"column:external_hours" json:"external_hours,omitempty"`
	Stage         *string    `gorm:"column:stage;size:50" json:"stage,omitempty"`
	ChangeOrderID *uuid.UUID `gorm:"column:change_order_id;type:char(36);index;fk:project_change_orders" json:"change_order_id,omitempty"`
	Comment       string     `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Employee    *Employee           `gorm:"foreignKey:EmployeeID;references:ID" json:"employee,omitempty"`
	Project     *Project            `gorm:"foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	ChangeOrder *ProjectChangeOrder `gorm:"foreignKey:ChangeOrderID;references:ID" json:"change_order,omitempty"`

	restify.API
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
