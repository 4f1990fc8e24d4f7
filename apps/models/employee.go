package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is a resourceable person belonging to one department.
// Capacity is the nominal weekly hour budget used for utilization reporting;
// the distribution engine never enforces it.
type Employee struct {
	ID                      uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name                    string    `gorm:"column:name;size:255;not null;index" json:"name"`
	Role                    string    `gorm:"column:role;size:255" json:"role"`
	Department              string    `gorm:"column:department;size:10;not null;index;check:department IN ('PM','MED','HD','MFG','BUILD','PRG')" json:"department"`
	Capacity                float64   `gorm:"column:capacity;not null;default:0" json:"capacity"`
	IsActive                bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	IsSubcontractedMaterial bool      `gorm:"column:is_subcontracted_material;not null;default:false" json:"is_subcontracted_material"`
	SubcontractCompany      *string   `gorm:"column:subcontract_company;size:100" json:"subcontract_company,omitempty"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Assignments     []Assignment `gorm:"foreignKey:EmployeeID;references:ID" json:"assignments,omitempty"`
	ManagedProjects []Project    `gorm:"foreignKey:ProjectManagerID;references:ID" json:"managed_projects,omitempty"`

	restify.API
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
