package projects

import (
	"github.com/go-playground/validator/v10"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.IsValidDepartment(fl.Field().String())
	})
	_ = validate.RegisterValidation("facility", func(fl validator.FieldLevel) bool {
		return models.IsValidFacility(fl.Field().String())
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := dateutil.ParseISO(value)
		return err == nil
	})
}

// DepartmentPlan is one department's slice of a project creation or update
// request: its stage window plus the hour budget to distribute.
type DepartmentPlan struct {
	Department    string   `json:"department" validate:"required,department"`
	StartDate     string   `json:"start_date" validate:"omitempty,isodate"`
	DurationWeeks int      `json:"duration_weeks" validate:"omitempty,min=1,max=260"`
	Stage         *string  `json:"stage"`
	BudgetHours   float64  `json:"budget_hours" validate:"min=0"`
	EmployeeIDs   []string `json:"employee_ids" validate:"omitempty,dive,uuid4"`
}

type ProjectCreateRequest struct {
	Name                 string           `json:"name" validate:"required,max=255"`
	Client               string           `json:"client" validate:"required,max=255"`
	StartDate            string           `json:"start_date" validate:"required,isodate"`
	Facility             string           `json:"facility" validate:"required,facility"`
	NumberOfWeeks        int              `json:"number_of_weeks" validate:"required,min=1,max=260"`
	ProjectManagerID     *string          `json:"project_manager_id" validate:"omitempty,uuid4"`
	VisibleInDepartments []string         `json:"visible_in_departments" validate:"omitempty,dive,department"`
	Departments          []DepartmentPlan `json:"departments" validate:"omitempty,dive"`
}

type ProjectUpdateRequest struct {
	Name                 *string  `json:"name" validate:"omitempty,max=255"`
	Client               *string  `json:"client" validate:"omitempty,max=255"`
	StartDate            *string  `json:"start_date" validate:"omitempty,isodate"`
	Facility             *string  `json:"facility" validate:"omitempty,facility"`
	NumberOfWeeks        *int     `json:"number_of_weeks" validate:"omitempty,min=1,max=260"`
	ProjectManagerID     *string  `json:"project_manager_id" validate:"omitempty,uuid4"`
	VisibleInDepartments []string `json:"visible_in_departments" validate:"omitempty,dive,department"`
}

type BudgetUpdateRequest struct {
	Department string  `json:"department" validate:"required,department"`
	Hours      float64 `json:"hours" validate:"min=0"`
}

type ChangeOrderRequest struct {
	Department  string  `json:"department" validate:"required,department"`
	Name        string  `json:"name" validate:"required,max=50"`
	HoursQuoted float64 `json:"hours_quoted" validate:"min=0"`
}
