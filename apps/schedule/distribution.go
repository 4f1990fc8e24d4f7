package schedule

import (
	"math"

	"github.com/google/uuid"
)

// AssignmentDraft is one proposed (employee, week, hours) cell produced by
// the hour distribution engine. Drafts carry no identity; persistence assigns
// it when the caller bulk-creates them.
type AssignmentDraft struct {
	EmployeeID    uuid.UUID `json:"employee_id"`
	ProjectID     uuid.UUID `json:"project_id"`
	WeekStartDate string    `json:"week_start_date"`
	Hours         float64   `json:"hours"`
	Stage         *string   `json:"stage,omitempty"`
}

// DistributeHours splits a department's hour budget evenly across the given
// employees and across every week of the span, rounding each cell to two
// decimals (half up). Zero-hour cells are suppressed. The split ignores
// individual employee capacity; over-allocation is a reporting concern, not
// enforced here. Never fails: an empty employee set or non-positive budget
// yields no drafts.
func DistributeHours(departmentBudget float64, employees []uuid.UUID, projectID uuid.UUID, weekSpan []string) []AssignmentDraft {
	if len(employees) == 0 || departmentBudget <= 0 || len(weekSpan) == 0 {
		return nil
	}

	hoursPerEmployee := departmentBudget / float64(len(employees))
	hoursPerWeek := roundHours(hoursPerEmployee / float64(len(weekSpan)))
	if hoursPerWeek <= 0 {
		return nil
	}

	drafts := make([]AssignmentDraft, 0, len(employees)*len(weekSpan))
	for _, employeeID := range employees {
		for _, weekStart := range weekSpan {
			drafts = append(drafts, AssignmentDraft{
				EmployeeID:    employeeID,
				ProjectID:     projectID,
				WeekStartDate: weekStart,
				Hours:         hoursPerWeek,
			})
		}
	}
	return drafts
}

// roundHours rounds to 2 decimal places, half away from zero.
func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
