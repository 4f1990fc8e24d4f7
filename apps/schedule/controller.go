package schedule

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

// Calendar returns the week sequence for a planning year.
func (c Controller) Calendar(request *evo.Request) any {
	year := request.Param("year").Int()
	if year < 2000 || year > 2100 {
		return response.BadRequest("Year must be between 2000 and 2100")
	}

	weeks := GenerateCalendar(year)
	return response.OKWithMeta(weeks, &response.Meta{Count: len(weeks)})
}

type ResolveRequest struct {
	DepartmentStartDate string `json:"department_start_date"`
	ProjectStartDate    string `json:"project_start_date"`
	DurationWeeks       int    `json:"duration_weeks"`
	CalendarYear        int    `json:"calendar_year"`
}

// Resolve maps a department's absolute start date to a project-relative week
// window.
func (c Controller) Resolve(request *evo.Request) any {
	var input ResolveRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.DurationWeeks < 1 {
		return response.BadRequest("duration_weeks must be at least 1")
	}
	if _, err := dateutil.ParseISO(input.ProjectStartDate); err != nil {
		return response.ErrInvalidDate.Response()
	}
	if input.CalendarYear == 0 {
		start, _ := dateutil.ParseISO(input.ProjectStartDate)
		input.CalendarYear = start.Year()
	}

	window, degraded := ResolveDepartmentStage(input.DepartmentStartDate, input.ProjectStartDate, input.DurationWeeks, input.CalendarYear)
	if degraded {
		log.Warning("Stage resolution fell back to week 1: department start %s not on the %d calendar", input.DepartmentStartDate, input.CalendarYear)
	}

	return response.OK(map[string]any{
		"window":   window,
		"degraded": degraded,
	})
}

type DistributeRequest struct {
	ProjectID     string   `json:"project_id"`
	Department    string   `json:"department"`
	Budget        float64  `json:"budget"`
	StartDate     string   `json:"start_date"`
	NumberOfWeeks int      `json:"number_of_weeks"`
	EmployeeIDs   []string `json:"employee_ids"`
}

// Distribute previews the even split of a department budget across employees
// and weeks without persisting anything. When employee_ids is omitted, every
// active employee of the department participates.
func (c Controller) Distribute(request *evo.Request) any {
	var input DistributeRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	projectID, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return response.ErrInvalidProjectID.Response()
	}
	if !models.IsValidDepartment(input.Department) {
		return response.ErrInvalidDepartment.Response()
	}
	if input.NumberOfWeeks < 1 {
		return response.BadRequest("number_of_weeks must be at least 1")
	}

	span, err := ComputeProjectWeekSpan(input.StartDate, input.NumberOfWeeks)
	if err != nil {
		return response.ErrInvalidDate.Response()
	}

	var employeeIDs []uuid.UUID
	if len(input.EmployeeIDs) > 0 {
		for _, raw := range input.EmployeeIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return response.ErrInvalidEmployeeID.Response()
			}
			employeeIDs = append(employeeIDs, id)
		}
	} else {
		if err := db.Model(&models.Employee{}).
			Where("department = ? AND is_active = ?", input.Department, true).
			Pluck("id", &employeeIDs).Error; err != nil {
			return response.HandleDBError(err, "employees")
		}
	}

	drafts := DistributeHours(input.Budget, employeeIDs, projectID, span)

	var total float64
	for _, d := range drafts {
		total += d.Hours
	}

	return response.OKWithMeta(drafts, &response.Meta{
		Count: len(drafts),
		Extra: map[string]interface{}{
			"total_hours": total,
			"employees":   len(employeeIDs),
			"weeks":       len(span),
		},
	})
}
