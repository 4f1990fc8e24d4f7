package assignments

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/google/uuid"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

// SummaryByProject aggregates a project's scheduled hours per department.
func (c Controller) SummaryByProject(request *evo.Request) any {
	projectID, err := uuid.Parse(request.Param("project_id").String())
	if err != nil {
		return response.ErrInvalidProjectID.Response()
	}

	type row struct {
		Department string  `json:"department"`
		Cells      int64   `json:"cells"`
		Hours      float64 `json:"hours"`
	}
	var rows []row
	err = db.Model(&models.Assignment{}).
		Select("employees.department, COUNT(*) as cells, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Where("assignments.project_id = ?", projectID).
		Group("employees.department").
		Scan(&rows).Error
	if err != nil {
		return response.Error(response.ErrFetchAssignments())
	}

	return response.List(rows, len(rows))
}

// CapacityByDepartment compares a department's scheduled hours against its
// team capacity for a run of weeks starting at the given week.
func (c Controller) CapacityByDepartment(request *evo.Request) any {
	department := request.Query("department").String()
	if !models.IsValidDepartment(department) {
		return response.ErrInvalidDepartment.Response()
	}

	weeks := request.Query("weeks").Int()
	if weeks < 1 {
		weeks = 8
	}
	if weeks > 52 {
		weeks = 52
	}

	start := dateutil.CurrentWeekStart()
	if raw := request.Query("week_start_date").String(); raw != "" {
		parsed, err := dateutil.ParseISO(raw)
		if err != nil {
			return response.ErrInvalidDate.Response()
		}
		start = dateutil.MondayOf(parsed)
	}

	weekDates := make([]string, weeks)
	for i := range weekDates {
		weekDates[i] = dateutil.FormatISO(dateutil.AddWeeks(start, i))
	}

	type row struct {
		WeekStartDate string
		Hours         float64
	}
	var scheduled []row
	err := db.Model(&models.Assignment{}).
		Select("assignments.week_start_date, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Where("employees.department = ? AND assignments.week_start_date IN ?", department, weekDates).
		Group("assignments.week_start_date").
		Scan(&scheduled).Error
	if err != nil {
		return response.Error(response.ErrFetchAssignments())
	}

	scheduledByWeek := map[string]float64{}
	for _, r := range scheduled {
		scheduledByWeek[r.WeekStartDate] = r.Hours
	}

	var capacities []models.ScioTeamCapacity
	db.Where("department = ? AND week_start_date IN ?", department, weekDates).Find(&capacities)
	capacityByWeek := map[string]float64{}
	for _, tc := range capacities {
		capacityByWeek[tc.WeekStartDate] = tc.Capacity
	}

	// Fall back to summed employee capacity for weeks without an explicit
	// team capacity row.
	var nominal float64
	db.Model(&models.Employee{}).
		Where("department = ? AND is_active = ?", department, true).
		Select("COALESCE(SUM(capacity),0)").
		Scan(&nominal)

	type weekReport struct {
		WeekStartDate  string  `json:"week_start_date"`
		Scheduled      float64 `json:"scheduled"`
		Capacity       float64 `json:"capacity"`
		UtilizationPct float64 `json:"utilization_pct"`
	}
	report := make([]weekReport, 0, weeks)
	for _, week := range weekDates {
		capacity, ok := capacityByWeek[week]
		if !ok {
			capacity = nominal
		}
		entry := weekReport{
			WeekStartDate: week,
			Scheduled:     scheduledByWeek[week],
			Capacity:      capacity,
		}
		if capacity > 0 {
			entry.UtilizationPct = entry.Scheduled / capacity * 100
		}
		report = append(report, entry)
	}

	return response.OK(map[string]any{
		"department": department,
		"weeks":      report,
	})
}

// UtilizationReport reports every department's utilization for one week.
func (c Controller) UtilizationReport(request *evo.Request) any {
	week := request.Query("week_start_date").String()
	if week == "" {
		week = dateutil.FormatISO(dateutil.CurrentWeekStart())
	} else if _, err := dateutil.ParseISO(week); err != nil {
		return response.ErrInvalidDate.Response()
	}

	type row struct {
		Department string
		Hours      float64
	}
	var scheduled []row
	err := db.Model(&models.Assignment{}).
		Select("employees.department, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Where("assignments.week_start_date = ?", week).
		Group("employees.department").
		Scan(&scheduled).Error
	if err != nil {
		return response.Error(response.ErrFetchAssignments())
	}

	scheduledByDept := map[string]float64{}
	for _, r := range scheduled {
		scheduledByDept[r.Department] = r.Hours
	}

	type capacityRow struct {
		Department string
		Capacity   float64
	}
	var capacities []capacityRow
	db.Model(&models.Employee{}).
		Select("department, COALESCE(SUM(capacity),0) as capacity").
		Where("is_active = ?", true).
		Group("department").
		Scan(&capacities)

	capacityByDept := map[string]float64{}
	for _, r := range capacities {
		capacityByDept[r.Department] = r.Capacity
	}

	type deptReport struct {
		Department     string  `json:"department"`
		Scheduled      float64 `json:"scheduled"`
		Capacity       float64 `json:"capacity"`
		UtilizationPct float64 `json:"utilization_pct"`
	}
	report := make([]deptReport, 0, len(models.DepartmentCodes))
	for _, department := range models.DepartmentCodes {
		entry := deptReport{
			Department: department,
			Scheduled:  scheduledByDept[department],
			Capacity:   capacityByDept[department],
		}
		if entry.Capacity > 0 {
			entry.UtilizationPct = entry.Scheduled / entry.Capacity * 100
		}
		report = append(report, entry)
	}

	return response.OK(map[string]any{
		"week_start_date": week,
		"departments":     report,
	})
}
