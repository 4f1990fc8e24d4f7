package projects

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/schedule"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

func todayISO() string {
	return dateutil.FormatISO(time.Now().UTC())
}

// Statistics returns portfolio-level counts and hour totals.
func (c Controller) Statistics(request *evo.Request) any {
	var total, active int64
	today := todayISO()

	db.Model(&models.Project{}).Count(&total)
	db.Model(&models.Project{}).
		Where("start_date <= ? AND end_date >= ?", today, today).
		Count(&active)

	type facilityCount struct {
		Facility string `json:"facility"`
		Count    int64  `json:"count"`
	}
	var byFacility []facilityCount
	db.Model(&models.Project{}).
		Select("facility, COUNT(*) as count").
		Group("facility").
		Scan(&byFacility)

	type departmentHours struct {
		Department string  `json:"department"`
		Allocated  float64 `json:"allocated"`
		Utilized   float64 `json:"utilized"`
	}
	var byDepartment []departmentHours
	db.Model(&models.ProjectBudget{}).
		Select("department, SUM(hours_allocated) as allocated, SUM(hours_utilized) as utilized").
		Group("department").
		Scan(&byDepartment)

	return response.OK(map[string]any{
		"total_projects":  total,
		"active_projects": active,
		"by_facility":     byFacility,
		"by_department":   byDepartment,
	})
}

// TimelineWeek is one week column of a project timeline: the scheduled hours
// per department for that week.
type TimelineWeek struct {
	WeekStartDate string             `json:"week_start_date"`
	WeekIndex     int                `json:"week_index"`
	Departments   map[string]float64 `json:"departments"`
	TotalHours    float64            `json:"total_hours"`
}

// Timeline returns the project's week-by-week scheduled hours grouped by
// department, covering the project's own week span.
func (c Controller) Timeline(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	span, err := schedule.ComputeProjectWeekSpan(project.StartDate, project.NumberOfWeeks)
	if err != nil {
		return response.ErrInvalidDate.Response()
	}

	type row struct {
		WeekStartDate string
		Department    string
		Hours         float64
	}
	var rows []row
	err = db.Model(&models.Assignment{}).
		Select("assignments.week_start_date, employees.department, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Where("assignments.project_id = ?", project.ID).
		Group("assignments.week_start_date, employees.department").
		Scan(&rows).Error
	if err != nil {
		return response.HandleDBError(err, "timeline")
	}

	byWeek := map[string]map[string]float64{}
	for _, r := range rows {
		if byWeek[r.WeekStartDate] == nil {
			byWeek[r.WeekStartDate] = map[string]float64{}
		}
		byWeek[r.WeekStartDate][r.Department] += r.Hours
	}

	weeks := make([]TimelineWeek, 0, len(span))
	for i, weekStart := range span {
		week := TimelineWeek{
			WeekStartDate: weekStart,
			WeekIndex:     i + 1,
			Departments:   map[string]float64{},
		}
		for department, hours := range byWeek[weekStart] {
			week.Departments[department] = hours
			week.TotalHours += hours
		}
		weeks = append(weeks, week)
	}

	return response.OK(map[string]any{
		"project_id": project.ID,
		"start_date": project.StartDate,
		"end_date":   project.EndDate,
		"weeks":      weeks,
	})
}

// BudgetReportRow compares one department's budget against its scheduled and
// utilized hours on a project.
type BudgetReportRow struct {
	Department      string  `json:"department"`
	HoursAllocated  float64 `json:"hours_allocated"`
	HoursScheduled  float64 `json:"hours_scheduled"`
	HoursUtilized   float64 `json:"hours_utilized"`
	HoursForecast   float64 `json:"hours_forecast"`
	UtilizationPct  float64 `json:"utilization_pct"`
	ChangeOrderHrs  float64 `json:"change_order_hours"`
}

// BudgetReport returns allocated vs scheduled vs utilized hours per
// department for one project.
func (c Controller) BudgetReport(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var budgets []models.ProjectBudget
	if err := db.Where("project_id = ?", project.ID).Find(&budgets).Error; err != nil {
		return response.HandleDBError(err, "budgets")
	}

	type scheduledRow struct {
		Department string
		Hours      float64
	}
	var scheduled []scheduledRow
	db.Model(&models.Assignment{}).
		Select("employees.department, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Where("assignments.project_id = ?", project.ID).
		Group("employees.department").
		Scan(&scheduled)

	scheduledByDept := map[string]float64{}
	for _, s := range scheduled {
		scheduledByDept[s.Department] = s.Hours
	}

	type coRow struct {
		Department string
		Hours      float64
	}
	var changeOrders []coRow
	db.Model(&models.ProjectChangeOrder{}).
		Select("department, SUM(hours_quoted) as hours").
		Where("project_id = ?", project.ID).
		Group("department").
		Scan(&changeOrders)

	coByDept := map[string]float64{}
	for _, co := range changeOrders {
		coByDept[co.Department] = co.Hours
	}

	rows := make([]BudgetReportRow, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, BudgetReportRow{
			Department:     b.Department,
			HoursAllocated: b.HoursAllocated,
			HoursScheduled: scheduledByDept[b.Department],
			HoursUtilized:  b.HoursUtilized,
			HoursForecast:  b.HoursForecast,
			UtilizationPct: b.UtilizationPercent(),
			ChangeOrderHrs: coByDept[b.Department],
		})
	}

	return response.OK(map[string]any{
		"project_id": project.ID,
		"report":     rows,
	})
}

// ByFacility groups active projects under their facility.
func (c Controller) ByFacility(request *evo.Request) any {
	var projects []models.Project
	query := db.Model(&models.Project{}).Preload("ProjectManager")
	if request.Query("active").String() == "true" {
		today := todayISO()
		query = query.Where("start_date <= ? AND end_date >= ?", today, today)
	}
	if err := query.Order("facility, start_date").Find(&projects).Error; err != nil {
		return response.HandleDBError(err, "projects")
	}

	grouped := map[string][]models.Project{}
	for _, p := range projects {
		grouped[p.Facility] = append(grouped[p.Facility], p)
	}

	return response.OK(grouped)
}
