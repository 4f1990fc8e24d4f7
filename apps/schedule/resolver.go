package schedule

import (
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
)

// StageWindow is a department's resolved stage window within a project,
// expressed as 1-based week indices relative to the project's own start week
// (week 1 = the project's first week). The window may start at zero or a
// negative index when the department began before the project's planned
// start; callers must not clamp it.
type StageWindow struct {
	WeekStart           int    `json:"week_start"`
	WeekEnd             int    `json:"week_end"`
	DepartmentStartDate string `json:"department_start_date"`
	DurationWeeks       int    `json:"duration_weeks"`
}

// ResolveDepartmentStage converts a department's absolute start date into a
// week window relative to the project start, using the planning-year
// calendar. When either date cannot be located in the calendar (malformed
// input or a date outside the covered range) the window falls back to
// relative week 1; the second return value reports that degraded path so
// callers can log it. Idempotent: identical inputs always produce identical
// output.
func ResolveDepartmentStage(departmentStartDate, projectStartDate string, durationWeeks, calendarYear int) (StageWindow, bool) {
	weeks := GenerateCalendar(calendarYear)
	index := calendarIndex(weeks)

	weekStart := 1
	degraded := true

	projectIdx, haveProject := index[projectStartDate]
	deptIdx, haveDept := index[departmentStartDate]
	if haveProject && haveDept {
		weekStart = deptIdx - projectIdx + 1
		degraded = false
	}

	return StageWindow{
		WeekStart:           weekStart,
		WeekEnd:             weekStart + durationWeeks - 1,
		DepartmentStartDate: departmentStartDate,
		DurationWeeks:       durationWeeks,
	}, degraded
}

// ComputeProjectEndDate returns startDate + numberOfWeeks*7 days. Plain day
// arithmetic, no calendar-week alignment correction.
func ComputeProjectEndDate(startDate string, numberOfWeeks int) (string, error) {
	start, err := dateutil.ParseISO(startDate)
	if err != nil {
		return "", err
	}
	return dateutil.FormatISO(dateutil.AddWeeks(start, numberOfWeeks)), nil
}

// ComputeProjectWeekSpan returns exactly numberOfWeeks week-start dates, 7
// days apart, beginning at startDate. Independent of the global calendar;
// this is the enumeration basis for hour distribution.
func ComputeProjectWeekSpan(startDate string, numberOfWeeks int) ([]string, error) {
	start, err := dateutil.ParseISO(startDate)
	if err != nil {
		return nil, err
	}

	span := make([]string, 0, numberOfWeeks)
	for i := 0; i < numberOfWeeks; i++ {
		span = append(span, dateutil.FormatISO(dateutil.AddWeeks(start, i)))
	}
	return span, nil
}
