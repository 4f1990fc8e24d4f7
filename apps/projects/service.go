package projects

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/schedule"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
)

// CreateProject runs the full creation pipeline: derive the end date, persist
// the project with its stage windows and budgets in one transaction, then
// distribute each department budget into weekly assignments.
func CreateProject(input ProjectCreateRequest) (*models.Project, error) {
	endDate, err := schedule.ComputeProjectEndDate(input.StartDate, input.NumberOfWeeks)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	project := models.Project{
		Name:          input.Name,
		Client:        input.Client,
		StartDate:     input.StartDate,
		EndDate:       endDate,
		Facility:      input.Facility,
		NumberOfWeeks: input.NumberOfWeeks,
	}

	if input.ProjectManagerID != nil {
		managerID, err := uuid.Parse(*input.ProjectManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid project manager id")
		}
		project.ProjectManagerID = &managerID
	}

	if len(input.VisibleInDepartments) > 0 {
		visible, _ := json.Marshal(input.VisibleInDepartments)
		project.VisibleInDepartments = visible
	}

	calendarYear := projectCalendarYear(input.StartDate)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for _, plan := range input.Departments {
			if err := createDepartmentPlan(tx, &project, plan, calendarYear); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Hour distribution happens after the project row is committed so a
	// distribution failure never leaves a half-created project behind.
	for _, plan := range input.Departments {
		if err := distributeDepartmentBudget(&project, plan); err != nil {
			log.Error("Hour distribution failed for project %s department %s: %v", project.ID, plan.Department, err)
		}
	}

	return &project, nil
}

// createDepartmentPlan persists one department's stage window and budget.
func createDepartmentPlan(tx *gorm.DB, project *models.Project, plan DepartmentPlan, calendarYear int) error {
	startDate := plan.StartDate
	if startDate == "" {
		startDate = project.StartDate
	}
	durationWeeks := plan.DurationWeeks
	if durationWeeks == 0 {
		durationWeeks = project.NumberOfWeeks
	}

	window, degraded := schedule.ResolveDepartmentStage(startDate, project.StartDate, durationWeeks, calendarYear)
	if degraded {
		log.Warning("Stage resolution for project %s department %s fell back to week 1 (start %s)",
			project.ID, plan.Department, startDate)
	}

	stage := models.DepartmentStageConfig{
		ProjectID:           project.ID,
		Department:          plan.Department,
		Stage:               plan.Stage,
		WeekStart:           window.WeekStart,
		WeekEnd:             window.WeekEnd,
		DepartmentStartDate: &startDate,
		DurationWeeks:       &durationWeeks,
	}
	if err := tx.Create(&stage).Error; err != nil {
		return fmt.Errorf("department %s: %w", plan.Department, err)
	}

	budget := models.ProjectBudget{
		ProjectID:      project.ID,
		Department:     plan.Department,
		HoursAllocated: plan.BudgetHours,
	}
	if err := tx.Create(&budget).Error; err != nil {
		return fmt.Errorf("department %s budget: %w", plan.Department, err)
	}

	return nil
}

// distributeDepartmentBudget splits a department budget into weekly
// assignments and bulk-creates them. Explicit employee ids win; otherwise
// every active employee of the department participates.
func distributeDepartmentBudget(project *models.Project, plan DepartmentPlan) error {
	if plan.BudgetHours <= 0 {
		return nil
	}

	startDate := plan.StartDate
	if startDate == "" {
		startDate = project.StartDate
	}
	durationWeeks := plan.DurationWeeks
	if durationWeeks == 0 {
		durationWeeks = project.NumberOfWeeks
	}

	span, err := schedule.ComputeProjectWeekSpan(startDate, durationWeeks)
	if err != nil {
		return err
	}

	employeeIDs, err := resolvePlanEmployees(plan)
	if err != nil {
		return err
	}
	if len(employeeIDs) == 0 {
		log.Warning("No active employees in department %s; budget of project %s left undistributed",
			plan.Department, project.ID)
		return nil
	}

	drafts := schedule.DistributeHours(plan.BudgetHours, employeeIDs, project.ID, span)
	if len(drafts) == 0 {
		return nil
	}

	assignments := make([]models.Assignment, 0, len(drafts))
	for _, draft := range drafts {
		assignments = append(assignments, models.Assignment{
			EmployeeID:    draft.EmployeeID,
			ProjectID:     draft.ProjectID,
			WeekStartDate: draft.WeekStartDate,
			Hours:         draft.Hours,
			Stage:         plan.Stage,
		})
	}

	return db.CreateInBatches(&assignments, 500).Error
}

func resolvePlanEmployees(plan DepartmentPlan) ([]uuid.UUID, error) {
	if len(plan.EmployeeIDs) > 0 {
		ids := make([]uuid.UUID, 0, len(plan.EmployeeIDs))
		for _, raw := range plan.EmployeeIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid employee id %q", raw)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	var ids []uuid.UUID
	err := db.Model(&models.Employee{}).
		Where("department = ? AND is_active = ?", plan.Department, true).
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateProject applies field updates and rederives the end date whenever the
// start date or duration changed.
func UpdateProject(project *models.Project, input ProjectUpdateRequest) (map[string]any, map[string]any, error) {
	oldValues := map[string]any{}
	newValues := map[string]any{}

	if input.Name != nil && *input.Name != project.Name {
		oldValues["name"] = project.Name
		newValues["name"] = *input.Name
		project.Name = *input.Name
	}
	if input.Client != nil && *input.Client != project.Client {
		oldValues["client"] = project.Client
		newValues["client"] = *input.Client
		project.Client = *input.Client
	}
	if input.Facility != nil && *input.Facility != project.Facility {
		oldValues["facility"] = project.Facility
		newValues["facility"] = *input.Facility
		project.Facility = *input.Facility
	}
	if input.StartDate != nil && *input.StartDate != project.StartDate {
		oldValues["start_date"] = project.StartDate
		newValues["start_date"] = *input.StartDate
		project.StartDate = *input.StartDate
	}
	if input.NumberOfWeeks != nil && *input.NumberOfWeeks != project.NumberOfWeeks {
		oldValues["number_of_weeks"] = project.NumberOfWeeks
		newValues["number_of_weeks"] = *input.NumberOfWeeks
		project.NumberOfWeeks = *input.NumberOfWeeks
	}
	if input.ProjectManagerID != nil {
		managerID, err := uuid.Parse(*input.ProjectManagerID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid project manager id")
		}
		project.ProjectManagerID = &managerID
		newValues["project_manager_id"] = managerID.String()
	}
	if input.VisibleInDepartments != nil {
		visible, _ := json.Marshal(input.VisibleInDepartments)
		project.VisibleInDepartments = visible
		newValues["visible_in_departments"] = input.VisibleInDepartments
	}

	if _, dateChanged := newValues["start_date"]; dateChanged || newValues["number_of_weeks"] != nil {
		endDate, err := schedule.ComputeProjectEndDate(project.StartDate, project.NumberOfWeeks)
		if err != nil {
			return nil, nil, err
		}
		oldValues["end_date"] = project.EndDate
		newValues["end_date"] = endDate
		project.EndDate = endDate
	}

	if len(newValues) == 0 {
		return oldValues, newValues, nil
	}

	if err := db.Save(project).Error; err != nil {
		return nil, nil, err
	}

	// Stage windows and distributed assignments are stored relative to the
	// project start, so a moved start date invalidates both.
	if _, dateChanged := newValues["start_date"]; dateChanged {
		if err := reresolveStageWindows(project); err != nil {
			log.Error("Failed to re-resolve stage windows for project %s: %v", project.ID, err)
		}
	}

	return oldValues, newValues, nil
}

// reresolveStageWindows recomputes every department's relative week window
// against the current project start date, then regenerates each funded
// department's distributed assignments at the new week dates.
func reresolveStageWindows(project *models.Project) error {
	var stages []models.DepartmentStageConfig
	if err := db.Where("project_id = ?", project.ID).Find(&stages).Error; err != nil {
		return err
	}

	calendarYear := projectCalendarYear(project.StartDate)
	for i := range stages {
		startDate := project.StartDate
		if stages[i].DepartmentStartDate != nil && *stages[i].DepartmentStartDate != "" {
			startDate = *stages[i].DepartmentStartDate
		}
		durationWeeks := project.NumberOfWeeks
		if stages[i].DurationWeeks != nil && *stages[i].DurationWeeks > 0 {
			durationWeeks = *stages[i].DurationWeeks
		}

		window, degraded := schedule.ResolveDepartmentStage(startDate, project.StartDate, durationWeeks, calendarYear)
		if degraded {
			log.Warning("Stage re-resolution for project %s department %s fell back to week 1",
				project.ID, stages[i].Department)
		}

		stages[i].WeekStart = window.WeekStart
		stages[i].WeekEnd = window.WeekEnd
		if err := db.Save(&stages[i]).Error; err != nil {
			return err
		}

		if err := regenerateDepartmentAssignments(project, &stages[i]); err != nil {
			log.Error("Failed to regenerate %s assignments for project %s: %v",
				stages[i].Department, project.ID, err)
		}
	}

	return nil
}

// regenerateDepartmentAssignments replaces a department's distributed
// assignments with a fresh distribution over the current week span.
// Change-order assignments carry their own dates and are left untouched.
func regenerateDepartmentAssignments(project *models.Project, stage *models.DepartmentStageConfig) error {
	var budget models.ProjectBudget
	err := db.Where("project_id = ? AND department = ?", project.ID, stage.Department).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if budget.HoursAllocated <= 0 {
		return nil
	}

	departmentEmployees := db.Model(&models.Employee{}).
		Select("id").Where("department = ?", stage.Department)
	err = db.Where("project_id = ? AND change_order_id IS NULL AND employee_id IN (?)",
		project.ID, departmentEmployees).
		Delete(&models.Assignment{}).Error
	if err != nil {
		return err
	}

	return distributeDepartmentBudget(project, planFromStage(stage, budget.HoursAllocated))
}

// planFromStage rebuilds the distribution input for a stored stage window.
// Department-level overrides win; blank fields fall back to the project
// defaults inside the distribution itself.
func planFromStage(stage *models.DepartmentStageConfig, budgetHours float64) DepartmentPlan {
	plan := DepartmentPlan{
		Department:  stage.Department,
		Stage:       stage.Stage,
		BudgetHours: budgetHours,
	}
	if stage.DepartmentStartDate != nil {
		plan.StartDate = *stage.DepartmentStartDate
	}
	if stage.DurationWeeks != nil {
		plan.DurationWeeks = *stage.DurationWeeks
	}
	return plan
}

// DeleteProject removes a project and everything hanging off it. Returns the
// number of cascaded assignments for the audit trail.
func DeleteProject(project *models.Project) (int64, error) {
	var assignmentCount int64
	db.Model(&models.Assignment{}).Where("project_id = ?", project.ID).Count(&assignmentCount)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectChangeOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectBudget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.DepartmentStageConfig{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
	return assignmentCount, err
}

func projectCalendarYear(startDate string) int {
	if d, err := dateutil.ParseISO(startDate); err == nil {
		return d.Year()
	}
	return 0
}
