package assignments

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/schedule"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

type AssignmentRequest struct {
	EmployeeID    string   `json:"employee_id"`
	ProjectID     string   `json:"project_id"`
	WeekStartDate string   `json:"week_start_date"`
	Hours         float64  `json:"hours"`
	ScioHours     *float64 `json:"scio_hours"`
	ExternalHours *float64 `json:"external_hours"`
	Stage         *string  `json:"stage"`
	ChangeOrderID *string  `json:"change_order_id"`
	Comment       string   `json:"comment"`
}

type AssignmentUpdateRequest struct {
	Hours         *float64 `json:"hours"`
	ScioHours     *float64 `json:"scio_hours"`
	ExternalHours *float64 `json:"external_hours"`
	Stage         *string  `json:"stage"`
	ChangeOrderID *string  `json:"change_order_id"`
	Comment       *string  `json:"comment"`
}

type BulkDistributeRequest struct {
	ProjectID     string   `json:"project_id"`
	Department    string   `json:"department"`
	Budget        float64  `json:"budget"`
	StartDate     string   `json:"start_date"`
	NumberOfWeeks int      `json:"number_of_weeks"`
	Stage         *string  `json:"stage"`
	EmployeeIDs   []string `json:"employee_ids"`
}

// ListAssignments returns assignments filtered by week, project, employee or
// department. Either week_start_date or department must be present to keep
// result sets bounded.
func (c Controller) ListAssignments(request *evo.Request) any {
	week := request.Query("week_start_date").String()
	department := request.Query("department").String()
	projectID := request.Query("project_id").String()
	employeeID := request.Query("employee_id").String()

	if week == "" && department == "" && projectID == "" && employeeID == "" {
		return response.ErrMissingWeekOrDepartment().Response()
	}

	query := db.Model(&models.Assignment{}).
		Preload("Employee").
		Preload("Project").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Joins("JOIN projects ON projects.id = assignments.project_id")

	includeHidden := request.Query("include_hidden").String() == "true"
	if includeHidden && !auth.CanViewHiddenProjects(auth.RequestUser(request)) {
		return response.Forbidden("Hidden projects require full access")
	}
	if !includeHidden {
		query = query.Where("projects.is_hidden = ?", false)
	}

	if week != "" {
		if _, err := dateutil.ParseISO(week); err != nil {
			return response.ErrInvalidDate.Response()
		}
		query = query.Where("assignments.week_start_date = ?", week)
	}
	if department != "" {
		if !models.IsValidDepartment(department) {
			return response.ErrInvalidDepartment.Response()
		}
		query = query.Where("employees.department = ?", department)
	}
	if projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			return response.ErrInvalidProjectID.Response()
		}
		query = query.Where("assignments.project_id = ?", id)
	}
	if employeeID != "" {
		id, err := uuid.Parse(employeeID)
		if err != nil {
			return response.ErrInvalidEmployeeID.Response()
		}
		query = query.Where("assignments.employee_id = ?", id)
	}

	var assignments []models.Assignment
	p, err := pagination.New(query.Order("assignments.week_start_date, employees.name"), request,
		&assignments, pagination.Options{MaxSize: 500})
	if err != nil {
		return response.HandlePaginationError(err)
	}

	return response.OKWithMeta(assignments, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// CreateAssignment adds a single assignment cell.
func (c Controller) CreateAssignment(request *evo.Request) any {
	var input AssignmentRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	employeeID, err := uuid.Parse(input.EmployeeID)
	if err != nil {
		return response.ErrInvalidEmployeeID.Response()
	}
	projectID, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return response.ErrInvalidProjectID.Response()
	}
	if _, err := dateutil.ParseISO(input.WeekStartDate); err != nil {
		return response.ErrInvalidDate.Response()
	}
	if input.Hours < 0 {
		return response.BadRequest("Hours cannot be negative")
	}

	var employee models.Employee
	if err := db.Where("id = ?", employeeID).First(&employee).Error; err != nil {
		return response.ErrEmployeeNotFound.Response()
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, employee.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	assignment := models.Assignment{
		EmployeeID:    employeeID,
		ProjectID:     projectID,
		WeekStartDate: input.WeekStartDate,
		Hours:         input.Hours,
		ScioHours:     input.ScioHours,
		ExternalHours: input.ExternalHours,
		Stage:         input.Stage,
		Comment:       input.Comment,
	}

	if input.ChangeOrderID != nil && *input.ChangeOrderID != "" {
		changeOrderID, err := uuid.Parse(*input.ChangeOrderID)
		if err != nil {
			return response.BadRequest("Invalid change order id")
		}
		assignment.ChangeOrderID = &changeOrderID
	}

	if err := db.Create(&assignment).Error; err != nil {
		return response.Error(response.ErrCreateAssignments())
	}

	return response.Created(assignment)
}

// UpdateAssignment edits one assignment cell.
func (c Controller) UpdateAssignment(request *evo.Request) any {
	assignment, employee, errResp := findAssignment(request)
	if errResp != nil {
		return *errResp
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, employee.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var input AssignmentUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.Hours != nil {
		if *input.Hours < 0 {
			return response.BadRequest("Hours cannot be negative")
		}
		assignment.Hours = *input.Hours
	}
	if input.ScioHours != nil {
		assignment.ScioHours = input.ScioHours
	}
	if input.ExternalHours != nil {
		assignment.ExternalHours = input.ExternalHours
	}
	if input.Stage != nil {
		assignment.Stage = input.Stage
	}
	if input.Comment != nil {
		assignment.Comment = *input.Comment
	}
	if input.ChangeOrderID != nil {
		if *input.ChangeOrderID == "" {
			assignment.ChangeOrderID = nil
		} else {
			changeOrderID, err := uuid.Parse(*input.ChangeOrderID)
			if err != nil {
				return response.BadRequest("Invalid change order id")
			}
			assignment.ChangeOrderID = &changeOrderID
		}
	}

	if err := db.Save(assignment).Error; err != nil {
		return response.HandleDBError(err, "assignment")
	}

	models.BroadcastWebhook(models.WebhookEventAssignmentUpdated, map[string]any{
		"assignment_id": assignment.ID.String(),
		"employee_id":   assignment.EmployeeID.String(),
		"project_id":    assignment.ProjectID.String(),
		"week":          assignment.WeekStartDate,
		"hours":         assignment.Hours,
	})

	return response.OKWithMessage(assignment, "Assignment updated")
}

// DeleteAssignment removes one assignment cell.
func (c Controller) DeleteAssignment(request *evo.Request) any {
	assignment, employee, errResp := findAssignment(request)
	if errResp != nil {
		return *errResp
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, employee.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	if err := db.Delete(assignment).Error; err != nil {
		return response.HandleDBError(err, "assignment")
	}

	models.BroadcastWebhook(models.WebhookEventAssignmentDeleted, map[string]any{
		"assignment_id": assignment.ID.String(),
		"employee_id":   assignment.EmployeeID.String(),
		"project_id":    assignment.ProjectID.String(),
		"week":          assignment.WeekStartDate,
	})

	return response.Message("Assignment deleted")
}

// BulkDistribute splits a department budget across employees and weeks and
// persists the resulting assignments in one shot.
func (c Controller) BulkDistribute(request *evo.Request) any {
	var input BulkDistributeRequest
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
	if input.Budget <= 0 {
		return response.BadRequest("budget must be positive")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, input.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var project models.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		return response.ErrProjectNotFound.Response()
	}

	startDate := input.StartDate
	if startDate == "" {
		startDate = project.StartDate
	}

	span, err := schedule.ComputeProjectWeekSpan(startDate, input.NumberOfWeeks)
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
	if len(employeeIDs) == 0 {
		return response.BadRequest("No employees available for distribution")
	}

	drafts := schedule.DistributeHours(input.Budget, employeeIDs, projectID, span)
	if len(drafts) == 0 {
		return response.OKWithMessage([]models.Assignment{},
			"Budget too small to produce any non-zero weekly cells")
	}

	assignments := make([]models.Assignment, 0, len(drafts))
	var total float64
	for _, draft := range drafts {
		assignments = append(assignments, models.Assignment{
			EmployeeID:    draft.EmployeeID,
			ProjectID:     draft.ProjectID,
			WeekStartDate: draft.WeekStartDate,
			Hours:         draft.Hours,
			Stage:         input.Stage,
		})
		total += draft.Hours
	}

	if err := db.CreateInBatches(&assignments, 500).Error; err != nil {
		return response.Error(response.ErrCreateAssignments())
	}

	models.LogAssignmentBulkCreate(projectID, userIDOf(user), input.Department,
		len(assignments), total, request.IP())
	models.BroadcastWebhook(models.WebhookEventAssignmentsCreated, map[string]any{
		"project_id":  projectID.String(),
		"department":  input.Department,
		"assignments": len(assignments),
		"total_hours": total,
	})

	return response.OKWithMeta(assignments, &response.Meta{
		Count: len(assignments),
		Extra: map[string]interface{}{"total_hours": total},
	})
}

func findAssignment(request *evo.Request) (*models.Assignment, *models.Employee, *any) {
	assignmentID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		resp := any(response.BadRequest("Invalid assignment id"))
		return nil, nil, &resp
	}

	var assignment models.Assignment
	if err := db.Where("id = ?", assignmentID).First(&assignment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			resp := any(response.ErrAssignmentNotFound.Response())
			return nil, nil, &resp
		}
		resp := any(response.HandleDBError(err, "assignment"))
		return nil, nil, &resp
	}

	var employee models.Employee
	if err := db.Where("id = ?", assignment.EmployeeID).First(&employee).Error; err != nil {
		resp := any(response.ErrEmployeeNotFound.Response())
		return nil, nil, &resp
	}

	return &assignment, &employee, nil
}

func userIDOf(user *auth.User) *uuid.UUID {
	if user == nil {
		return nil
	}
	id := user.UserID
	return &id
}
