package projects

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

// ListProjects returns projects with pagination and optional filters. Hidden
// projects are excluded unless a full-access user asks for them.
func (c Controller) ListProjects(request *evo.Request) any {
	query := db.Model(&models.Project{}).
		Preload("ProjectManager").
		Preload("DepartmentStages").
		Preload("Budgets")

	includeHidden := request.Query("include_hidden").String() == "true"
	if includeHidden && !auth.CanViewHiddenProjects(auth.RequestUser(request)) {
		return response.Forbidden("Hidden projects require full access")
	}
	if !includeHidden {
		query = query.Where("is_hidden = ?", false)
	}

	if facility := request.Query("facility").String(); facility != "" {
		if !models.IsValidFacility(facility) {
			return response.BadRequest("Unknown facility code")
		}
		query = query.Where("facility = ?", facility)
	}
	if client := request.Query("client").String(); client != "" {
		query = query.Where("client LIKE ?", "%"+client+"%")
	}
	if search := request.Query("search").String(); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if active := request.Query("active").String(); active == "true" {
		today := todayISO()
		query = query.Where("start_date <= ? AND end_date >= ?", today, today)
	}

	var projects []models.Project
	p, err := pagination.New(query.Order("start_date DESC, name"), request, &projects, pagination.Options{MaxSize: 100})
	if err != nil {
		return response.HandlePaginationError(err)
	}

	return response.OKWithMeta(projects, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// GetProject returns one project with its full relation graph.
func (c Controller) GetProject(request *evo.Request) any {
	projectID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		return response.ErrInvalidProjectID.Response()
	}

	var project models.Project
	err = db.Preload("ProjectManager").
		Preload("DepartmentStages").
		Preload("Budgets").
		Preload("ChangeOrders").
		Where("id = ?", projectID).
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.ErrProjectNotFound.Response()
		}
		return response.HandleDBError(err, "project")
	}

	return response.OK(project)
}

// CreateProject validates the payload and runs the creation pipeline.
func (c Controller) CreateProject(request *evo.Request) any {
	user := auth.RequestUser(request)
	if !auth.HasFullAccess(user) {
		return response.Forbidden("Only project managers can create projects")
	}

	var input ProjectCreateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if err := validate.Struct(input); err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeValidationError,
			"Project payload failed validation", 400, err.Error()).Response()
	}

	seen := map[string]bool{}
	for _, plan := range input.Departments {
		if seen[plan.Department] {
			return response.ErrDuplicateStage(plan.Department).Response()
		}
		seen[plan.Department] = true
	}

	project, err := CreateProject(input)
	if err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeInternalError,
			"Failed to create project", 500, err.Error()).Response()
	}

	models.LogProjectCreate(project.ID, userIDOf(user), map[string]any{
		"name":            project.Name,
		"client":          project.Client,
		"start_date":      project.StartDate,
		"end_date":        project.EndDate,
		"facility":        project.Facility,
		"number_of_weeks": project.NumberOfWeeks,
	}, request.IP())

	models.BroadcastWebhook(models.WebhookEventProjectCreated, map[string]any{
		"project_id": project.ID.String(),
		"name":       project.Name,
		"start_date": project.StartDate,
		"end_date":   project.EndDate,
	})

	return response.Created(project)
}

// UpdateProject applies partial updates; the end date is rederived when the
// schedule fields change.
func (c Controller) UpdateProject(request *evo.Request) any {
	user := auth.RequestUser(request)
	if !auth.HasFullAccess(user) {
		return response.Forbidden("Only project managers can edit projects")
	}

	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var input ProjectUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if err := validate.Struct(input); err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeValidationError,
			"Project payload failed validation", 400, err.Error()).Response()
	}

	oldValues, newValues, err := UpdateProject(project, input)
	if err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeInternalError,
			"Failed to update project", 500, err.Error()).Response()
	}

	if len(newValues) > 0 {
		models.LogProjectUpdate(project.ID, userIDOf(user), oldValues, newValues, request.IP())
		models.BroadcastWebhook(models.WebhookEventProjectUpdated, map[string]any{
			"project_id": project.ID.String(),
			"changes":    newValues,
		})
	}

	return response.OKWithMessage(project, "Project updated")
}

// DeleteProject removes a project and its assignments, budgets, stages and
// change orders.
func (c Controller) DeleteProject(request *evo.Request) any {
	user := auth.RequestUser(request)
	if !auth.HasFullAccess(user) {
		return response.Forbidden("Only project managers can delete projects")
	}

	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	cascaded, err := DeleteProject(project)
	if err != nil {
		return response.HandleDBError(err, "project")
	}

	models.LogProjectDelete(project.ID, userIDOf(user), map[string]any{
		"name":   project.Name,
		"client": project.Client,
	}, cascaded, request.IP())

	models.BroadcastWebhook(models.WebhookEventProjectDeleted, map[string]any{
		"project_id":           project.ID.String(),
		"name":                 project.Name,
		"cascaded_assignments": cascaded,
	})

	return response.Message("Project deleted")
}

// HideProject takes a project off the active boards without touching its
// assignments, budgets or history.
func (c Controller) HideProject(request *evo.Request) any {
	user := auth.RequestUser(request)
	if !auth.HasFullAccess(user) {
		return response.Forbidden("Only project managers can hide projects")
	}

	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}
	if project.IsHidden {
		return response.Message("Project is already hidden")
	}

	now := time.Now()
	project.IsHidden = true
	project.HiddenAt = &now
	if err := db.Save(project).Error; err != nil {
		return response.HandleDBError(err, "project")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityProject,
		EntityID:   project.ID.String(),
		Action:     models.ActionUpdate,
		UserID:     userIDOf(user),
		NewValues:  map[string]any{"is_hidden": true},
		IPAddress:  request.IP(),
	})

	return response.Message("Project hidden")
}

// UnhideProject restores a hidden project to the active boards.
func (c Controller) UnhideProject(request *evo.Request) any {
	user := auth.RequestUser(request)
	if !auth.HasFullAccess(user) {
		return response.Forbidden("Only project managers can unhide projects")
	}

	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}
	if !project.IsHidden {
		return response.Message("Project is not hidden")
	}

	project.IsHidden = false
	project.HiddenAt = nil
	if err := db.Save(project).Error; err != nil {
		return response.HandleDBError(err, "project")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityProject,
		EntityID:   project.ID.String(),
		Action:     models.ActionUpdate,
		UserID:     userIDOf(user),
		NewValues:  map[string]any{"is_hidden": false},
		IPAddress:  request.IP(),
	})

	return response.Message("Project restored")
}

// AddDepartmentPlan attaches a department stage window and budget to an
// existing project and distributes its hours.
func (c Controller) AddDepartmentPlan(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var plan DepartmentPlan
	if err := request.BodyParser(&plan); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if err := validate.Struct(plan); err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeValidationError,
			"Department plan failed validation", 400, err.Error()).Response()
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, plan.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var existing models.DepartmentStageConfig
	if err := db.Where("project_id = ? AND department = ?", project.ID, plan.Department).
		First(&existing).Error; err == nil {
		return response.ErrDuplicateStage(plan.Department).Response()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return createDepartmentPlan(tx, project, plan, projectCalendarYear(project.StartDate))
	})
	if err != nil {
		return response.HandleDBError(err, "department plan")
	}

	if err := distributeDepartmentBudget(project, plan); err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeInternalError,
			"Stage saved but hour distribution failed", 500, err.Error()).Response()
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityStageConfig,
		EntityID:   project.ID.String(),
		Action:     models.ActionCreate,
		UserID:     userIDOf(user),
		NewValues:  map[string]any{"department": plan.Department, "budget_hours": plan.BudgetHours},
		IPAddress:  request.IP(),
	})

	return response.Created(map[string]any{"project_id": project.ID, "department": plan.Department})
}

// UpdateBudgetHours changes a department's allocated hours without touching
// the already generated assignments.
func (c Controller) UpdateBudgetHours(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var input BudgetUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if err := validate.Struct(input); err != nil {
		return response.ErrInvalidDepartment.Response()
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, input.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var budget models.ProjectBudget
	err := db.Where("project_id = ? AND department = ?", project.ID, input.Department).
		First(&budget).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return response.HandleDBError(err, "budget")
		}
		budget = models.ProjectBudget{
			ProjectID:  project.ID,
			Department: input.Department,
		}
	}

	oldHours := budget.HoursAllocated
	budget.HoursAllocated = input.Hours
	if err := db.Save(&budget).Error; err != nil {
		return response.HandleDBError(err, "budget")
	}

	models.LogBudgetChange(project.ID, userIDOf(user), input.Department, oldHours, input.Hours, request.IP())
	models.BroadcastWebhook(models.WebhookEventBudgetChanged, map[string]any{
		"project_id": project.ID.String(),
		"department": input.Department,
		"old_hours":  oldHours,
		"new_hours":  input.Hours,
	})

	return response.OKWithMessage(budget, "Budget updated")
}

// ----- change orders -----

// ListChangeOrders returns a project's change orders.
func (c Controller) ListChangeOrders(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var orders []models.ProjectChangeOrder
	query := db.Where("project_id = ?", project.ID)
	if department := request.Query("department").String(); department != "" {
		query = query.Where("department = ?", department)
	}
	if err := query.Order("department, name").Find(&orders).Error; err != nil {
		return response.HandleDBError(err, "change orders")
	}

	return response.List(orders, len(orders))
}

// CreateChangeOrder adds a change order to a project department.
func (c Controller) CreateChangeOrder(request *evo.Request) any {
	project, errResp := findProject(request)
	if errResp != nil {
		return *errResp
	}

	var input ChangeOrderRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if err := validate.Struct(input); err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeValidationError,
			"Change order failed validation", 400, err.Error()).Response()
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, input.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	order := models.ProjectChangeOrder{
		ProjectID:   project.ID,
		Department:  input.Department,
		Name:        input.Name,
		HoursQuoted: input.HoursQuoted,
	}
	if err := db.Create(&order).Error; err != nil {
		return response.HandleDBError(err, "change order")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityChangeOrder,
		EntityID:   order.ID.String(),
		Action:     models.ActionCreate,
		UserID:     userIDOf(user),
		NewValues: map[string]any{
			"project_id":   project.ID.String(),
			"department":   input.Department,
			"name":         input.Name,
			"hours_quoted": input.HoursQuoted,
		},
		IPAddress: request.IP(),
	})

	return response.Created(order)
}

// DeleteChangeOrder removes a change order; assignments referencing it are
// detached first.
func (c Controller) DeleteChangeOrder(request *evo.Request) any {
	orderID, err := uuid.Parse(request.Param("order_id").String())
	if err != nil {
		return response.BadRequest("Invalid change order id")
	}

	var order models.ProjectChangeOrder
	if err := db.Where("id = ?", orderID).First(&order).Error; err != nil {
		return response.NotFound("Change order not found")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, order.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Assignment{}).
			Where("change_order_id = ?", order.ID).
			Update("change_order_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return response.HandleDBError(err, "change order")
	}

	return response.Message("Change order deleted")
}

// ----- helpers -----

func findProject(request *evo.Request) (*models.Project, *any) {
	projectID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		resp := any(response.ErrInvalidProjectID.Response())
		return nil, &resp
	}

	var project models.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			resp := any(response.ErrProjectNotFound.Response())
			return nil, &resp
		}
		resp := any(response.HandleDBError(err, "project"))
		return nil, &resp
	}
	return &project, nil
}

func userIDOf(user *auth.User) *uuid.UUID {
	if user == nil {
		return nil
	}
	id := user.UserID
	return &id
}
