package employees

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

type EmployeeRequest struct {
	Name                    string  `json:"name"`
	Role                    string  `json:"role"`
	Department              string  `json:"department"`
	Capacity                float64 `json:"capacity"`
	IsActive                *bool   `json:"is_active"`
	IsSubcontractedMaterial bool    `json:"is_subcontracted_material"`
	SubcontractCompany      *string `json:"subcontract_company"`
}

// ListEmployees returns employees with pagination and optional filters.
func (c Controller) ListEmployees(request *evo.Request) any {
	query := db.Model(&models.Employee{})

	if department := request.Query("department").String(); department != "" {
		if !models.IsValidDepartment(department) {
			return response.ErrInvalidDepartment.Response()
		}
		query = query.Where("department = ?", department)
	}
	if request.Query("active").String() == "true" {
		query = query.Where("is_active = ?", true)
	}
	if search := request.Query("search").String(); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var employees []models.Employee
	p, err := pagination.New(query.Order("department, name"), request, &employees, pagination.Options{MaxSize: 200})
	if err != nil {
		return response.HandlePaginationError(err)
	}

	return response.OKWithMeta(employees, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// GetEmployee returns one employee.
func (c Controller) GetEmployee(request *evo.Request) any {
	employee, errResp := findEmployee(request)
	if errResp != nil {
		return *errResp
	}
	return response.OK(employee)
}

// CreateEmployee adds an employee to a department the caller may edit.
func (c Controller) CreateEmployee(request *evo.Request) any {
	var input EmployeeRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.Name == "" {
		return response.BadRequest("Name is required")
	}
	if !models.IsValidDepartment(input.Department) {
		return response.ErrInvalidDepartment.Response()
	}
	if input.Capacity < 0 {
		return response.BadRequest("Capacity cannot be negative")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, input.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	employee := models.Employee{
		Name:                    input.Name,
		Role:                    input.Role,
		Department:              input.Department,
		Capacity:                input.Capacity,
		IsActive:                true,
		IsSubcontractedMaterial: input.IsSubcontractedMaterial,
		SubcontractCompany:      input.SubcontractCompany,
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := db.Create(&employee).Error; err != nil {
		return response.HandleDBError(err, "employee")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityEmployee,
		EntityID:   employee.ID.String(),
		Action:     models.ActionCreate,
		UserID:     userIDOf(user),
		NewValues:  map[string]any{"name": employee.Name, "department": employee.Department},
		IPAddress:  request.IP(),
	})
	models.BroadcastWebhook(models.WebhookEventEmployeeCreated, map[string]any{
		"employee_id": employee.ID.String(),
		"name":        employee.Name,
		"department":  employee.Department,
	})

	return response.Created(employee)
}

// UpdateEmployee modifies an employee. Moving between departments requires
// edit rights on both sides.
func (c Controller) UpdateEmployee(request *evo.Request) any {
	employee, errResp := findEmployee(request)
	if errResp != nil {
		return *errResp
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, employee.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var input EmployeeRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	oldValues := map[string]any{
		"name":       employee.Name,
		"department": employee.Department,
		"capacity":   employee.Capacity,
		"is_active":  employee.IsActive,
	}

	if input.Name != "" {
		employee.Name = input.Name
	}
	if input.Role != "" {
		employee.Role = input.Role
	}
	if input.Department != "" && input.Department != employee.Department {
		if !models.IsValidDepartment(input.Department) {
			return response.ErrInvalidDepartment.Response()
		}
		if !auth.CanEditDepartment(user, input.Department) {
			return response.ErrDepartmentReadOnly.Response()
		}
		employee.Department = input.Department
	}
	if input.Capacity > 0 {
		employee.Capacity = input.Capacity
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}
	if input.SubcontractCompany != nil {
		employee.SubcontractCompany = input.SubcontractCompany
	}

	if err := db.Save(employee).Error; err != nil {
		return response.HandleDBError(err, "employee")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityEmployee,
		EntityID:   employee.ID.String(),
		Action:     models.ActionUpdate,
		UserID:     userIDOf(user),
		OldValues:  oldValues,
		NewValues: map[string]any{
			"name":       employee.Name,
			"department": employee.Department,
			"capacity":   employee.Capacity,
			"is_active":  employee.IsActive,
		},
		IPAddress: request.IP(),
	})
	models.BroadcastWebhook(models.WebhookEventEmployeeUpdated, map[string]any{
		"employee_id": employee.ID.String(),
		"department":  employee.Department,
	})

	return response.OKWithMessage(employee, "Employee updated")
}

// DeleteEmployee deactivates an employee when they still have assignments,
// otherwise removes the row.
func (c Controller) DeleteEmployee(request *evo.Request) any {
	employee, errResp := findEmployee(request)
	if errResp != nil {
		return *errResp
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, employee.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var assignmentCount int64
	db.Model(&models.Assignment{}).Where("employee_id = ?", employee.ID).Count(&assignmentCount)

	if assignmentCount > 0 {
		employee.IsActive = false
		if err := db.Save(employee).Error; err != nil {
			return response.HandleDBError(err, "employee")
		}
		return response.OKWithMessage(employee,
			"Employee has assignments and was deactivated instead of deleted")
	}

	if err := db.Delete(employee).Error; err != nil {
		return response.HandleDBError(err, "employee")
	}

	models.LogActivity(models.ActivityLogEntry{
		EntityType: models.EntityEmployee,
		EntityID:   employee.ID.String(),
		Action:     models.ActionDelete,
		UserID:     userIDOf(user),
		OldValues:  map[string]any{"name": employee.Name, "department": employee.Department},
		IPAddress:  request.IP(),
	})

	return response.Message("Employee deleted")
}

// ByDepartment returns the active employees of one department.
func (c Controller) ByDepartment(request *evo.Request) any {
	department := request.Param("department").String()
	if !models.IsValidDepartment(department) {
		return response.ErrInvalidDepartment.Response()
	}

	var employees []models.Employee
	if err := db.Where("department = ? AND is_active = ?", department, true).
		Order("name").Find(&employees).Error; err != nil {
		return response.HandleDBError(err, "employees")
	}

	return response.List(employees, len(employees))
}

// CapacitySummary aggregates nominal weekly capacity per department.
func (c Controller) CapacitySummary(request *evo.Request) any {
	type row struct {
		Department string  `json:"department"`
		Employees  int64   `json:"employees"`
		Capacity   float64 `json:"capacity"`
	}
	var rows []row
	err := db.Model(&models.Employee{}).
		Select("department, COUNT(*) as employees, SUM(capacity) as capacity").
		Where("is_active = ?", true).
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return response.HandleDBError(err, "capacity summary")
	}

	return response.List(rows, len(rows))
}

// WorkloadWeek is one week of an employee's workload report.
type WorkloadWeek struct {
	WeekStartDate string  `json:"week_start_date"`
	Hours         float64 `json:"hours"`
	Capacity      float64 `json:"capacity"`
	UtilizationPct float64 `json:"utilization_pct"`
}

// Workload reports one employee's scheduled hours against capacity for the
// next eight weeks starting from the current week's Monday.
func (c Controller) Workload(request *evo.Request) any {
	employee, errResp := findEmployee(request)
	if errResp != nil {
		return *errResp
	}

	const horizon = 8
	start := dateutil.CurrentWeekStart()

	weeks := make([]string, horizon)
	for i := 0; i < horizon; i++ {
		weeks[i] = dateutil.FormatISO(dateutil.AddWeeks(start, i))
	}

	type row struct {
		WeekStartDate string
		Hours         float64
	}
	var rows []row
	err := db.Model(&models.Assignment{}).
		Select("week_start_date, SUM(hours) as hours").
		Where("employee_id = ? AND week_start_date IN ?", employee.ID, weeks).
		Group("week_start_date").
		Scan(&rows).Error
	if err != nil {
		return response.HandleDBError(err, "workload")
	}

	hoursByWeek := map[string]float64{}
	for _, r := range rows {
		hoursByWeek[r.WeekStartDate] = r.Hours
	}

	report := make([]WorkloadWeek, 0, horizon)
	for _, week := range weeks {
		entry := WorkloadWeek{
			WeekStartDate: week,
			Hours:         hoursByWeek[week],
			Capacity:      employee.Capacity,
		}
		if employee.Capacity > 0 {
			entry.UtilizationPct = entry.Hours / employee.Capacity * 100
		}
		report = append(report, entry)
	}

	return response.OK(map[string]any{
		"employee_id": employee.ID,
		"name":        employee.Name,
		"department":  employee.Department,
		"weeks":       report,
	})
}

func findEmployee(request *evo.Request) (*models.Employee, *any) {
	employeeID, err := uuid.Parse(request.Param("id").String())
	if err != nil {
		resp := any(response.ErrInvalidEmployeeID.Response())
		return nil, &resp
	}

	var employee models.Employee
	if err := db.Where("id = ?", employeeID).First(&employee).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			resp := any(response.ErrEmployeeNotFound.Response())
			return nil, &resp
		}
		resp := any(response.HandleDBError(err, "employee"))
		return nil, &resp
	}
	return &employee, nil
}

func userIDOf(user *auth.User) *uuid.UUID {
	if user == nil {
		return nil
	}
	id := user.UserID
	return &id
}
