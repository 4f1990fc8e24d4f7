package capacity

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/dateutil"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

type ScioCapacityRequest struct {
	Department    string  `json:"department"`
	WeekStartDate string  `json:"week_start_date"`
	Capacity      float64 `json:"capacity"`
}

type SubcontractCapacityRequest struct {
	Company       string `json:"company"`
	WeekStartDate string `json:"week_start_date"`
	Capacity      int    `json:"capacity"`
}

type PrgExternalCapacityRequest struct {
	TeamName      string `json:"team_name"`
	WeekStartDate string `json:"week_start_date"`
	Capacity      int    `json:"capacity"`
}

// GetScioCapacity lists in-house team capacity rows, optionally filtered by
// department and week range.
func (c Controller) GetScioCapacity(request *evo.Request) any {
	query := db.Model(&models.ScioTeamCapacity{})

	if department := request.Query("department").String(); department != "" {
		if !models.IsValidDepartment(department) {
			return response.ErrInvalidDepartment.Response()
		}
		query = query.Where("department = ?", department)
	}
	if from := request.Query("from").String(); from != "" {
		query = query.Where("week_start_date >= ?", from)
	}
	if to := request.Query("to").String(); to != "" {
		query = query.Where("week_start_date <= ?", to)
	}

	var rows []models.ScioTeamCapacity
	if err := query.Order("department, week_start_date").Find(&rows).Error; err != nil {
		return response.HandleDBError(err, "team capacity")
	}
	return response.List(rows, len(rows))
}

// UpsertScioCapacity creates or updates one department-week capacity value.
func (c Controller) UpsertScioCapacity(request *evo.Request) any {
	var input ScioCapacityRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if !models.IsValidDepartment(input.Department) {
		return response.ErrInvalidDepartment.Response()
	}
	week, err := normalizeWeek(input.WeekStartDate)
	if err != nil {
		return response.ErrInvalidDate.Response()
	}
	if input.Capacity < 0 {
		return response.BadRequest("Capacity cannot be negative")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, input.Department) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var row models.ScioTeamCapacity
	err = db.Where("department = ? AND week_start_date = ?", input.Department, week).
		First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return response.HandleDBError(err, "team capacity")
		}
		row = models.ScioTeamCapacity{
			Department:    input.Department,
			WeekStartDate: week,
		}
	}

	row.Capacity = input.Capacity
	if err := db.Save(&row).Error; err != nil {
		return response.HandleDBError(err, "team capacity")
	}

	logCapacityChange(request, user, "scio", map[string]any{
		"department": input.Department,
		"week":       week,
		"capacity":   input.Capacity,
	})

	return response.OKWithMessage(row, "Capacity saved")
}

// GetSubcontractCapacity lists subcontracted headcount rows.
func (c Controller) GetSubcontractCapacity(request *evo.Request) any {
	query := db.Model(&models.SubcontractedTeamCapacity{})

	if company := request.Query("company").String(); company != "" {
		query = query.Where("company = ?", company)
	}
	if from := request.Query("from").String(); from != "" {
		query = query.Where("week_start_date >= ?", from)
	}
	if to := request.Query("to").String(); to != "" {
		query = query.Where("week_start_date <= ?", to)
	}

	var rows []models.SubcontractedTeamCapacity
	if err := query.Order("company, week_start_date").Find(&rows).Error; err != nil {
		return response.HandleDBError(err, "subcontract capacity")
	}
	return response.List(rows, len(rows))
}

// UpsertSubcontractCapacity creates or updates one company-week headcount.
// Subcontract capacity belongs to the BUILD department.
func (c Controller) UpsertSubcontractCapacity(request *evo.Request) any {
	var input SubcontractCapacityRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.Company == "" {
		return response.BadRequest("Company is required")
	}
	week, err := normalizeWeek(input.WeekStartDate)
	if err != nil {
		return response.ErrInvalidDate.Response()
	}
	if input.Capacity < 0 {
		return response.BadRequest("Capacity cannot be negative")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, models.DepartmentBUILD) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var row models.SubcontractedTeamCapacity
	err = db.Where("company = ? AND week_start_date = ?", input.Company, week).
		First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return response.HandleDBError(err, "subcontract capacity")
		}
		row = models.SubcontractedTeamCapacity{
			Company:       input.Company,
			WeekStartDate: week,
		}
	}

	row.Capacity = input.Capacity
	if err := db.Save(&row).Error; err != nil {
		return response.HandleDBError(err, "subcontract capacity")
	}

	logCapacityChange(request, user, "subcontract", map[string]any{
		"company":  input.Company,
		"week":     week,
		"capacity": input.Capacity,
	})

	return response.OKWithMessage(row, "Capacity saved")
}

// GetPrgExternalCapacity lists external PRG team headcount rows.
func (c Controller) GetPrgExternalCapacity(request *evo.Request) any {
	query := db.Model(&models.PrgExternalTeamCapacity{})

	if team := request.Query("team_name").String(); team != "" {
		query = query.Where("team_name = ?", team)
	}
	if from := request.Query("from").String(); from != "" {
		query = query.Where("week_start_date >= ?", from)
	}
	if to := request.Query("to").String(); to != "" {
		query = query.Where("week_start_date <= ?", to)
	}

	var rows []models.PrgExternalTeamCapacity
	if err := query.Order("team_name, week_start_date").Find(&rows).Error; err != nil {
		return response.HandleDBError(err, "external capacity")
	}
	return response.List(rows, len(rows))
}

// UpsertPrgExternalCapacity creates or updates one team-week headcount.
// External PRG capacity belongs to the PRG department.
func (c Controller) UpsertPrgExternalCapacity(request *evo.Request) any {
	var input PrgExternalCapacityRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if input.TeamName == "" {
		return response.BadRequest("Team name is required")
	}
	week, err := normalizeWeek(input.WeekStartDate)
	if err != nil {
		return response.ErrInvalidDate.Response()
	}
	if input.Capacity < 0 {
		return response.BadRequest("Capacity cannot be negative")
	}

	user := auth.RequestUser(request)
	if !auth.CanEditDepartment(user, models.DepartmentPRG) {
		return response.ErrDepartmentReadOnly.Response()
	}

	var row models.PrgExternalTeamCapacity
	err = db.Where("team_name = ? AND week_start_date = ?", input.TeamName, week).
		First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return response.HandleDBError(err, "external capacity")
		}
		row = models.PrgExternalTeamCapacity{
			TeamName:      input.TeamName,
			WeekStartDate: week,
		}
	}

	row.Capacity = input.Capacity
	if err := db.Save(&row).Error; err != nil {
		return response.HandleDBError(err, "external capacity")
	}

	logCapacityChange(request, user, "prg_external", map[string]any{
		"team_name": input.TeamName,
		"week":      week,
		"capacity":  input.Capacity,
	})

	return response.OKWithMessage(row, "Capacity saved")
}

// GetWeeklyTotals reads the cached per-department weekly hour totals.
func (c Controller) GetWeeklyTotals(request *evo.Request) any {
	query := db.Model(&models.DepartmentWeeklyTotal{})

	if department := request.Query("department").String(); department != "" {
		if !models.IsValidDepartment(department) {
			return response.ErrInvalidDepartment.Response()
		}
		query = query.Where("department = ?", department)
	}
	if from := request.Query("from").String(); from != "" {
		query = query.Where("week_start_date >= ?", from)
	}
	if to := request.Query("to").String(); to != "" {
		query = query.Where("week_start_date <= ?", to)
	}

	var totals []models.DepartmentWeeklyTotal
	if err := query.Order("department, week_start_date").Find(&totals).Error; err != nil {
		return response.HandleDBError(err, "weekly totals")
	}
	return response.List(totals, len(totals))
}

// RefreshTotals recomputes the weekly totals cache on demand.
func (c Controller) RefreshTotals(request *evo.Request) any {
	count, err := RefreshWeeklyTotals()
	if err != nil {
		return response.HandleDBError(err, "weekly totals")
	}
	return response.OKWithMessage(map[string]any{"rows": count}, "Weekly totals refreshed")
}

// normalizeWeek validates a date and snaps it to its Monday.
func normalizeWeek(raw string) (string, error) {
	parsed, err := dateutil.ParseISO(raw)
	if err != nil {
		return "", err
	}
	return dateutil.FormatISO(dateutil.MondayOf(parsed)), nil
}

func logCapacityChange(request *evo.Request, user *auth.User, kind string, values map[string]any) {
	entry := models.ActivityLogEntry{
		EntityType: models.EntityCapacity,
		EntityID:   kind,
		Action:     models.ActionUpdate,
		NewValues:  values,
		IPAddress:  request.IP(),
	}
	if user != nil {
		uid := user.UserID
		entry.UserID = &uid
	}
	models.LogActivity(entry)
}
