package system

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/google/uuid"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/redis"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct {
}

func (c Controller) HealthHandler(request *evo.Request) any {
	return response.OK("ok")
}

func (c Controller) UptimeHandler(request *evo.Request) any {
	uptimeData := map[string]any{
		"uptime": int64(time.Since(StartupTime).Seconds()),
	}
	return response.OK(uptimeData)
}

// CatalogItem is one value/label pair of a fixed catalog
type CatalogItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GetDepartments returns the six planning departments
func (c Controller) GetDepartments(req *evo.Request) interface{} {
	items := make([]CatalogItem, 0, len(models.DepartmentCodes))
	for _, code := range models.DepartmentCodes {
		items = append(items, CatalogItem{Value: code, Label: models.DepartmentLabels[code]})
	}
	return response.List(items, len(items))
}

// GetFacilities returns the available facilities
func (c Controller) GetFacilities(req *evo.Request) interface{} {
	items := []CatalogItem{
		{Value: models.FacilityAL, Label: models.FacilityLabels[models.FacilityAL]},
		{Value: models.FacilityMI, Label: models.FacilityLabels[models.FacilityMI]},
		{Value: models.FacilityMX, Label: models.FacilityLabels[models.FacilityMX]},
	}
	return response.List(items, len(items))
}

// GetStages returns every known stage, optionally filtered by department
func (c Controller) GetStages(req *evo.Request) interface{} {
	department := req.Query("department").String()
	if department != "" && !models.IsValidDepartment(department) {
		return response.ErrInvalidDepartment.Response()
	}

	var stages []string
	if department != "" {
		stages = models.StagesForDepartment(department)
	} else {
		stages = models.AllStages()
	}

	items := make([]CatalogItem, 0, len(stages))
	for _, stage := range stages {
		items = append(items, CatalogItem{Value: stage, Label: models.StageLabels[stage]})
	}
	return response.List(items, len(items))
}

// GetSubcontractCompanies returns the known subcontract companies
func (c Controller) GetSubcontractCompanies(req *evo.Request) interface{} {
	return response.List(models.SubcontractCompanies, len(models.SubcontractCompanies))
}

func (c Controller) AdminMiddleware(request *evo.Request) error {
	if request.User().Anonymous() {
		return response.ErrForbidden
	}
	var user = request.User().Interface().(*auth.User)
	if user.Type != auth.UserTypeAdministrator {
		return response.ErrForbidden
	}
	return request.Next()
}

// ----- settings -----

// GetSettings returns all stored settings, optionally filtered by category
func (c Controller) GetSettings(request *evo.Request) any {
	category := request.Query("category").String()

	var (
		items []models.Setting
		err   error
	)
	if category != "" {
		items, err = models.GetSettingsByCategory(category)
	} else {
		items, err = models.GetAllSettings()
	}
	if err != nil {
		return response.HandleDBError(err, "settings")
	}

	return response.List(items, len(items))
}

type SettingsUpdateRequest struct {
	Settings map[string]string `json:"settings"`
}

// UpdateSettings bulk-updates settings from a key/value map
func (c Controller) UpdateSettings(request *evo.Request) any {
	var input SettingsUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}
	if len(input.Settings) == 0 {
		return response.BadRequest("No settings provided")
	}

	if err := models.BulkUpdateSettings(input.Settings); err != nil {
		return response.HandleDBError(err, "settings")
	}

	return response.Message("Settings updated")
}

// GetSetting returns one setting by key
func (c Controller) GetSetting(request *evo.Request) any {
	key := request.Param("key").String()
	setting, err := models.GetSetting(key)
	if err != nil {
		return response.NotFound("Setting not found")
	}
	return response.OK(setting)
}

type SettingUpdateRequest struct {
	Value    string `json:"value"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Label    string `json:"label"`
}

// SetSetting creates or updates one setting
func (c Controller) SetSetting(request *evo.Request) any {
	key := request.Param("key").String()

	var input SettingUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	if err := models.SetSetting(key, input.Value, input.Type, input.Category, input.Label); err != nil {
		return response.HandleDBError(err, "setting")
	}

	return response.Message("Setting saved")
}

// DeleteSetting removes one setting by key
func (c Controller) DeleteSetting(request *evo.Request) any {
	key := request.Param("key").String()
	if err := models.DeleteSetting(key); err != nil {
		return response.HandleDBError(err, "setting")
	}
	return response.Message("Setting deleted")
}

// ----- activity logs -----

// GetActivityLogs returns filtered, paginated activity logs
func (c Controller) GetActivityLogs(request *evo.Request) any {
	entityType := request.Query("entity_type").String()
	entityID := request.Query("entity_id").String()
	action := request.Query("action").String()
	limit := request.Query("limit").Int()
	offset := request.Query("offset").Int()

	var userID *uuid.UUID
	if raw := request.Query("user_id").String(); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest("Invalid user_id")
		}
		userID = &id
	}

	logs, total, err := models.GetActivityLogs(entityType, entityID, action, userID, limit, offset)
	if err != nil {
		return response.HandleDBError(err, "activity logs")
	}

	return response.OKWithMeta(logs, &response.Meta{
		Count:  len(logs),
		Total:  total,
		Offset: offset,
	})
}

// GetEntityActivityLogs returns the audit trail of a single entity
func (c Controller) GetEntityActivityLogs(request *evo.Request) any {
	entityType := request.Param("entity_type").String()
	entityID := request.Param("entity_id").String()
	limit := request.Query("limit").Int()

	logs, err := models.GetEntityActivityLogs(entityType, entityID, limit)
	if err != nil {
		return response.HandleDBError(err, "activity logs")
	}

	return response.List(logs, len(logs))
}

// RateLimitUpdateRequest is a partial update of one endpoint's rate limit
type RateLimitUpdateRequest struct {
	MaxRequests *int  `json:"max_requests"`
	WindowSecs  *int  `json:"window_seconds"`
	Enabled     *bool `json:"enabled"`
}

// GetRateLimits returns the per-endpoint rate limit configuration
func (c Controller) GetRateLimits(request *evo.Request) any {
	limits := redis.GetRateLimitSettings()
	return response.List(limits, len(limits))
}

// UpdateRateLimit updates the rate limit for a single endpoint key
func (c Controller) UpdateRateLimit(request *evo.Request) any {
	key := request.Param("endpoint").String()

	var known bool
	for _, endpoint := range redis.DefaultEndpoints {
		if endpoint.Key == key {
			known = true
			break
		}
	}
	if !known {
		return response.NotFound("Unknown rate limit endpoint")
	}

	var input RateLimitUpdateRequest
	if err := request.BodyParser(&input); err != nil {
		return response.ErrInvalidInput.Response()
	}

	current := redis.GetRateLimitConfig(key)
	maxRequests := current.MaxRequests
	windowSecs := int(current.Window.Seconds())
	enabled := current.Enabled

	if input.MaxRequests != nil {
		if *input.MaxRequests < 1 {
			return response.BadRequest("max_requests must be at least 1")
		}
		maxRequests = *input.MaxRequests
	}
	if input.WindowSecs != nil {
		if *input.WindowSecs < 1 {
			return response.BadRequest("window_seconds must be at least 1")
		}
		windowSecs = *input.WindowSecs
	}
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	if err := redis.SaveRateLimitSetting(key, maxRequests, windowSecs, enabled); err != nil {
		return response.HandleDBError(err, "rate limit setting")
	}

	return response.OKWithMessage(map[string]any{
		"key":            key,
		"max_requests":   maxRequests,
		"window_seconds": windowSecs,
		"enabled":        enabled,
	}, "Rate limit updated")
}
