package sessions

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/teamcapacity/capacity-backend/apps/auth"
	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/lib/response"
)

type Controller struct{}

type StartSessionRequest struct {
	SessionID  string         `json:"session_id"`
	TabID      string         `json:"tab_id,omitempty"`
	DeviceInfo map[string]any `json:"device_info,omitempty"`
}

type HeartbeatRequest struct {
	SessionID string `json:"session_id"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason,omitempty"` // logout, tab_close
}

const HeartbeatInterval = 30 * time.Second
const SessionTimeout = 5 * time.Minute

// MaxConcurrentSessions caps how many devices a user may be active on at
// once; the oldest session is pushed out when the cap is hit.
const MaxConcurrentSessions = 2

// getRealIP extracts the client IP, preferring proxy headers set by nginx.
func getRealIP(request *evo.Request) string {
	if realIP := request.Header("X-Real-IP"); realIP != "" {
		return realIP
	}
	if forwardedFor := request.Header("X-Forwarded-For"); forwardedFor != "" {
		if idx := strings.Index(forwardedFor, ","); idx > 0 {
			return strings.TrimSpace(forwardedFor[:idx])
		}
		return strings.TrimSpace(forwardedFor)
	}
	return request.IP()
}

// StartSession creates or resumes a browser session. If the user is already
// at the concurrent-device cap the stalest active session is terminated.
func (c Controller) StartSession(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req StartSessionRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if req.SessionID == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "session_id is required", http.StatusBadRequest))
	}

	now := time.Now()
	ip := getRealIP(request)
	userAgent := request.Header("User-Agent")

	var existing models.UserSession
	err := db.Where("user_id = ? AND session_id = ?", user.UserID, req.SessionID).First(&existing).Error
	if err == nil {
		existing.LastActivity = now
		existing.IPAddress = ip
		existing.UserAgent = userAgent
		if req.TabID != "" {
			existing.TabID = &req.TabID
		}
		db.Save(&existing)

		go updateDailyActivity(user.UserID, now)

		return response.OKWithMessage(map[string]any{
			"session_id": existing.ID,
		}, "session resumed")
	}

	evictOldestSessions(user.UserID, now)

	deviceInfoJSON, _ := json.Marshal(req.DeviceInfo)
	session := models.UserSession{
		UserID:       user.UserID,
		SessionID:    req.SessionID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		DeviceInfo:   datatypes.JSON(deviceInfoJSON),
		StartedAt:    now,
		LastActivity: now,
	}
	if req.TabID != "" {
		session.TabID = &req.TabID
	}

	if err := db.Create(&session).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	go updateDailyActivity(user.UserID, now)

	return response.OKWithMessage(map[string]any{
		"session_id": session.ID,
	}, "session started")
}

// evictOldestSessions terminates active sessions beyond the device cap,
// oldest heartbeat first.
func evictOldestSessions(userID uuid.UUID, now time.Time) {
	activeThreshold := now.Add(-SessionTimeout)

	var active []models.UserSession
	db.Where("user_id = ? AND last_activity >= ?", userID, activeThreshold).
		Order("last_activity ASC").
		Find(&active)

	if len(active) < MaxConcurrentSessions {
		return
	}

	inactiveTime := now.Add(-1 * time.Hour)
	for i := 0; i <= len(active)-MaxConcurrentSessions; i++ {
		db.Model(&models.UserSession{}).
			Where("id = ?", active[i].ID).
			Update("last_activity", inactiveTime)
		log.Debug("Evicted session %s of user %s (device cap)", active[i].ID, userID)
	}
}

// Heartbeat bumps the session's last activity timestamp.
func (c Controller) Heartbeat(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req HeartbeatRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if req.SessionID == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "session_id is required", http.StatusBadRequest))
	}

	now := time.Now()

	var session models.UserSession
	if err := db.Where("user_id = ? AND session_id = ?", user.UserID, req.SessionID).First(&session).Error; err != nil {
		return response.NewErrorWithDetails(response.ErrorCodeNotFound,
			"session not found", http.StatusNotFound, "SESSION_NOT_FOUND").Response()
	}

	session.LastActivity = now
	if err := db.Save(&session).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	go updateDailyActivity(user.UserID, now)

	return response.OK(map[string]any{
		"last_activity": now,
	})
}

// EndSession marks a session as ended by backdating its last activity past
// the liveness threshold.
func (c Controller) EndSession(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req EndSessionRequest
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	if req.SessionID == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "session_id is required", http.StatusBadRequest))
	}

	inactiveTime := time.Now().Add(-1 * time.Hour)
	result := db.Model(&models.UserSession{}).
		Where("user_id = ? AND session_id = ?", user.UserID, req.SessionID).
		Update("last_activity", inactiveTime)

	if result.RowsAffected == 0 {
		return response.Error(response.ErrNotFound)
	}

	return response.Message("session ended")
}

// GetMySessions returns the user's recent sessions.
func (c Controller) GetMySessions(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	var sessions []models.UserSession
	db.Where("user_id = ?", user.UserID).
		Order("started_at DESC").
		Limit(50).
		Find(&sessions)

	return response.List(sessions, len(sessions))
}

// GetActiveSessions returns sessions whose heartbeat is within the timeout.
func (c Controller) GetActiveSessions(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	activeThreshold := time.Now().Add(-SessionTimeout)

	var sessions []models.UserSession
	db.Where("user_id = ? AND last_activity >= ?", user.UserID, activeThreshold).
		Order("last_activity DESC").
		Find(&sessions)

	return response.List(sessions, len(sessions))
}

// TerminateSession ends one specific active session.
func (c Controller) TerminateSession(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	sessionID := request.Param("id").String()
	if sessionID == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "session id required", http.StatusBadRequest))
	}

	now := time.Now()
	activeThreshold := now.Add(-SessionTimeout)
	inactiveTime := now.Add(-1 * time.Hour)
	result := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND last_activity >= ?", sessionID, user.UserID, activeThreshold).
		Update("last_activity", inactiveTime)

	if result.RowsAffected == 0 {
		return response.Error(response.NewError(response.ErrorCodeNotFound, "session not found or already ended", http.StatusNotFound))
	}

	return response.Message("session terminated")
}

// TerminateAllOtherSessions ends every active session except the current one.
func (c Controller) TerminateAllOtherSessions(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	var req struct {
		CurrentSessionID string `json:"current_session_id"`
	}
	if err := request.BodyParser(&req); err != nil {
		return response.Error(response.ErrInvalidInput)
	}

	now := time.Now()
	activeThreshold := now.Add(-SessionTimeout)
	inactiveTime := now.Add(-1 * time.Hour)
	result := db.Model(&models.UserSession{}).
		Where("user_id = ? AND session_id != ? AND last_activity >= ?", user.UserID, req.CurrentSessionID, activeThreshold).
		Update("last_activity", inactiveTime)

	return response.OKWithMessage(map[string]any{
		"terminated_count": result.RowsAffected,
	}, "other sessions terminated")
}

// GetSessionHistory returns paginated session history with an optional date
// range filter.
func (c Controller) GetSessionHistory(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	page := request.Query("page").Int()
	if page < 1 {
		page = 1
	}
	limit := request.Query("limit").Int()
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := db.Model(&models.UserSession{}).Where("user_id = ?", user.UserID)

	if startDate := request.Query("start_date").String(); startDate != "" {
		if startTime, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("started_at >= ?", startTime)
		}
	}
	if endDate := request.Query("end_date").String(); endDate != "" {
		if endTime, err := time.Parse("2006-01-02", endDate); err == nil {
			endTime = endTime.Add(24*time.Hour - time.Second)
			query = query.Where("started_at <= ?", endTime)
		}
	}

	var total int64
	query.Count(&total)

	var sessions []models.UserSession
	query.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions)

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return response.OKWithMeta(sessions, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetDailyActivity returns per-day activity for a date range.
func (c Controller) GetDailyActivity(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	startDate := request.Query("start_date").String()
	endDate := request.Query("end_date").String()

	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}

	var activities []models.UserDailyActivity
	db.Where("user_id = ? AND activity_date BETWEEN ? AND ?", user.UserID, startDate, endDate).
		Order("activity_date DESC").
		Find(&activities)

	return response.List(activities, len(activities))
}

// GetActivitySummary aggregates active time over a period.
func (c Controller) GetActivitySummary(request *evo.Request) any {
	user := auth.RequestUser(request)
	if user == nil {
		return response.Error(response.ErrUnauthorized)
	}

	period := request.Query("period").String()
	if period == "" {
		period = "month"
	}

	var startDate time.Time
	now := time.Now()

	switch period {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	default:
		startDate = now.AddDate(0, -1, 0)
	}

	var totalSeconds int64
	var totalDays int64
	db.Model(&models.UserDailyActivity{}).
		Where("user_id = ? AND activity_date >= ?", user.UserID, startDate.Format("2006-01-02")).
		Select("COALESCE(SUM(total_active_seconds), 0) as total_seconds, COUNT(*) as total_days").
		Row().Scan(&totalSeconds, &totalDays)

	avgSecondsPerDay := float64(0)
	if totalDays > 0 {
		avgSecondsPerDay = float64(totalSeconds) / float64(totalDays)
	}

	return response.OK(map[string]any{
		"total_hours":           float64(totalSeconds) / 3600,
		"total_days":            totalDays,
		"average_hours_per_day": avgSecondsPerDay / 3600,
		"period":                period,
		"start_date":            startDate.Format("2006-01-02"),
		"end_date":              now.Format("2006-01-02"),
	})
}

// updateDailyActivity accumulates active seconds for the user's current day.
func updateDailyActivity(userID uuid.UUID, activityTime time.Time) {
	dateStr := activityTime.Format("2006-01-02")

	var activity models.UserDailyActivity
	err := db.Where("user_id = ? AND activity_date = ?", userID, dateStr).First(&activity).Error

	if err != nil {
		activity = models.UserDailyActivity{
			UserID:             userID,
			ActivityDate:       dateStr,
			TotalActiveSeconds: int(HeartbeatInterval.Seconds()),
			FirstActivity:      activityTime,
			LastActivity:       activityTime,
			SessionCount:       1,
			ActivePeriods:      datatypes.JSON("[]"),
		}
		if createErr := db.Create(&activity).Error; createErr != nil {
			log.Error("Failed to create daily activity: %v", createErr)
		}
		return
	}

	timeSinceLast := activityTime.Sub(activity.LastActivity)
	additionalSeconds := int(HeartbeatInterval.Seconds())

	// Duplicate heartbeats within a second are ignored.
	if timeSinceLast.Seconds() < 1 {
		return
	}

	// Cap at the heartbeat interval to avoid huge jumps after inactivity.
	if timeSinceLast < HeartbeatInterval*2 {
		additionalSeconds = int(timeSinceLast.Seconds())
	}

	updateResult := db.Model(&models.UserDailyActivity{}).
		Where("id = ?", activity.ID).
		Updates(map[string]any{
			"total_active_seconds": activity.TotalActiveSeconds + additionalSeconds,
			"last_activity":        activityTime,
		})

	if updateResult.Error != nil {
		log.Error("Failed to update daily activity: %v", updateResult.Error)
	}
}
