package capacity

import (
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"gorm.io/gorm"

	"github.com/teamcapacity/capacity-backend/apps/models"
)

// RefreshWeeklyTotals recomputes the cached per-department weekly hour totals
// from the assignments table. Returns the number of rows written.
func RefreshWeeklyTotals() (int, error) {
	type row struct {
		Department    string
		WeekStartDate string
		Hours         float64
	}
	var rows []row
	err := db.Model(&models.Assignment{}).
		Select("employees.department, assignments.week_start_date, SUM(assignments.hours) as hours").
		Joins("JOIN employees ON employees.id = assignments.employee_id").
		Group("employees.department, assignments.week_start_date").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.DepartmentWeeklyTotal{}).Error; err != nil {
			return err
		}
		totals := make([]models.DepartmentWeeklyTotal, 0, len(rows))
		for _, r := range rows {
			totals = append(totals, models.DepartmentWeeklyTotal{
				Department:    r.Department,
				WeekStartDate: r.WeekStartDate,
				TotalHours:    r.Hours,
			})
		}
		if len(totals) == 0 {
			return nil
		}
		return tx.CreateInBatches(&totals, 500).Error
	})
	if err != nil {
		return 0, err
	}

	log.Debug("Weekly totals refreshed: %d department-week rows", len(rows))
	return len(rows), nil
}
