package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcapacity/capacity-backend/apps/models"
	"github.com/teamcapacity/capacity-backend/apps/schedule"
)

func TestPlanFromStageUsesDepartmentOverrides(t *testing.T) {
	startDate := "2025-03-10"
	duration := 8
	stageName := "detail"
	stage := &models.DepartmentStageConfig{
		Department:          "HD",
		Stage:               &stageName,
		DepartmentStartDate: &startDate,
		DurationWeeks:       &duration,
	}

	plan := planFromStage(stage, 320)
	assert.Equal(t, "HD", plan.Department)
	assert.Equal(t, "2025-03-10", plan.StartDate)
	assert.Equal(t, 8, plan.DurationWeeks)
	assert.Equal(t, 320.0, plan.BudgetHours)
	require.NotNil(t, plan.Stage)
	assert.Equal(t, "detail", *plan.Stage)
}

func TestPlanFromStageFallsBackToProjectDefaults(t *testing.T) {
	stage := &models.DepartmentStageConfig{Department: "BUILD"}

	plan := planFromStage(stage, 100)
	assert.Equal(t, "BUILD", plan.Department)
	assert.Empty(t, plan.StartDate, "blank start date defers to the project start")
	assert.Zero(t, plan.DurationWeeks, "zero duration defers to the project length")
	assert.Nil(t, plan.Stage)
}

// Moving a project's start date must move the regenerated week span with it:
// a distribution rebuilt from the stored stage config lands entirely inside
// the new project window, not the old one.
func TestRegeneratedSpanFollowsMovedStartDate(t *testing.T) {
	stage := &models.DepartmentStageConfig{Department: "MFG", DurationWeeks: intPtr(4)}

	oldSpan, err := schedule.ComputeProjectWeekSpan("2025-01-06", 4)
	require.NoError(t, err)

	plan := planFromStage(stage, 160)
	newStart := "2025-04-07"
	newSpan, err := schedule.ComputeProjectWeekSpan(newStart, plan.DurationWeeks)
	require.NoError(t, err)

	require.Len(t, newSpan, 4)
	assert.Equal(t, newStart, newSpan[0])
	for _, week := range newSpan {
		assert.NotContains(t, oldSpan, week)
	}
}

func intPtr(v int) *int { return &v }
