package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidDepartment(t *testing.T) {
	for _, code := range DepartmentCodes {
		assert.True(t, IsValidDepartment(code))
	}
	assert.False(t, IsValidDepartment("SALES"))
	assert.False(t, IsValidDepartment(""))
	assert.False(t, IsValidDepartment("pm"), "department codes are case sensitive")
}

func TestIsValidFacility(t *testing.T) {
	assert.True(t, IsValidFacility(FacilityAL))
	assert.True(t, IsValidFacility(FacilityMI))
	assert.True(t, IsValidFacility(FacilityMX))
	assert.False(t, IsValidFacility("DE"))
}

func TestStagesForDepartment(t *testing.T) {
	// PM and MFG track no stages of their own
	assert.Empty(t, StagesForDepartment(DepartmentPM))
	assert.Empty(t, StagesForDepartment(DepartmentMFG))

	assert.Contains(t, StagesForDepartment(DepartmentHD), StageControlsDesign)
	assert.Contains(t, StagesForDepartment(DepartmentMED), StageDetailDesign)
	assert.Contains(t, StagesForDepartment(DepartmentBUILD), StageCommissioning)
	assert.Contains(t, StagesForDepartment(DepartmentPRG), StageOnline)

	// Every per-department stage appears in the full catalog
	all := AllStages()
	for dept, stages := range DepartmentStages {
		for _, stage := range stages {
			assert.Contains(t, all, stage, "stage %s of %s missing from AllStages", stage, dept)
			assert.NotEmpty(t, StageLabels[stage], "stage %s has no label", stage)
		}
	}
}

func TestWebhookIsSubscribedTo(t *testing.T) {
	w := &Webhook{Enabled: true, EventProjectCreated: true}

	assert.True(t, w.IsSubscribedTo(WebhookEventProjectCreated))
	assert.False(t, w.IsSubscribedTo(WebhookEventProjectDeleted))
	assert.False(t, w.IsSubscribedTo("unknown.event"))

	// Test events always pass through
	assert.True(t, w.IsSubscribedTo(WebhookEventWebhookTest))

	all := &Webhook{Enabled: true, EventAll: true}
	assert.True(t, all.IsSubscribedTo(WebhookEventBudgetChanged))
	assert.True(t, all.IsSubscribedTo(WebhookEventAssignmentDeleted))
}
