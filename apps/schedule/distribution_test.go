package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestDistributeHoursEvenSplit(t *testing.T) {
	projectID := uuid.New()
	employees := employeeIDs(3)
	span, err := ComputeProjectWeekSpan("2025-01-06", 4)
	require.NoError(t, err)

	drafts := DistributeHours(120, employees, projectID, span)

	require.Len(t, drafts, 12)

	var total float64
	for _, d := range drafts {
		assert.Equal(t, 10.0, d.Hours)
		assert.Equal(t, projectID, d.ProjectID)
		total += d.Hours
	}
	assert.InDelta(t, 120, total, 0.001)
}

func TestDistributeHoursCoversEveryEmployeeWeekPair(t *testing.T) {
	employees := employeeIDs(2)
	span := []string{"2025-01-06", "2025-01-13", "2025-01-20"}

	drafts := DistributeHours(60, employees, uuid.New(), span)
	require.Len(t, drafts, 6)

	seen := map[uuid.UUID]map[string]bool{}
	for _, d := range drafts {
		if seen[d.EmployeeID] == nil {
			seen[d.EmployeeID] = map[string]bool{}
		}
		seen[d.EmployeeID][d.WeekStartDate] = true
	}
	for _, id := range employees {
		require.Len(t, seen[id], 3)
		for _, week := range span {
			assert.True(t, seen[id][week])
		}
	}
}

func TestDistributeHoursRoundsToTwoDecimals(t *testing.T) {
	// 100 / 3 employees / 1 week = 33.333... -> 33.33
	drafts := DistributeHours(100, employeeIDs(3), uuid.New(), []string{"2025-01-06"})

	require.Len(t, drafts, 3)
	for _, d := range drafts {
		assert.Equal(t, 33.33, d.Hours)
	}
}

func TestDistributeHoursRoundsHalfUp(t *testing.T) {
	// 0.125 per cell rounds up to 0.13.
	drafts := DistributeHours(0.25, employeeIDs(1), uuid.New(), []string{"2025-01-06", "2025-01-13"})

	require.Len(t, drafts, 2)
	assert.Equal(t, 0.13, drafts[0].Hours)
}

func TestDistributeHoursSuppressesZeroCells(t *testing.T) {
	// 0.004 per cell rounds to 0.00; nothing is produced.
	drafts := DistributeHours(0.008, employeeIDs(1), uuid.New(), []string{"2025-01-06", "2025-01-13"})
	assert.Empty(t, drafts)
}

func TestDistributeHoursEmptyInputs(t *testing.T) {
	span := []string{"2025-01-06"}

	assert.Nil(t, DistributeHours(100, nil, uuid.New(), span))
	assert.Nil(t, DistributeHours(0, employeeIDs(2), uuid.New(), span))
	assert.Nil(t, DistributeHours(-40, employeeIDs(2), uuid.New(), span))
	assert.Nil(t, DistributeHours(100, employeeIDs(2), uuid.New(), nil))
}

func TestDistributeHoursIdempotent(t *testing.T) {
	employees := employeeIDs(4)
	projectID := uuid.New()
	span := []string{"2025-01-06", "2025-01-13"}

	first := DistributeHours(200, employees, projectID, span)
	second := DistributeHours(200, employees, projectID, span)
	assert.Equal(t, first, second)
}
