package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDepartmentStageSameStartIsWeekOne(t *testing.T) {
	window, degraded := ResolveDepartmentStage("2025-01-06", "2025-01-06", 4, 2025)

	assert.False(t, degraded)
	assert.Equal(t, 1, window.WeekStart)
	assert.Equal(t, 4, window.WeekEnd)
	assert.Equal(t, "2025-01-06", window.DepartmentStartDate)
	assert.Equal(t, 4, window.DurationWeeks)
}

func TestResolveDepartmentStageOffsetStart(t *testing.T) {
	// Department starts three calendar weeks after the project.
	window, degraded := ResolveDepartmentStage("2025-01-27", "2025-01-06", 2, 2025)

	assert.False(t, degraded)
	assert.Equal(t, 4, window.WeekStart)
	assert.Equal(t, 5, window.WeekEnd)
}

func TestResolveDepartmentStageBeforeProjectStartIsNotClamped(t *testing.T) {
	// Department starts two weeks before the project: relative week -1.
	window, degraded := ResolveDepartmentStage("2025-01-06", "2025-01-20", 3, 2025)

	assert.False(t, degraded)
	assert.Equal(t, -1, window.WeekStart)
	assert.Equal(t, 1, window.WeekEnd)
}

func TestResolveDepartmentStageFallsBackOnUnknownDate(t *testing.T) {
	// Mid-week dates never appear in the Monday-aligned calendar.
	window, degraded := ResolveDepartmentStage("2025-01-08", "2025-01-06", 4, 2025)

	assert.True(t, degraded)
	assert.Equal(t, 1, window.WeekStart)
	assert.Equal(t, 4, window.WeekEnd)
}

func TestResolveDepartmentStageFallsBackOnMalformedDate(t *testing.T) {
	window, degraded := ResolveDepartmentStage("not-a-date", "2025-01-06", 2, 2025)

	assert.True(t, degraded)
	assert.Equal(t, 1, window.WeekStart)
	assert.Equal(t, 2, window.WeekEnd)
}

func TestResolveDepartmentStageIdempotent(t *testing.T) {
	w1, d1 := ResolveDepartmentStage("2025-03-10", "2025-01-06", 6, 2025)
	w2, d2 := ResolveDepartmentStage("2025-03-10", "2025-01-06", 6, 2025)

	assert.Equal(t, w1, w2)
	assert.Equal(t, d1, d2)
}

func TestComputeProjectEndDate(t *testing.T) {
	end, err := ComputeProjectEndDate("2025-01-06", 4)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", end)
}

func TestComputeProjectEndDateCrossesYear(t *testing.T) {
	end, err := ComputeProjectEndDate("2025-12-01", 8)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-26", end)
}

func TestComputeProjectEndDateRejectsMalformedDate(t *testing.T) {
	_, err := ComputeProjectEndDate("06/01/2025", 4)
	assert.Error(t, err)
}

func TestComputeProjectWeekSpan(t *testing.T) {
	span, err := ComputeProjectWeekSpan("2025-01-06", 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27"}, span)
}

func TestComputeProjectWeekSpanLength(t *testing.T) {
	for _, n := range []int{1, 12, 52} {
		span, err := ComputeProjectWeekSpan("2025-06-02", n)
		require.NoError(t, err)
		assert.Len(t, span, n)
	}
}

func TestComputeProjectWeekSpanIndependentOfCalendarAlignment(t *testing.T) {
	// A mid-week start still produces a 7-day grid anchored on itself.
	span, err := ComputeProjectWeekSpan("2025-01-08", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-08", "2025-01-15", "2025-01-22"}, span)
}
