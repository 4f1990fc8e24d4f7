package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcapacity/capacity-backend/lib/dateutil"
)

func TestGenerateCalendarStartsOnMondayCoveringJanFirst(t *testing.T) {
	for _, year := range []int{2023, 2024, 2025, 2026} {
		weeks := GenerateCalendar(year)
		require.NotEmpty(t, weeks)

		first, err := dateutil.ParseISO(weeks[0].Date)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, first.Weekday())

		// The first week must contain January 1 of the requested year.
		jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		assert.False(t, first.After(jan1))
		assert.True(t, first.AddDate(0, 0, 7).After(jan1))
	}
}

func TestGenerateCalendarContiguity(t *testing.T) {
	weeks := GenerateCalendar(2025)
	for i := 1; i < len(weeks); i++ {
		prev, err := dateutil.ParseISO(weeks[i-1].Date)
		require.NoError(t, err)
		cur, err := dateutil.ParseISO(weeks[i].Date)
		require.NoError(t, err)
		assert.Equal(t, prev.AddDate(0, 0, 7), cur, "weeks %d and %d are not 7 days apart", i-1, i)
	}
}

func TestGenerateCalendarWeekNumbering(t *testing.T) {
	weeks := GenerateCalendar(2025)

	assert.Equal(t, 1, weeks[0].WeekNum)
	assert.False(t, weeks[0].IsNextYear)

	// Within each segment week numbers increase by exactly one.
	for i := 1; i < len(weeks); i++ {
		if weeks[i].IsNextYear == weeks[i-1].IsNextYear {
			assert.Equal(t, weeks[i-1].WeekNum+1, weeks[i].WeekNum)
		}
	}
}

func TestGenerateCalendarRolloverResetsToWeekOne(t *testing.T) {
	weeks := GenerateCalendar(2025)

	rollover := -1
	for i, w := range weeks {
		if w.IsNextYear {
			rollover = i
			break
		}
	}
	require.Greater(t, rollover, 0, "calendar never rolled into the next year")

	assert.Equal(t, 1, weeks[rollover].WeekNum)

	d, err := dateutil.ParseISO(weeks[rollover].Date)
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	// Every week from the rollover point is flagged, none before it.
	for i, w := range weeks {
		assert.Equal(t, i >= rollover, w.IsNextYear, "week %d (%s)", i, w.Date)
	}
}

func TestGenerateCalendarOverflowLength(t *testing.T) {
	weeks := GenerateCalendar(2025)

	overflow := 0
	for _, w := range weeks {
		if w.IsNextYear {
			overflow++
		}
	}
	assert.Equal(t, OverflowWeeks, overflow)
}

func TestGenerateCalendarDeterministic(t *testing.T) {
	assert.Equal(t, GenerateCalendar(2024), GenerateCalendar(2024))
}

func TestCalendarIndexMatchesPositions(t *testing.T) {
	weeks := GenerateCalendar(2025)
	index := calendarIndex(weeks)

	require.Len(t, index, len(weeks))
	for i, w := range weeks {
		assert.Equal(t, i, index[w.Date])
	}
}
