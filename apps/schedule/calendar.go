package schedule

import (
	"time"

	"github.com/teamcapacity/capacity-backend/lib/dateutil"
)

// OverflowWeeks is how far a calendar extends past year end so that projects
// starting near December still resolve a full multi-week span. Must stay at
// or above the longest supported project duration.
const OverflowWeeks = 20

// Week is one calendar week of a planning year. Date is the week's Monday in
// canonical YYYY-MM-DD form. WeekNum is the 1-based ordinal within the week's
// nominal year; it resets to 1 at the first week dated in the following year,
// and IsNextYear is set from that point on.
type Week struct {
	Date       string `json:"date"`
	WeekNum    int    `json:"week_num"`
	IsNextYear bool   `json:"is_next_year"`
}

// GenerateCalendar returns the ordered week sequence for a planning year:
// Monday-aligned, starting on/before January 1, covering the whole year plus
// OverflowWeeks weeks of the next one. Pure and deterministic; a fresh slice
// is produced on every call.
func GenerateCalendar(year int) []Week {
	start := dateutil.MondayOf(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC))

	var weeks []Week
	weekNum := 0
	nextYear := false
	overflow := 0

	for d := start; ; d = dateutil.AddWeeks(d, 1) {
		if !nextYear && d.Year() == year+1 {
			nextYear = true
			weekNum = 0
		}
		weekNum++

		weeks = append(weeks, Week{
			Date:       dateutil.FormatISO(d),
			WeekNum:    weekNum,
			IsNextYear: nextYear,
		})

		if nextYear {
			overflow++
			if overflow == OverflowWeeks {
				return weeks
			}
		}
	}
}

// calendarIndex maps each week's date to its position in the sequence,
// replacing repeated linear scans with a single O(1) lookup table.
func calendarIndex(weeks []Week) map[string]int {
	index := make(map[string]int, len(weeks))
	for i, w := range weeks {
		index[w.Date] = i
	}
	return index
}
