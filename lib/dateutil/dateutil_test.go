package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	d, err := ParseISO("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", FormatISO(d))
	assert.Equal(t, time.Monday, d.Weekday())
}

func TestParseISORejectsGarbage(t *testing.T) {
	_, err := ParseISO("06/01/2025")
	assert.Error(t, err)
}

func TestMondayOf(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2025-01-01", "2024-12-30"}, // Wednesday
		{"2025-01-06", "2025-01-06"}, // already Monday
		{"2025-01-12", "2025-01-06"}, // Sunday
	}
	for _, tc := range cases {
		d, err := ParseISO(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FormatISO(MondayOf(d)), "MondayOf(%s)", tc.in)
	}
}

func TestAddWeeks(t *testing.T) {
	d, _ := ParseISO("2025-01-06")
	assert.Equal(t, "2025-02-03", FormatISO(AddWeeks(d, 4)))
	assert.Equal(t, "2024-12-30", FormatISO(AddWeeks(d, -1)))
}
