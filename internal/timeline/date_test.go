package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"date only", "2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, loc), true},
		{"datetime-local", "2024-02-14T19:30", time.Date(2024, 2, 14, 19, 30, 0, 0, loc), true},
		{"rfc3339 utc", "2024-01-01T00:00:00.000Z", time.Date(2024, 1, 1, 7, 0, 0, 0, loc), true},
		{"rfc3339 offset", "2024-01-01T10:00:00+07:00", time.Date(2024, 1, 1, 10, 0, 0, 0, loc), true},
		{"padded", "  2024-05-06 ", time.Date(2024, 5, 6, 0, 0, 0, 0, loc), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"bad month", "2024-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in, loc)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
				assert.Equal(t, loc, got.Location())
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 2, 28, 23, 59, 0, 0, time.UTC)
	b := time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(-time.Minute)), "same calendar day")
	assert.Equal(t, 1, DaysBetween(a, a.Add(time.Minute)), "one minute past midnight is the next day")
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February, time.UTC))
	assert.Equal(t, 28, DaysIn(2023, time.February, time.UTC))
	assert.Equal(t, 31, DaysIn(2024, 0, time.UTC), "month 0 is December of the previous year")
}
