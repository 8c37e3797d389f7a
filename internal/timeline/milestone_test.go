package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextMilestone_Invalid(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, Milestone{DaysLeft: 0, Label: LabelLoading, TargetDate: ""}, NextMilestone("nope", now))
}

func TestNextMilestone_DayCounts(t *testing.T) {
	now := time.Date(2026, 10, 15, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start string
		want  Milestone
	}{
		{"started today", "2026-10-15", Milestone{100, "Milestone 100 days", "2027-01-23"}},
		{"150 days in", "2026-05-18", Milestone{50, "Milestone 200 days", "2026-12-04"}},
		{"exactly on a milestone", "2026-07-07", Milestone{100, "Milestone 200 days", "2027-01-23"}},
		{"start time ignored", "2026-10-14T23:59:00Z", Milestone{99, "Milestone 100 days", "2027-01-22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMilestone(tt.start, now))
		})
	}
}

func TestNextMilestone_AnniversaryFallback(t *testing.T) {
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	got := NextMilestone("2010-03-01", now)
	assert.Equal(t, LabelAnniversary, got.Label)
	assert.Equal(t, "2027-03-01", got.TargetDate)
	assert.Equal(t, 137, got.DaysLeft)

	got = NextMilestone("2010-12-25", now)
	assert.Equal(t, "2026-12-25", got.TargetDate)
	assert.Equal(t, 71, got.DaysLeft)

	// Anniversary falling today rolls to next year.
	got = NextMilestone("2010-10-15", now)
	assert.Equal(t, "2027-10-15", got.TargetDate)
	assert.Equal(t, 365, got.DaysLeft)
}

func TestNextMilestone_AlwaysAhead(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	today := Midnight(now)

	for offset := -4000; offset <= 400; offset += 3 {
		start := today.AddDate(0, 0, offset)
		got := NextMilestone(start.Format(DateLayout), now)
		assert.GreaterOrEqual(t, got.DaysLeft, 0, "offset %d", offset)

		target, ok := ParseDate(got.TargetDate, time.UTC)
		if assert.True(t, ok, "offset %d", offset) {
			assert.True(t, target.After(today), "offset %d target %s", offset, got.TargetDate)
		}
	}
}
