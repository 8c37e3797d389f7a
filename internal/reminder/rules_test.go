package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/lovejourney/internal/model"
)

var now = time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

// quiet has every annual toggle off so only plan rules fire.
func quiet(days ...int) model.Settings {
	return model.Settings{StartDate: "2020-01-01", ReminderDays: days}
}

func titles(feed []Reminder) []string {
	out := make([]string, len(feed))
	for i, r := range feed {
		out[i] = r.Title
	}
	return out
}

func TestPlanCountdown(t *testing.T) {
	plans := []model.Plan{
		{ID: "1", Title: "Trip", TargetDate: "2024-06-11"},
		{ID: "2", Title: "Far trip", TargetDate: "2024-06-15"},
	}
	feed, dispatches := Compute(now, quiet(0, 1), plans, nil)

	require.Len(t, feed, 1)
	assert.Equal(t, Reminder{Title: "Trip (1 days left)", Date: "2024-06-11", Kind: KindEvent}, feed[0])
	assert.Empty(t, dispatches, "countdowns never notify")
}

func TestPlanCountdownOffsetMembership(t *testing.T) {
	plans := []model.Plan{{ID: "1", Title: "Concert", TargetDate: "2024-06-13"}}

	feed, _ := Compute(now, quiet(3), plans, nil)
	assert.Equal(t, []string{"Concert (3 days left)"}, titles(feed))

	feed, _ = Compute(now, quiet(0, 1, 2, 7), plans, nil)
	assert.Empty(t, feed)
}

func TestReminderDaysDefaults(t *testing.T) {
	plans := []model.Plan{{ID: "1", Title: "Today", TargetDate: "2024-06-10"}}

	s := quiet()
	s.ReminderDays = nil
	feed, _ := Compute(now, s, plans, nil)
	assert.Equal(t, []string{"Today (0 days left)"}, titles(feed), "unset offsets mean day-of only")

	s.ReminderDays = []int{}
	feed, _ = Compute(now, s, plans, nil)
	assert.Empty(t, feed, "explicitly empty offsets disable countdowns")
}

func TestCompletedPlansSkipped(t *testing.T) {
	plans := []model.Plan{{ID: "1", Title: "Done", TargetDate: "2024-06-10", Completed: true,
		ReminderEnabled: true, ReminderTime: "2024-06-10T09:00"}}
	feed, dispatches := Compute(now, quiet(0), plans, nil)
	assert.Empty(t, feed)
	assert.Empty(t, dispatches)
}

func TestPlanExactTime(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		at      string
		fires   bool
	}{
		{"reached today", true, "2024-06-10T09:00", true},
		{"exactly now", true, "2024-06-10T10:00", true},
		{"later today", true, "2024-06-10T11:00", false},
		{"yesterday", true, "2024-06-09T09:00", false},
		{"disabled", false, "2024-06-10T09:00", false},
		{"garbage", true, "soon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := []model.Plan{{ID: "1", Title: "Dinner", TargetDate: "2024-07-01",
				ReminderEnabled: tt.enabled, ReminderTime: tt.at}}
			feed, dispatches := Compute(now, quiet(0), plans, nil)
			if !tt.fires {
				assert.Empty(t, feed)
				assert.Empty(t, dispatches)
				return
			}
			assert.Equal(t, []Reminder{{Title: "Time for: Dinner", Date: tt.at, Kind: KindPlan}}, feed)
			require.Len(t, dispatches, 1)
			assert.Equal(t, "Time for: Dinner", dispatches[0].Title)
			assert.Contains(t, dispatches[0].Body, "Dinner")
		})
	}
}

func TestCorruptDatesSkipOnlyThatEntry(t *testing.T) {
	s := quiet(0)
	s.Notifications.OnThisDay = true
	plans := []model.Plan{
		{ID: "1", Title: "Broken", TargetDate: "not a date"},
		{ID: "2", Title: "Fine", TargetDate: "2024-06-10"},
	}
	memories := []model.Memory{
		{ID: "m1", Title: "Bad", Date: "31/31/31"},
		{ID: "m2", Title: "Picnic", Date: "2021-06-10"},
	}
	feed, _ := Compute(now, s, plans, memories)
	assert.Equal(t, []string{"Fine (0 days left)", "3 years ago today: Picnic"}, titles(feed))
}

func TestAnniversary(t *testing.T) {
	s := quiet(0, 1)
	s.Notifications.Anniversary = true

	s.StartDate = "2020-06-11"
	feed, dispatches := Compute(now, s, nil, nil)
	assert.Equal(t, []Reminder{{Title: "Anniversary (1 days left)", Date: "2024-06-11", Kind: KindEvent}}, feed)
	assert.Empty(t, dispatches)

	s.StartDate = "2020-06-10T08:00:00Z"
	feed, dispatches = Compute(now, s, nil, nil)
	assert.Equal(t, []string{"Anniversary (0 days left)"}, titles(feed))
	assert.Equal(t, []Dispatch{{Title: "Anniversary", Body: "Today is Anniversary"}}, dispatches)

	s.StartDate = "garbage"
	feed, _ = Compute(now, s, nil, nil)
	assert.Empty(t, feed)
}

func TestAnnualEventsSkipPastDates(t *testing.T) {
	s := quiet(0, 1)
	s.Notifications.Anniversary = true
	s.StartDate = "2020-06-09"
	feed, _ := Compute(now, s, nil, nil)
	assert.Empty(t, feed, "yesterday's anniversary is in the past")
}

func TestBirthdays(t *testing.T) {
	s := quiet(0)
	s.Notifications.Birthdays = true
	s.Partners = [2]model.Partner{{Name: "Lan", DOB: "1995-06-10"}, {Name: "Minh"}}

	feed, dispatches := Compute(now, s, nil, nil)
	assert.Equal(t, []string{"Lan's Birthday (0 days left)"}, titles(feed))
	require.Len(t, dispatches, 1)
	assert.Equal(t, "Lan's Birthday", dispatches[0].Title)

	s.Notifications.Birthdays = false
	feed, _ = Compute(now, s, nil, nil)
	assert.Empty(t, feed)
}

func TestHolidaysProjectIntoNextYear(t *testing.T) {
	s := quiet(1)
	s.Notifications.Holidays = true
	eve := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)

	feed, _ := Compute(eve, s, nil, nil)
	assert.Equal(t, []Reminder{{Title: "New Year's Day (1 days left)", Date: "2025-01-01", Kind: KindEvent}}, feed)
}

func TestValentine(t *testing.T) {
	s := quiet(0)
	s.Notifications.Valentine = true
	feb14 := time.Date(2025, 2, 14, 7, 0, 0, 0, time.UTC)

	feed, dispatches := Compute(feb14, s, nil, nil)
	assert.Equal(t, []string{"Valentine's Day (0 days left)"}, titles(feed))
	assert.Len(t, dispatches, 1)

	s.Notifications.Valentine = false
	feed, _ = Compute(feb14, s, nil, nil)
	assert.Empty(t, feed)
}

func TestOnThisDay(t *testing.T) {
	s := quiet()
	s.Notifications.OnThisDay = true
	memories := []model.Memory{
		{ID: "1", Title: "First date", Date: "2022-06-10"},
		{ID: "2", Title: "This year", Date: "2024-06-10"},
		{ID: "3", Title: "Other day", Date: "2022-06-11"},
	}
	feed, dispatches := Compute(now, s, nil, memories)
	assert.Equal(t, []Reminder{{Title: "2 years ago today: First date", Date: "2022-06-10", Kind: KindMemory}}, feed)
	assert.Empty(t, dispatches)

	s.Notifications.OnThisDay = false
	feed, _ = Compute(now, s, nil, memories)
	assert.Empty(t, feed)
}

func TestFeedDedupedByTitle(t *testing.T) {
	plans := []model.Plan{
		{ID: "1", Title: "Trip", TargetDate: "2024-06-11"},
		{ID: "2", Title: "Trip", TargetDate: "2024-06-11T18:00"},
	}
	feed, _ := Compute(now, quiet(1), plans, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, "2024-06-11", feed[0].Date, "first occurrence wins")
}
