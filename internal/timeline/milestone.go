package timeline

import (
	"fmt"
	"time"
)

// LabelLoading is returned while the start date is not usable.
const LabelLoading = "loading"

// LabelAnniversary is used once every day-count milestone has passed.
const LabelAnniversary = "Anniversary"

// Milestones are the notable day counts, ascending.
var Milestones = []int{100, 200, 300, 365, 730, 1000, 1095, 1460, 1825, 2000, 3000}

// Milestone is the next notable date after today.
type Milestone struct {
	DaysLeft   int    `json:"daysLeft"`
	Label      string `json:"label"`
	TargetDate string `json:"targetDate"`
}

// NextMilestone finds the first milestone strictly after today, falling back
// to the next yearly anniversary of start. Comparison is by calendar date.
func NextMilestone(start string, now time.Time) Milestone {
	s, ok := ParseDate(start, now.Location())
	if !ok {
		return Milestone{Label: LabelLoading}
	}
	s = Midnight(s)
	today := Midnight(now)

	passed := DaysBetween(s, today)
	for _, m := range Milestones {
		if m <= passed {
			continue
		}
		target := s.AddDate(0, 0, m)
		return Milestone{
			DaysLeft:   DaysBetween(today, target),
			Label:      fmt.Sprintf("Milestone %d days", m),
			TargetDate: target.Format(DateLayout),
		}
	}

	next := time.Date(today.Year(), s.Month(), s.Day(), 0, 0, 0, 0, today.Location())
	if !next.After(today) {
		next = time.Date(today.Year()+1, s.Month(), s.Day(), 0, 0, 0, 0, today.Location())
	}
	return Milestone{
		DaysLeft:   DaysBetween(today, next),
		Label:      LabelAnniversary,
		TargetDate: next.Format(DateLayout),
	}
}
