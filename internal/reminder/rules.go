// Package reminder computes the reminder feed for a given day and dispatches
// notifications for the events that fall on it.
package reminder

import (
	"fmt"
	"slices"
	"time"

	"github.com/rcliao/lovejourney/internal/model"
	"github.com/rcliao/lovejourney/internal/timeline"
)

// Kind classifies a reminder entry.
type Kind string

const (
	KindEvent  Kind = "event"
	KindPlan   Kind = "plan"
	KindMemory Kind = "memory"
)

// Reminder is one entry of the feed.
type Reminder struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Kind  Kind   `json:"kind"`
}

// Dispatch is a request to notify. Title is also the dedup key.
type Dispatch struct {
	Title string
	Body  string
}

// AnnualEvent recurs every year on the same month and day.
type AnnualEvent struct {
	Title string
	Month time.Month
	Day   int
}

// Valentine is gated by the valentine toggle.
var Valentine = AnnualEvent{Title: "Valentine's Day", Month: time.February, Day: 14}

// Holidays are gated by the holidays toggle.
var Holidays = []AnnualEvent{
	{Title: "New Year's Day", Month: time.January, Day: 1},
	{Title: "International Women's Day", Month: time.March, Day: 8},
	{Title: "Vietnamese Women's Day", Month: time.October, Day: 20},
	{Title: "Christmas", Month: time.December, Day: 25},
}

// AnniversaryTitle names the relationship anniversary.
const AnniversaryTitle = "Anniversary"

// BirthdayTitle names a partner's birthday.
func BirthdayTitle(name string) string {
	return name + "'s Birthday"
}

// Compute evaluates every rule against now and returns the feed, deduplicated
// by title, together with the dispatch requests of this pass. Completed plans
// and records with unparseable dates are skipped.
func Compute(now time.Time, s model.Settings, plans []model.Plan, memories []model.Memory) ([]Reminder, []Dispatch) {
	e := &pass{
		now:     now,
		today:   timeline.Midnight(now),
		offsets: s.ReminderOffsets(),
	}

	for _, p := range plans {
		if !p.Completed {
			e.plan(p)
		}
	}

	if s.Notifications.Anniversary {
		if start, ok := timeline.ParseDate(s.StartDate, now.Location()); ok {
			e.annual(AnniversaryTitle, start.Month(), start.Day())
		}
	}
	if s.Notifications.Birthdays {
		for _, p := range s.Partners {
			if dob, ok := timeline.ParseDate(p.DOB, now.Location()); ok {
				e.annual(BirthdayTitle(p.Name), dob.Month(), dob.Day())
			}
		}
	}
	if s.Notifications.Valentine {
		e.annual(Valentine.Title, Valentine.Month, Valentine.Day)
	}
	if s.Notifications.Holidays {
		for _, h := range Holidays {
			e.annual(h.Title, h.Month, h.Day)
		}
	}
	if s.Notifications.OnThisDay {
		for _, m := range memories {
			e.onThisDay(m)
		}
	}

	return dedupe(e.feed), e.dispatches
}

type pass struct {
	now        time.Time
	today      time.Time
	offsets    []int
	feed       []Reminder
	dispatches []Dispatch
}

func (e *pass) plan(p model.Plan) {
	target, ok := timeline.ParseDate(p.TargetDate, e.now.Location())
	if !ok {
		return
	}
	diff := timeline.DaysBetween(e.today, target)
	if slices.Contains(e.offsets, diff) {
		e.feed = append(e.feed, Reminder{
			Title: fmt.Sprintf("%s (%d days left)", p.Title, diff),
			Date:  p.TargetDate,
			Kind:  KindEvent,
		})
	}

	if !p.ReminderEnabled {
		return
	}
	at, ok := timeline.ParseDate(p.ReminderTime, e.now.Location())
	if !ok || !timeline.SameDay(at, e.now) || e.now.Before(at) {
		return
	}
	title := "Time for: " + p.Title
	e.feed = append(e.feed, Reminder{Title: title, Date: p.ReminderTime, Kind: KindPlan})
	e.dispatches = append(e.dispatches, Dispatch{
		Title: title,
		Body:  fmt.Sprintf("It's time for your plan: %s", p.Title),
	})
}

// annual projects month/day onto this year and next. February 29 lands on
// March 1 in common years.
func (e *pass) annual(title string, month time.Month, day int) {
	for _, offset := range []int{0, 1} {
		t := time.Date(e.today.Year()+offset, month, day, 0, 0, 0, 0, e.today.Location())
		diff := timeline.DaysBetween(e.today, t)
		if diff < 0 || !slices.Contains(e.offsets, diff) {
			continue
		}
		e.feed = append(e.feed, Reminder{
			Title: fmt.Sprintf("%s (%d days left)", title, diff),
			Date:  t.Format(timeline.DateLayout),
			Kind:  KindEvent,
		})
		if diff == 0 {
			e.dispatches = append(e.dispatches, Dispatch{Title: title, Body: "Today is " + title})
		}
	}
}

func (e *pass) onThisDay(m model.Memory) {
	d, ok := timeline.ParseDate(m.Date, e.now.Location())
	if !ok {
		return
	}
	if d.Month() != e.today.Month() || d.Day() != e.today.Day() || d.Year() == e.today.Year() {
		return
	}
	e.feed = append(e.feed, Reminder{
		Title: fmt.Sprintf("%d years ago today: %s", e.today.Year()-d.Year(), m.Title),
		Date:  m.Date,
		Kind:  KindMemory,
	})
}

// dedupe keeps the first entry for each title.
func dedupe(feed []Reminder) []Reminder {
	seen := make(map[string]bool, len(feed))
	out := make([]Reminder, 0, len(feed))
	for _, r := range feed {
		if seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		out = append(out, r)
	}
	return out
}
