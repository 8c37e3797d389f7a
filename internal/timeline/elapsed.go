package timeline

import "time"

// Breakdown is the elapsed time since a start date, split for display.
type Breakdown struct {
	Years     int `json:"years"`
	Months    int `json:"months"`
	Weeks     int `json:"weeks"`
	Days      int `json:"days"`
	Hours     int `json:"hours"`
	Minutes   int `json:"minutes"`
	Seconds   int `json:"seconds"`
	TotalDays int `json:"totalDays"`
}

// Elapsed computes the time between start and now. With countFromDayOne the
// start date itself counts as day one.
//
// An unparseable start, or one after now, yields the zero Breakdown.
func Elapsed(start string, countFromDayOne bool, now time.Time) Breakdown {
	loc := now.Location()
	s, ok := ParseDate(start, loc)
	if !ok || s.After(now) {
		return Breakdown{}
	}

	total := int(now.Sub(s) / (24 * time.Hour))
	if countFromDayOne {
		total++
	}

	years := now.Year() - s.Year()
	months := int(now.Month()) - int(s.Month())
	days := now.Day() - s.Day()
	hours := now.Hour() - s.Hour()
	minutes := now.Minute() - s.Minute()
	seconds := now.Second() - s.Second()

	if seconds < 0 {
		seconds += 60
		minutes--
	}
	if minutes < 0 {
		minutes += 60
		hours--
	}
	if hours < 0 {
		hours += 24
		days--
	}
	// Borrow whole months walking backwards from the month before now's;
	// a single borrow is not enough when a short month sits in between.
	for back := time.Month(1); days < 0; back++ {
		days += DaysIn(now.Year(), now.Month()-back, loc)
		months--
	}
	for months < 0 {
		months += 12
		years--
	}

	if countFromDayOne {
		// Approximate rollover against the current month's length.
		days++
		if days >= DaysIn(now.Year(), now.Month(), loc) {
			days = 0
			months++
			if months >= 12 {
				months = 0
				years++
			}
		}
	}

	return Breakdown{
		Years:     years,
		Months:    months,
		Weeks:     days / 7,
		Days:      days % 7,
		Hours:     hours,
		Minutes:   minutes,
		Seconds:   seconds,
		TotalDays: total,
	}
}
