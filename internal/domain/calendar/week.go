// Package calendar resolves the Monday-to-Sunday weeks used for scheduling
// and payroll.
package calendar

import "time"

const dateLayout = "2006-01-02"

// WeekBounds returns Monday 00:00:00.000 and Sunday 23:59:59.999 of the week
// containing anchor, in anchor's location. Sunday belongs to the week that
// started the previous Monday.
func WeekBounds(anchor time.Time) (start, end time.Time) {
	y, m, d := anchor.Date()
	loc := anchor.Location()
	offset := (int(anchor.Weekday()) + 6) % 7
	start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	end = time.Date(y, m, d-offset+6, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// InLocation re-anchors the calendar date of t (as read in t's own
// location) at midnight in loc.
func InLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
