package model

import "time"

// Midnight truncates an instant to midnight of its calendar date in the
// instant's own location. Bucketing the day this way keeps due-date checks
// consistent with wall-clock notification times: a task due "today" with a
// 20:00 notification fires at the user's local 20:00, not UTC's.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar date, each
// read in its own location. Stored due dates are date-only values, so this
// compares components rather than midnight instants.
func SameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

// NextDue computes the due date following an actual execution. The next
// occurrence is based on when the task was really done, not on the date it
// was originally scheduled for, so doing a task early or late never
// compounds drift against a fixed calendar grid.
//
//   - Interval_Days: execution date + interval days.
//   - One_Off: nil, the task never recurs.
//   - Fixed_Weekly: execution date + 7 days. Not weekday-aware; a task done
//     on a Tuesday recurs the following Tuesday regardless of its original
//     weekday.
//
// Unknown schedule types and non-positive intervals fall back to the
// interval formula with whatever interval is present, which degenerates to
// a same-day re-due when the interval is missing. Lenient by policy; the
// edges validate before anything is persisted.
func NextDue(schedule ScheduleType, intervalDays int, executionDate time.Time) *time.Time {
	exec := Midnight(executionDate)

	switch schedule {
	case ScheduleOneOff:
		return nil
	case ScheduleFixedWeekly:
		next := exec.AddDate(0, 0, 7)
		return &next
	case ScheduleIntervalDays:
		if intervalDays > 0 {
			next := exec.AddDate(0, 0, intervalDays)
			return &next
		}
	}

	next := exec.AddDate(0, 0, intervalDays)
	return &next
}
