// Package scheduler scans for due maintenance tasks and raises notification
// events, polling on a fixed interval.
package scheduler

import (
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

// DueOn filters templates to those active and due on today's calendar date.
// Pure function of its inputs; calling it twice yields the same set.
func DueOn(templates []model.TaskTemplate, today time.Time) []model.TaskTemplate {
	out := make([]model.TaskTemplate, 0, len(templates))
	for _, tpl := range templates {
		if tpl.IsDueOn(today) {
			out = append(out, tpl)
		}
	}
	return out
}

// ShouldNotify reports whether a due template's notification should fire at
// the given instant. True iff the template is due on now's date, has a
// notification time, that time of day has been reached, and the template has
// not already been notified (per the supplied set).
func ShouldNotify(tpl model.TaskTemplate, now time.Time, notified map[int64]bool) bool {
	if !tpl.IsDueOn(now) {
		return false
	}
	if tpl.NotificationTime.IsZero() {
		return false
	}
	if notified[tpl.ID] {
		return false
	}
	return !model.ClockTimeOf(now).Before(tpl.NotificationTime)
}
