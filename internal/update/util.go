package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func scheduleLabel(tpl model.TaskTemplate) string {
	switch tpl.Schedule {
	case model.ScheduleIntervalDays:
		return fmt.Sprintf("every %dd", tpl.IntervalDays)
	case model.ScheduleFixedWeekly:
		return "weekly"
	case model.ScheduleOneOff:
		return "one-off"
	default:
		return string(tpl.Schedule)
	}
}

func formatNextDue(nextDue *time.Time) string {
	if nextDue == nil {
		return "-"
	}
	return nextDue.Format(time.DateOnly)
}

func formatVolume(liters float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", liters), ".0") + "L"
}
