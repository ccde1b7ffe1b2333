package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidCategory     = errors.New("model: invalid task category")
	ErrInvalidScheduleType = errors.New("model: invalid schedule type")
	ErrInvalidStatus       = errors.New("model: invalid template status")
	ErrInvalidClockTime    = errors.New("model: invalid clock time")
)

type Category string

const (
	CategoryMaintenance   Category = "Maintenance"
	CategoryWaterChange   Category = "Water Change"
	CategoryDosing        Category = "Dosing"
	CategoryFeeding       Category = "Feeding"
	CategoryMiscellaneous Category = "Miscellaneous"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryMaintenance, CategoryWaterChange, CategoryDosing, CategoryFeeding, CategoryMiscellaneous:
		return true
	default:
		return false
	}
}

// Categories lists all task categories in display order.
func Categories() []Category {
	return []Category{CategoryMaintenance, CategoryWaterChange, CategoryDosing, CategoryFeeding, CategoryMiscellaneous}
}

type ScheduleType string

const (
	ScheduleIntervalDays ScheduleType = "Interval_Days"
	ScheduleOneOff       ScheduleType = "One_Off"
	ScheduleFixedWeekly  ScheduleType = "Fixed_Weekly"
)

func (s ScheduleType) IsValid() bool {
	switch s {
	case ScheduleIntervalDays, ScheduleOneOff, ScheduleFixedWeekly:
		return true
	default:
		return false
	}
}

type TemplateStatus string

const (
	StatusActive   TemplateStatus = "Active"
	StatusArchived TemplateStatus = "Archived"
)

func (s TemplateStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived:
		return true
	default:
		return false
	}
}

// ClockTime is a 24-hour "HH:MM" time of day. The empty string means unset.
// Fixed-width formatting makes lexical comparison equivalent to chronological
// comparison, which the due scanner relies on.
type ClockTime string

func (c ClockTime) IsZero() bool { return c == "" }

func (c ClockTime) Validate() error {
	if c.IsZero() {
		return nil
	}
	parts := strings.SplitN(string(c), ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return fmt.Errorf("%w: %q", ErrInvalidClockTime, c)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("%w: %q", ErrInvalidClockTime, c)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %q", ErrInvalidClockTime, c)
	}
	return nil
}

// ClockTimeOf truncates a wall-clock instant to its HH:MM time of day.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Format("15:04"))
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return string(c) < string(other)
}

// TaskTemplate is the persistent definition of a recurring maintenance task.
// It is not an occurrence; each actioned occurrence is a TaskActivity.
type TaskTemplate struct {
	ID               int64
	TankID           int64
	Category         Category
	Title            string
	Instructions     string
	Schedule         ScheduleType
	IntervalDays     int // days between occurrences, Interval_Days only
	NextDue          *time.Time
	NotificationTime ClockTime
	Status           TemplateStatus
	CreatedAt        time.Time

	// TankName is populated by due-date queries for notification text.
	// It is never written back.
	TankName string
}

func (t TaskTemplate) Validate() error {
	if t.TankID <= 0 {
		return errors.New("model: template tank_id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: template title is required")
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if !t.Schedule.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidScheduleType, t.Schedule)
	}
	if t.Schedule == ScheduleIntervalDays && t.IntervalDays <= 0 {
		return fmt.Errorf("model: interval_days must be positive for %s, got %d", ScheduleIntervalDays, t.IntervalDays)
	}
	if t.Schedule != ScheduleIntervalDays && t.IntervalDays != 0 {
		return fmt.Errorf("model: interval_days must be unset for %s", t.Schedule)
	}
	if err := t.NotificationTime.Validate(); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: template created_at is required")
	}
	return nil
}

// IsDueOn reports whether the template is due on the given calendar date.
// Archived templates and templates with no remaining occurrence are never due.
func (t TaskTemplate) IsDueOn(day time.Time) bool {
	if t.Status != StatusActive || t.NextDue == nil {
		return false
	}
	return SameDay(*t.NextDue, day)
}
