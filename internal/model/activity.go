package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidAction = errors.New("model: invalid activity action")

type Action string

const (
	ActionPerformed Action = "Performed"
	ActionSkipped   Action = "Skipped"
	ActionSnoozed   Action = "Snoozed"
	ActionIgnored   Action = "Ignored"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionPerformed, ActionSkipped, ActionSnoozed, ActionIgnored:
		return true
	default:
		return false
	}
}

// AdvancesSchedule reports whether the action completes the current
// recurrence cycle. Skipping still counts as handled; snoozing and ignoring
// only affect same-day renotification.
func (a Action) AdvancesSchedule() bool {
	return a == ActionPerformed || a == ActionSkipped
}

// TaskActivity is one logged occurrence of a template being actioned.
// Rows are append-only; they are removed only when their template is
// permanently deleted.
type TaskActivity struct {
	ID            int64
	TemplateID    int64
	ExecutionDate time.Time
	Action        Action
	Notes         string
	CreatedAt     time.Time
}

func (a TaskActivity) Validate() error {
	if a.TemplateID <= 0 {
		return errors.New("model: activity template_id is required")
	}
	if a.ExecutionDate.IsZero() {
		return errors.New("model: activity execution_date is required")
	}
	if !a.Action.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, a.Action)
	}
	if a.CreatedAt.IsZero() {
		return errors.New("model: activity created_at is required")
	}
	return nil
}
