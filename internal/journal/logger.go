// Package journal records task activity and advances template schedules.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/reefkeep/tankd/internal/model"
)

// Store is the slice of the persistence layer the logger needs.
type Store interface {
	AppendActivity(ctx context.Context, in *model.TaskActivity) error
	SaveTaskTemplate(ctx context.Context, in *model.TaskTemplate) error
}

type Logger struct {
	store Store
	now   func() time.Time
}

func New(store Store, now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{store: store, now: now}
}

// Log appends one activity row and, when the action completes the recurrence
// cycle, recomputes the template's next due date from the actual execution
// date and persists the template. A one-off completion leaves the template
// with no due date, which takes it out of every future scan.
//
// Write failures are returned to the caller; nothing is retried here.
func (l *Logger) Log(ctx context.Context, tpl model.TaskTemplate, action model.Action, notes string, executionDate time.Time) (model.TaskActivity, model.TaskTemplate, error) {
	activity := model.TaskActivity{
		TemplateID:    tpl.ID,
		ExecutionDate: model.Midnight(executionDate),
		Action:        action,
		Notes:         notes,
		CreatedAt:     l.now().UTC(),
	}
	if err := activity.Validate(); err != nil {
		return model.TaskActivity{}, tpl, err
	}

	if err := l.store.AppendActivity(ctx, &activity); err != nil {
		return model.TaskActivity{}, tpl, fmt.Errorf("append activity for template %d: %w", tpl.ID, err)
	}

	if action.AdvancesSchedule() {
		tpl.NextDue = model.NextDue(tpl.Schedule, tpl.IntervalDays, executionDate)
		if err := l.store.SaveTaskTemplate(ctx, &tpl); err != nil {
			return activity, tpl, fmt.Errorf("save template %d after %s: %w", tpl.ID, action, err)
		}
	}

	return activity, tpl, nil
}
