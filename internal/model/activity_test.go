package model

import (
	"errors"
	"testing"
	"time"
)

func TestActionAdvancesSchedule(t *testing.T) {
	advancing := map[Action]bool{
		ActionPerformed: true,
		ActionSkipped:   true,
		ActionSnoozed:   false,
		ActionIgnored:   false,
	}
	for action, want := range advancing {
		if got := action.AdvancesSchedule(); got != want {
			t.Fatalf("%s: AdvancesSchedule = %v, want %v", action, got, want)
		}
	}
}

func TestActivityValidate(t *testing.T) {
	activity := TaskActivity{
		TemplateID:    4,
		ExecutionDate: date(2024, 1, 1),
		Action:        ActionPerformed,
		Notes:         "filter rinsed",
		CreatedAt:     time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	}
	if err := activity.Validate(); err != nil {
		t.Fatalf("valid activity rejected: %v", err)
	}

	noTemplate := activity
	noTemplate.TemplateID = 0
	if err := noTemplate.Validate(); err == nil {
		t.Fatal("expected error for missing template id")
	}

	badAction := activity
	badAction.Action = "Admired"
	if err := badAction.Validate(); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
