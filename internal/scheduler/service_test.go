package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reefkeep/tankd/internal/model"
	"github.com/reefkeep/tankd/internal/storage"
)

type fakeStore struct {
	templates  map[int64]model.TaskTemplate
	activities []model.TaskActivity
	listErr    error
	nextID     int64
}

func newFakeStore(templates ...model.TaskTemplate) *fakeStore {
	f := &fakeStore{templates: make(map[int64]model.TaskTemplate)}
	for _, tpl := range templates {
		f.templates[tpl.ID] = tpl
	}
	return f
}

func (f *fakeStore) GetTaskTemplate(_ context.Context, id int64) (model.TaskTemplate, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return model.TaskTemplate{}, storage.ErrNotFound
	}
	return tpl, nil
}

func (f *fakeStore) ListTemplatesDueOn(_ context.Context, day time.Time) ([]model.TaskTemplate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.TaskTemplate, 0)
	for _, tpl := range f.templates {
		if tpl.IsDueOn(day) {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveTaskTemplate(_ context.Context, in *model.TaskTemplate) error {
	f.templates[in.ID] = *in
	return nil
}

func (f *fakeStore) AppendActivity(_ context.Context, in *model.TaskActivity) error {
	f.nextID++
	in.ID = f.nextID
	f.activities = append(f.activities, *in)
	return nil
}

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time { return c.at }

func newTestService(store *fakeStore, clock *fakeClock) *Service {
	return NewService(store, Options{
		PollInterval: time.Hour, // scans driven manually in tests
		Now:          clock.now,
		BufferSize:   8,
	})
}

func TestScanEmitsDueEventOnce(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tpl := templateDue(1, due, "09:00")
	tpl.TankName = "Office nano"
	store := newFakeStore(tpl)
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	svc.Scan(context.Background())

	select {
	case ev := <-svc.C():
		if ev.TemplateID != 1 || ev.Title != "Clean filter" || ev.TankName != "Office nano" {
			t.Fatalf("unexpected event: %#v", ev)
		}
	default:
		t.Fatal("expected a due event")
	}

	// Second scan in the same day is suppressed.
	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("unexpected repeat notification: %#v", ev)
	default:
	}
}

func TestScanBeforeNotificationTimeStaysQuiet(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "09:00"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("notified before notification time: %#v", ev)
	default:
	}

	// Fires once the clock passes the configured time.
	clock.at = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case <-svc.C():
	default:
		t.Fatal("expected notification at 09:00")
	}
}

func TestScanSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("database locked")
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	// Must not panic or emit; the next tick retries.
	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("unexpected event after store failure: %#v", ev)
	default:
	}
}

func TestHandleResponsePerformAdvancesTemplate(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "09:00"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 10, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	updated, err := svc.HandleResponse(context.Background(), 1, model.ActionPerformed, "all done")
	if err != nil {
		t.Fatalf("handle perform: %v", err)
	}
	if updated.NextDue == nil || updated.NextDue.Format(time.DateOnly) != "2024-01-15" {
		t.Fatalf("expected next due 2024-01-15 for 14-day interval, got %v", updated.NextDue)
	}
	if len(store.activities) != 1 || store.activities[0].Action != model.ActionPerformed {
		t.Fatalf("unexpected activity log: %#v", store.activities)
	}
	if store.activities[0].Notes != "all done" {
		t.Fatalf("notes not carried: %q", store.activities[0].Notes)
	}
}

func TestHandleResponseSnoozeDefersNotification(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "09:00"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	// Fire the initial notification so the template is suppressed.
	svc.Scan(context.Background())
	<-svc.C()

	updated, err := svc.HandleResponse(context.Background(), 1, model.ActionSnoozed, "")
	if err != nil {
		t.Fatalf("handle snooze: %v", err)
	}
	if updated.NotificationTime != "09:20" {
		t.Fatalf("expected notification time 09:20, got %q", updated.NotificationTime)
	}
	if updated.NextDue == nil || !updated.NextDue.Equal(due) {
		t.Fatalf("snooze must not advance the schedule, got %v", updated.NextDue)
	}

	// Before the deferred time: quiet.
	clock.at = time.Date(2024, 1, 1, 9, 10, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("notified before deferred time: %#v", ev)
	default:
	}

	// At the deferred time: fires again.
	clock.at = time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case <-svc.C():
	default:
		t.Fatal("expected renotification after snooze elapsed")
	}
}

func TestHandleResponseSnoozeNearMidnightClampsToSameDay(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "23:45"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	svc.Scan(context.Background())
	<-svc.C()

	updated, err := svc.HandleResponse(context.Background(), 1, model.ActionSnoozed, "")
	if err != nil {
		t.Fatalf("handle snooze: %v", err)
	}
	// 23:50 + 15m would wrap to 00:05 and re-fire on the very next scan;
	// it must clamp to the end of the day instead.
	if updated.NotificationTime != "23:59" {
		t.Fatalf("expected notification time 23:59, got %q", updated.NotificationTime)
	}

	clock.at = time.Date(2024, 1, 1, 23, 51, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("notified before deferred time: %#v", ev)
	default:
	}

	clock.at = time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case <-svc.C():
	default:
		t.Fatal("expected renotification at end of day")
	}
}

func TestHandleResponseIgnoreSuppressesForTheDay(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "09:00"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	svc.Scan(context.Background())
	<-svc.C()

	updated, err := svc.HandleResponse(context.Background(), 1, model.ActionIgnored, "")
	if err != nil {
		t.Fatalf("handle ignore: %v", err)
	}
	if updated.NextDue == nil || !updated.NextDue.Equal(due) {
		t.Fatalf("ignore must not advance the schedule, got %v", updated.NextDue)
	}

	clock.at = time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)
	svc.Scan(context.Background())
	select {
	case ev := <-svc.C():
		t.Fatalf("ignored template renotified same day: %#v", ev)
	default:
	}
}

func TestHandleResponseMissingTemplate(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	_, err := svc.HandleResponse(context.Background(), 42, model.ActionPerformed, "")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
	if len(store.activities) != 0 {
		t.Fatal("stale response must be a no-op")
	}
}

func TestServiceStartStop(t *testing.T) {
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(templateDue(1, due, "09:00"))
	clock := &fakeClock{at: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)}
	svc := NewService(store, Options{PollInterval: 10 * time.Millisecond, Now: clock.now, BufferSize: 8})

	svc.Start()
	select {
	case ev := <-svc.C():
		if ev.TemplateID != 1 {
			t.Fatalf("unexpected event: %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for startup scan")
	}
	svc.Stop()

	// Channel closes on stop.
	if _, open := <-svc.C(); open {
		t.Fatal("expected closed event channel after Stop")
	}
	// Second stop is a no-op.
	svc.Stop()
}
