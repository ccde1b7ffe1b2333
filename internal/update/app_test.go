package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reefkeep/tankd/internal/model"
	"github.com/reefkeep/tankd/internal/scheduler"
	"github.com/reefkeep/tankd/internal/storage"
)

var testNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.OpenSQLite(t.TempDir() + "/tankd-test.db")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := storage.MigrateUp(repo.DB()); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	svc := scheduler.NewService(repo, scheduler.Options{
		PollInterval: time.Hour,
		Now:          func() time.Time { return testNow },
	})
	m := NewModel(repo, svc, ModelOptions{Now: func() time.Time { return testNow }})
	return m, repo
}

func seedDueTask(t *testing.T, repo *storage.SQLiteRepository) model.TaskTemplate {
	t.Helper()
	ctx := context.Background()
	tank := model.Tank{Name: "Display Tank", VolumeLiter: 200, WaterType: model.WaterSaltwater, CreatedAt: testNow}
	if err := repo.CreateTank(ctx, &tank); err != nil {
		t.Fatalf("create tank: %v", err)
	}
	due := model.Midnight(testNow)
	tpl := model.TaskTemplate{
		TankID:       tank.ID,
		Category:     model.CategoryWaterChange,
		Title:        "20% water change",
		Schedule:     model.ScheduleIntervalDays,
		IntervalDays: 7,
		NextDue:      &due,
		Status:       model.StatusActive,
		CreatedAt:    testNow,
	}
	if err := repo.SaveTaskTemplate(ctx, &tpl); err != nil {
		t.Fatalf("save template: %v", err)
	}
	return tpl
}

// refresh runs the model's reload command synchronously and feeds the
// resulting message back through Update.
func refresh(t *testing.T, m Model) Model {
	t.Helper()
	msg := m.refreshCmd()()
	if errMsg, ok := msg.(AppErrorMsg); ok {
		t.Fatalf("refresh failed: %v", errMsg.Err)
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.CurrentView != ViewDue {
		t.Fatalf("expected default view %q, got %q", ViewDue, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.DesktopEnabled {
		t.Fatal("expected desktop notifications off by default")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.CurrentView != ViewTasks {
		t.Fatalf("expected tasks view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	next = updated.(Model)
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", next.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SwitchViewMsg{View: ViewTanks})
	next := updated.(Model)
	if next.CurrentView != ViewTanks {
		t.Fatalf("expected tanks view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewTanks {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	errMsg := errors.New("boom")
	updated, _ = next.Update(AppErrorMsg{Err: errMsg})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestRefreshPopulatesPanels(t *testing.T) {
	m, repo := newTestModel(t)
	seedDueTask(t, repo)

	m = refresh(t, m)
	if len(m.Due.Items) != 1 {
		t.Fatalf("expected 1 due item, got %d", len(m.Due.Items))
	}
	if len(m.Tasks.Items) != 1 {
		t.Fatalf("expected 1 task, got %d", len(m.Tasks.Items))
	}
	if len(m.Tanks) != 1 {
		t.Fatalf("expected 1 tank, got %d", len(m.Tanks))
	}
	if m.Due.Items[0].TankName != "Display Tank" {
		t.Fatalf("expected tank name populated, got %q", m.Due.Items[0].TankName)
	}
}

func TestRefreshLoadsLivestockIntoTanksView(t *testing.T) {
	m, repo := newTestModel(t)
	tpl := seedDueTask(t, repo)
	stock := model.Livestock{
		TankID:       tpl.TankID,
		Name:         "Clownfish",
		Quantity:     2,
		IntroducedOn: model.Midnight(testNow),
		CreatedAt:    testNow,
	}
	if err := repo.SaveLivestock(context.Background(), &stock); err != nil {
		t.Fatalf("save livestock: %v", err)
	}

	m = refresh(t, m)
	if len(m.Stock[tpl.TankID]) != 1 {
		t.Fatalf("expected livestock loaded for tank, got %#v", m.Stock)
	}
	m.CurrentView = ViewTanks
	if view := m.View(); !strings.Contains(view, "2x Clownfish") {
		t.Fatalf("expected tanks view to list livestock, got:\n%s", view)
	}
}

func TestRefreshSyncsTasksTable(t *testing.T) {
	m, repo := newTestModel(t)
	seedDueTask(t, repo)

	// The sync must land on the model Update returns, not a discarded copy.
	m = refresh(t, m)
	rows := m.tasksTable.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 table row after refresh, got %d", len(rows))
	}
	if rows[0][1] != "20% water change" {
		t.Fatalf("unexpected table row: %v", rows[0])
	}
}

func TestPerformKeyAdvancesSchedule(t *testing.T) {
	m, repo := newTestModel(t)
	tpl := seedDueTask(t, repo)
	m = refresh(t, m)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected respond command")
	}
	msg := cmd()
	logged, ok := msg.(ResponseLoggedMsg)
	if !ok {
		t.Fatalf("expected ResponseLoggedMsg, got %T: %v", msg, msg)
	}
	if logged.Action != model.ActionPerformed {
		t.Fatalf("expected performed action, got %q", logged.Action)
	}
	wantNext := model.Midnight(testNow).AddDate(0, 0, 7)
	if logged.Template.NextDue == nil || !logged.Template.NextDue.Equal(wantNext) {
		t.Fatalf("expected next due %s, got %v", wantNext, logged.Template.NextDue)
	}

	updated, _ = m.Update(msg)
	m = updated.(Model)
	m = refresh(t, m)
	if len(m.Due.Items) != 0 {
		t.Fatalf("expected no due items after performing, got %d", len(m.Due.Items))
	}
	if len(m.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(m.History))
	}
	if len(m.DoneToday) != 1 || m.DoneToday[0].Activity.Action != model.ActionPerformed {
		t.Fatalf("expected today's digest to show the performed task, got %+v", m.DoneToday)
	}
	if m.History[0].Activity.TemplateID != tpl.ID {
		t.Fatalf("history entry for wrong template: %d", m.History[0].Activity.TemplateID)
	}
}

func TestPaletteShowSwitchesView(t *testing.T) {
	m, _ := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(Model)
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("show tanks")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.Palette.Active {
		t.Fatal("expected palette closed after execution")
	}
	if m.CurrentView != ViewTanks {
		t.Fatalf("expected tanks view, got %q", m.CurrentView)
	}
}

func TestPaletteAddCreatesOneOffTask(t *testing.T) {
	m, repo := newTestModel(t)
	seedDueTask(t, repo)
	m = refresh(t, m)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("add rinse filter sock")})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.Status.IsError {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}
	if cmd == nil {
		t.Fatal("expected refresh command after add")
	}
	m = refresh(t, m)
	if len(m.Tasks.Items) != 2 {
		t.Fatalf("expected 2 tasks after add, got %d", len(m.Tasks.Items))
	}
	var added *model.TaskTemplate
	for i := range m.Tasks.Items {
		if m.Tasks.Items[i].Title == "rinse filter sock" {
			added = &m.Tasks.Items[i]
		}
	}
	if added == nil {
		t.Fatal("added task not found in task list")
	}
	if added.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be stamped, got %v", added.CreatedAt)
	}
}

func TestPaletteUnknownCommandSetsError(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("frobnicate 1")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestDueEventMsgUpdatesBannerAndRearms(t *testing.T) {
	m, _ := newTestModel(t)
	ev := scheduler.DueEvent{TemplateID: 7, Title: "dose trace elements", TankName: "Display Tank", RaisedAt: testNow}
	updated, cmd := m.Update(DueEventMsg{Event: ev})
	next := updated.(Model)
	if len(next.EventLog) != 1 {
		t.Fatalf("expected 1 event in log, got %d", len(next.EventLog))
	}
	if !strings.Contains(next.Status.Text, "dose trace elements") {
		t.Fatalf("expected status to mention event, got %q", next.Status.Text)
	}
	if cmd == nil {
		t.Fatal("expected follow-up commands after due event")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, repo := newTestModel(t)
	seedDueTask(t, repo)
	m = refresh(t, m)
	m.Status = StatusBar{Text: "all good"}

	out := m.View()
	if !strings.Contains(out, "view: Due") {
		t.Fatalf("expected view text in output: %q", out)
	}
	if !strings.Contains(out, "20% water change") {
		t.Fatalf("expected due task title in output: %q", out)
	}
	if !strings.Contains(out, "status: all good") {
		t.Fatalf("expected status in output: %q", out)
	}
}
