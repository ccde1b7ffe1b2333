package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/reefkeep/tankd/internal/model"
	"github.com/reefkeep/tankd/internal/scheduler"
	"github.com/reefkeep/tankd/internal/storage"
)

type View string

const (
	ViewDue     View = "Due"
	ViewTasks   View = "Tasks"
	ViewTanks   View = "Tanks"
	ViewHistory View = "History"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Due     string
	Tasks   string
	Tanks   string
	History string
	Refresh string
	Help    string
	Quit    string
}

type DueState struct {
	Items  []model.TaskTemplate
	Cursor int
}

type TasksState struct {
	Items  []model.TaskTemplate
	Cursor int
}

// HistoryEntry pairs an activity with its template title for display; the
// activity row itself only carries the template id.
type HistoryEntry struct {
	Activity model.TaskActivity
	Title    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type Model struct {
	CurrentView    View
	Due            DueState
	DoneToday      []HistoryEntry
	Tasks          TasksState
	Tanks          []model.Tank
	Ranges         map[int64][]model.ParameterRange
	Stock          map[int64][]model.Livestock
	History        []HistoryEntry
	EventLog       []scheduler.DueEvent
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	repo     storage.Repository
	svc      *scheduler.Service
	notifier DesktopNotifier
	now      func() time.Time

	tasksTable   table.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// DataRefreshedMsg carries a full reload of the repository-backed panels.
type DataRefreshedMsg struct {
	Due       []model.TaskTemplate
	DoneToday []HistoryEntry
	Tasks     []model.TaskTemplate
	Tanks     []model.Tank
	Ranges    map[int64][]model.ParameterRange
	Stock     map[int64][]model.Livestock
	History   []HistoryEntry
}

type DueEventMsg struct {
	Event scheduler.DueEvent
}

type ResponseLoggedMsg struct {
	Template model.TaskTemplate
	Action   model.Action
}

type TemplateArchivedMsg struct {
	Title string
}

type ModelOptions struct {
	DesktopNotifications bool
	Notifier             DesktopNotifier
	Now                  func() time.Time
}

func NewModel(repo storage.Repository, svc *scheduler.Service, opts ModelOptions) Model {
	m := Model{
		CurrentView: ViewDue,
		repo:        repo,
		svc:         svc,
		notifier:    NoopDesktopNotifier{},
		now:         time.Now,
		Keys: GlobalKeyMap{
			Due:     "1",
			Tasks:   "2",
			Tanks:   "3",
			History: "4",
			Refresh: "r",
			Help:    "?",
			Quit:    "q",
		},
	}
	m.DesktopEnabled = opts.DesktopNotifications
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	if opts.Now != nil {
		m.now = opts.Now
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "ID", Width: 4},
		{Title: "Title", Width: 22},
		{Title: "Category", Width: 13},
		{Title: "Schedule", Width: 13},
		{Title: "Next Due", Width: 10},
		{Title: "Status", Width: 8},
	}
	m.tasksTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Tasks.Items))
	for _, tpl := range m.Tasks.Items {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", tpl.ID),
			tpl.Title,
			string(tpl.Category),
			scheduleLabel(tpl),
			formatNextDue(tpl.NextDue),
			string(tpl.Status),
		})
	}
	m.tasksTable.SetRows(rows)
	if len(rows) > 0 && m.Tasks.Cursor < len(rows) {
		m.tasksTable.SetCursor(m.Tasks.Cursor)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}
}

func (m *Model) notify(title, body, level string) {
	n := Notification{Title: title, Body: body, Level: level, At: m.now()}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 20 {
		m.Notifications = m.Notifications[len(m.Notifications)-20:]
	}
	if m.DesktopEnabled {
		_ = m.notifier.Send(n)
	}
}

func (m Model) selectedDue() *model.TaskTemplate {
	if len(m.Due.Items) == 0 {
		return nil
	}
	idx := clamp(m.Due.Cursor, 0, len(m.Due.Items)-1)
	return &m.Due.Items[idx]
}

func (m Model) selectedTask() *model.TaskTemplate {
	if len(m.Tasks.Items) == 0 {
		return nil
	}
	idx := clamp(m.Tasks.Cursor, 0, len(m.Tasks.Items)-1)
	return &m.Tasks.Items[idx]
}
