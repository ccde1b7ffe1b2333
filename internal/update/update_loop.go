package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reefkeep/tankd/internal/model"
	"github.com/reefkeep/tankd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd()}
	if m.svc != nil {
		cmds = append(cmds, waitForDueEventCmd(m.svc.C()))
	}
	return tea.Batch(cmds...)
}

// Update delegates to update and then syncs the bubbles components on the
// model actually being returned. A deferred sync on the value receiver would
// run after the return value was copied and be lost.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.syncBubbleData()
		return nm, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Due:
			m.CurrentView = ViewDue
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Tanks:
			m.CurrentView = ViewTanks
			return m, nil
		case m.Keys.History:
			m.CurrentView = ViewHistory
			return m, nil
		case m.Keys.Refresh:
			m.Status = StatusBar{Text: "refreshing", IsError: false}
			return m, m.refreshCmd()
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewDue:
			return m.handleDueKey(typed)
		case ViewTasks:
			return m.handleTasksKey(typed)
		}
		return m, nil

	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil

	case DataRefreshedMsg:
		m.Due.Items = typed.Due
		m.Due.Cursor = clamp(m.Due.Cursor, 0, max(len(typed.Due)-1, 0))
		m.DoneToday = typed.DoneToday
		m.Tasks.Items = typed.Tasks
		m.Tasks.Cursor = clamp(m.Tasks.Cursor, 0, max(len(typed.Tasks)-1, 0))
		m.Tanks = typed.Tanks
		m.Ranges = typed.Ranges
		m.Stock = typed.Stock
		m.History = typed.History
		return m, nil

	case DueEventMsg:
		m.EventLog = append(m.EventLog, typed.Event)
		if len(m.EventLog) > 20 {
			m.EventLog = m.EventLog[len(m.EventLog)-20:]
		}
		body := fmt.Sprintf("%s (%s)", typed.Event.Title, typed.Event.TankName)
		m.Status = StatusBar{Text: "due: " + body, IsError: false}
		m.notify("Task Due", body, "info")
		cmds := []tea.Cmd{m.refreshCmd()}
		if m.svc != nil {
			cmds = append(cmds, waitForDueEventCmd(m.svc.C()))
		}
		return m, tea.Batch(cmds...)

	case TemplateArchivedMsg:
		m.Status = StatusBar{Text: "archived: " + typed.Title, IsError: false}
		m.notify("Archived", typed.Title, "info")
		return m, m.refreshCmd()

	case ResponseLoggedMsg:
		text := fmt.Sprintf("%s: %s", actionVerb(typed.Action), typed.Template.Title)
		m.Status = StatusBar{Text: text, IsError: false}
		m.notify("Logged", text, "info")
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m Model) handleDueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.Due.Cursor = clamp(m.Due.Cursor+1, 0, max(len(m.Due.Items)-1, 0))
		return m, nil
	case "k", "up":
		m.Due.Cursor = clamp(m.Due.Cursor-1, 0, max(len(m.Due.Items)-1, 0))
		return m, nil
	case "p":
		return m.respondToSelected(model.ActionPerformed)
	case "s":
		return m.respondToSelected(model.ActionSkipped)
	case "n":
		return m.respondToSelected(model.ActionSnoozed)
	case "i":
		return m.respondToSelected(model.ActionIgnored)
	}
	return m, nil
}

func (m Model) respondToSelected(action model.Action) (tea.Model, tea.Cmd) {
	tpl := m.selectedDue()
	if tpl == nil {
		m.Status = StatusBar{Text: "nothing due to respond to", IsError: true}
		return m, nil
	}
	return m, m.respondCmd(tpl.ID, action, "")
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.Tasks.Cursor = clamp(m.Tasks.Cursor+1, 0, max(len(m.Tasks.Items)-1, 0))
		return m, nil
	case "k", "up":
		m.Tasks.Cursor = clamp(m.Tasks.Cursor-1, 0, max(len(m.Tasks.Items)-1, 0))
		return m, nil
	case "a":
		tpl := m.selectedTask()
		if tpl == nil {
			return m, nil
		}
		return m, m.archiveCmd(tpl.ID, tpl.Title)
	}
	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewDue:
		leftPane = m.renderDueView()
		rightPane = m.renderDueDetail() + m.renderPaletteIfActive() + m.renderHelpIfVisible()
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderTaskDetail() + m.renderPaletteIfActive() + m.renderHelpIfVisible()
	case ViewTanks:
		leftPane = m.renderTanksView()
		rightPane = m.renderPaletteIfActive() + m.renderHelpIfVisible()
	case ViewHistory:
		leftPane = m.renderHistoryView()
		rightPane = m.renderPaletteIfActive() + m.renderHelpIfVisible()
	}

	banner := ""
	if len(m.EventLog) > 0 {
		last := m.EventLog[len(m.EventLog)-1]
		banner = fmt.Sprintf("last due event: #%d %s @ %s", last.TemplateID, last.Title, last.RaisedAt.Format("15:04:05"))
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("tankd | view: %s | due today: %d", m.CurrentView, len(m.Due.Items)),
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Banner:     banner,
		Footer: fmt.Sprintf("keys: %s due | %s tasks | %s tanks | %s history | / cmd | %s refresh | %s help | %s quit",
			m.Keys.Due, m.Keys.Tasks, m.Keys.Tanks, m.Keys.History, m.Keys.Refresh, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderDueView() string {
	items := make([]views.DueItemData, 0, len(m.Due.Items))
	today := m.now()
	for _, tpl := range m.Due.Items {
		items = append(items, views.DueItemData{
			ID:       tpl.ID,
			Title:    tpl.Title,
			TankName: tpl.TankName,
			Category: string(tpl.Category),
			NotifyAt: string(tpl.NotificationTime),
		})
	}
	done := make([]views.HistoryRowData, 0, len(m.DoneToday))
	for _, entry := range m.DoneToday {
		done = append(done, views.HistoryRowData{
			Title:  entry.Title,
			Action: string(entry.Activity.Action),
		})
	}
	selected := int64(0)
	if tpl := m.selectedDue(); tpl != nil {
		selected = tpl.ID
	}
	return views.RenderDuePanel(views.DuePanelData{
		Day:        today.Format(time.DateOnly),
		Items:      items,
		Done:       done,
		SelectedID: selected,
	})
}

func (m Model) renderDueDetail() string {
	tpl := m.selectedDue()
	if tpl == nil {
		return "detail:\n(no selection)"
	}
	return views.RenderTaskDetail(taskDetailData(*tpl))
}

func (m Model) renderTasksView() string {
	return views.RenderTasksPanel(views.TasksPanelData{
		TableView: m.tasksTable.View(),
		Count:     len(m.Tasks.Items),
	})
}

func (m Model) renderTaskDetail() string {
	tpl := m.selectedTask()
	if tpl == nil {
		return "detail:\n(no selection)"
	}
	return views.RenderTaskDetail(taskDetailData(*tpl))
}

func (m Model) renderTanksView() string {
	tanks := make([]views.TankRowData, 0, len(m.Tanks))
	for _, tank := range m.Tanks {
		setup := ""
		if !tank.SetupDate.IsZero() {
			setup = tank.SetupDate.Format(time.DateOnly)
		}
		ranges := make([]string, 0, len(m.Ranges[tank.ID]))
		for _, pr := range m.Ranges[tank.ID] {
			ranges = append(ranges, fmt.Sprintf("%s: %.2f-%.2f %s", pr.Name, pr.Min, pr.Max, pr.Unit))
		}
		stock := make([]string, 0, len(m.Stock[tank.ID]))
		for _, ls := range m.Stock[tank.ID] {
			stock = append(stock, fmt.Sprintf("%dx %s", ls.Quantity, ls.Name))
		}
		tanks = append(tanks, views.TankRowData{
			ID:        tank.ID,
			Name:      tank.Name,
			Volume:    formatVolume(tank.VolumeLiter),
			WaterType: string(tank.WaterType),
			SetupDate: setup,
			Ranges:    ranges,
			Stock:     stock,
		})
	}
	return views.RenderTanksPanel(views.TanksPanelData{Tanks: tanks})
}

func (m Model) renderHistoryView() string {
	rows := make([]views.HistoryRowData, 0, len(m.History))
	for _, entry := range m.History {
		rows = append(rows, views.HistoryRowData{
			Date:   entry.Activity.ExecutionDate.Format(time.DateOnly),
			Title:  entry.Title,
			Action: string(entry.Activity.Action),
			Notes:  entry.Activity.Notes,
		})
	}
	return views.RenderHistoryPanel(views.HistoryPanelData{Rows: rows})
}

func (m Model) renderPaletteIfActive() string {
	if !m.Palette.Active {
		return ""
	}
	return "\n" + views.RenderCommandPalette(true, m.commandInput.Value())
}

func taskDetailData(tpl model.TaskTemplate) views.TaskDetailData {
	return views.TaskDetailData{
		ID:           tpl.ID,
		Title:        tpl.Title,
		TankName:     tpl.TankName,
		Category:     string(tpl.Category),
		Schedule:     scheduleLabel(tpl),
		NextDue:      formatNextDue(tpl.NextDue),
		NotifyAt:     string(tpl.NotificationTime),
		Status:       string(tpl.Status),
		Instructions: tpl.Instructions,
	}
}

func actionVerb(action model.Action) string {
	switch action {
	case model.ActionPerformed:
		return "performed"
	case model.ActionSkipped:
		return "skipped"
	case model.ActionSnoozed:
		return "snoozed"
	case model.ActionIgnored:
		return "ignored"
	default:
		return string(action)
	}
}

func isKnownView(v View) bool {
	switch v {
	case ViewDue, ViewTasks, ViewTanks, ViewHistory:
		return true
	default:
		return false
	}
}
