package views

import (
	"fmt"
	"strings"
)

type DueItemData struct {
	ID       int64
	Title    string
	TankName string
	Category string
	NotifyAt string
}

type DuePanelData struct {
	Day        string
	Items      []DueItemData
	Done       []HistoryRowData
	SelectedID int64
}

type TaskRowData struct {
	ID       int64
	Title    string
	TankName string
	Category string
	Schedule string
	NextDue  string
	Status   string
}

type TasksPanelData struct {
	TableView string
	Count     int
}

type TankRowData struct {
	ID        int64
	Name      string
	Volume    string
	WaterType string
	SetupDate string
	Ranges    []string
	Stock     []string
}

type TanksPanelData struct {
	Tanks []TankRowData
}

type HistoryRowData struct {
	Date   string
	Title  string
	Action string
	Notes  string
}

type HistoryPanelData struct {
	Rows []HistoryRowData
}

type TaskDetailData struct {
	ID           int64
	Title        string
	TankName     string
	Category     string
	Schedule     string
	NextDue      string
	NotifyAt     string
	Status       string
	Instructions string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderDuePanel(data DuePanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("due on %s:\n", data.Day))
	b.WriteString("actions: [j/k]move [p]performed [s]skipped [n]snooze [i]ignore\n")
	if len(data.Items) == 0 {
		b.WriteString("(nothing due, the tanks are happy)\n")
	}
	for _, item := range data.Items {
		cursor := " "
		if data.SelectedID == item.ID {
			cursor = ">"
		}
		line := fmt.Sprintf("%s [DUE] #%d %s (%s / %s)", cursor, item.ID, item.Title, item.TankName, item.Category)
		if item.NotifyAt != "" {
			line += " @" + item.NotifyAt
		}
		b.WriteString(line + "\n")
	}
	if len(data.Done) > 0 {
		b.WriteString("\ndone today:\n")
		for _, row := range data.Done {
			b.WriteString(fmt.Sprintf("  %-10s %s\n", strings.ToUpper(row.Action), row.Title))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks (%d):\n", data.Count))
	b.WriteString("actions: [j/k]move [a]archive [enter]detail\n")
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderTanksPanel(data TanksPanelData) string {
	var b strings.Builder
	b.WriteString("tanks:\n")
	if len(data.Tanks) == 0 {
		b.WriteString("(no tanks configured)")
		return b.String()
	}
	for _, tank := range data.Tanks {
		b.WriteString(fmt.Sprintf("#%d %s | %s | %s", tank.ID, tank.Name, tank.Volume, tank.WaterType))
		if tank.SetupDate != "" {
			b.WriteString(" | since " + tank.SetupDate)
		}
		b.WriteString("\n")
		for _, rng := range tank.Ranges {
			b.WriteString("    " + rng + "\n")
		}
		for _, stock := range tank.Stock {
			b.WriteString("    " + stock + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderHistoryPanel(data HistoryPanelData) string {
	var b strings.Builder
	b.WriteString("history (newest first):\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no activity recorded)")
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(fmt.Sprintf("%s  %-10s %s", row.Date, strings.ToUpper(row.Action), row.Title))
		if row.Notes != "" {
			b.WriteString("  " + row.Notes)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderTaskDetail(data TaskDetailData) string {
	if data.ID == 0 {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("id: %d\n", data.ID))
	b.WriteString(fmt.Sprintf("title: %s\n", data.Title))
	b.WriteString(fmt.Sprintf("tank: %s\n", data.TankName))
	b.WriteString(fmt.Sprintf("category: %s\n", data.Category))
	b.WriteString(fmt.Sprintf("schedule: %s\n", data.Schedule))
	b.WriteString(fmt.Sprintf("next due: %s\n", data.NextDue))
	if data.NotifyAt != "" {
		b.WriteString(fmt.Sprintf("notify at: %s\n", data.NotifyAt))
	}
	b.WriteString(fmt.Sprintf("status: %s\n", data.Status))
	if strings.TrimSpace(data.Instructions) != "" {
		b.WriteString("\ninstructions:\n")
		b.WriteString(RenderMarkdown(data.Instructions))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
