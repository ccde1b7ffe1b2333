package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reefkeep/tankd/internal/commands"
	"github.com/reefkeep/tankd/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

// executePaletteCommand runs palette commands synchronously against the
// repository and scheduler. The data sets involved are tiny, so blocking the
// update loop for one bounded call keeps the handlers simple.
func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := m.Palette.Input
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
	defer cancel()

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			tpl, err := m.quickAddTemplate(ctx, a.Title)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("added task #%d: %s", tpl.ID, tpl.Title)}, nil
		},
		Log: func(a commands.LogArgs) (commands.Result, error) {
			action := model.ActionPerformed
			if a.Action == "skipped" {
				action = model.ActionSkipped
			}
			tpl, err := m.respond(ctx, a.TemplateID, action, a.Notes)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s: %s", actionVerb(action), tpl.Title)}, nil
		},
		Snooze: func(a commands.TemplateArgs) (commands.Result, error) {
			tpl, err := m.respond(ctx, a.TemplateID, model.ActionSnoozed, "")
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("snoozed %s until %s", tpl.Title, tpl.NotificationTime)}, nil
		},
		Ignore: func(a commands.TemplateArgs) (commands.Result, error) {
			tpl, err := m.respond(ctx, a.TemplateID, model.ActionIgnored, "")
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("ignoring %s for today", tpl.Title)}, nil
		},
		Archive: func(a commands.TemplateArgs) (commands.Result, error) {
			if err := m.repo.ArchiveTemplate(ctx, a.TemplateID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("archived task #%d", a.TemplateID)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "due":
				m.CurrentView = ViewDue
			case "tasks":
				m.CurrentView = ViewTasks
			case "tanks":
				m.CurrentView = ViewTanks
			case "history":
				m.CurrentView = ViewHistory
			}
			return commands.Result{Message: "showing " + a.Subject}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}

	m.Status = StatusBar{Text: res.Message, IsError: false}
	m.notify("Command", res.Message, "info")
	return m, m.refreshCmd()
}

func (m Model) respond(ctx context.Context, templateID int64, action model.Action, notes string) (model.TaskTemplate, error) {
	if m.svc == nil {
		return model.TaskTemplate{}, errNoScheduler
	}
	return m.svc.HandleResponse(ctx, templateID, action, notes)
}

// quickAddTemplate creates a one-off task due today on the first tank. The
// palette only captures a title; everything else is edited afterwards.
func (m Model) quickAddTemplate(ctx context.Context, title string) (model.TaskTemplate, error) {
	tanks, err := m.repo.ListTanks(ctx)
	if err != nil {
		return model.TaskTemplate{}, err
	}
	if len(tanks) == 0 {
		return model.TaskTemplate{}, fmt.Errorf("add a tank before adding tasks")
	}
	today := model.Midnight(m.now())
	tpl := model.TaskTemplate{
		TankID:    tanks[0].ID,
		Category:  model.CategoryMiscellaneous,
		Title:     title,
		Schedule:  model.ScheduleOneOff,
		NextDue:   &today,
		Status:    model.StatusActive,
		CreatedAt: m.now().UTC(),
	}
	if err := m.repo.SaveTaskTemplate(ctx, &tpl); err != nil {
		return model.TaskTemplate{}, err
	}
	return tpl, nil
}
