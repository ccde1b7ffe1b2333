package update

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reefkeep/tankd/internal/model"
	"github.com/reefkeep/tankd/internal/scheduler"
	"github.com/reefkeep/tankd/internal/storage"
)

const (
	dataTimeout  = 5 * time.Second
	historyLimit = 50
)

var errNoScheduler = errors.New("update: scheduler not configured")

// refreshCmd reloads every repository-backed panel in one shot. The panels
// are small enough that partial reloads are not worth the bookkeeping.
func (m Model) refreshCmd() tea.Cmd {
	repo := m.repo
	now := m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
		defer cancel()

		due, err := repo.ListTemplatesDueOn(ctx, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		tasks, err := repo.ListTaskTemplates(ctx, storage.TemplateFilter{})
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		tanks, err := repo.ListTanks(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		activities, err := repo.ListActivities(ctx, storage.ActivityFilter{Limit: historyLimit})
		if err != nil {
			return AppErrorMsg{Err: err}
		}

		doneToday, err := repo.ListActivitiesOn(ctx, now())
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		ranges := make(map[int64][]model.ParameterRange, len(tanks))
		stock := make(map[int64][]model.Livestock, len(tanks))
		for _, tank := range tanks {
			pr, err := repo.ListParameterRanges(ctx, tank.ID)
			if err != nil {
				return AppErrorMsg{Err: err}
			}
			if len(pr) > 0 {
				ranges[tank.ID] = pr
			}
			ls, err := repo.ListLivestock(ctx, tank.ID)
			if err != nil {
				return AppErrorMsg{Err: err}
			}
			if len(ls) > 0 {
				stock[tank.ID] = ls
			}
		}

		titles := make(map[int64]string, len(tasks))
		for _, tpl := range tasks {
			titles[tpl.ID] = tpl.Title
		}
		withTitles := func(acts []model.TaskActivity) []HistoryEntry {
			out := make([]HistoryEntry, 0, len(acts))
			for _, act := range acts {
				title := titles[act.TemplateID]
				if title == "" {
					title = "(deleted task)"
				}
				out = append(out, HistoryEntry{Activity: act, Title: title})
			}
			return out
		}

		return DataRefreshedMsg{
			Due:       due,
			DoneToday: withTitles(doneToday),
			Tasks:     tasks,
			Tanks:     tanks,
			Ranges:    ranges,
			Stock:     stock,
			History:   withTitles(activities),
		}
	}
}

// respondCmd records a user response against a due task through the
// scheduler, which owns the journal and suppression side effects.
func (m Model) respondCmd(templateID int64, action model.Action, notes string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if svc == nil {
			return AppErrorMsg{Err: errNoScheduler}
		}
		ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
		defer cancel()
		tpl, err := svc.HandleResponse(ctx, templateID, action, notes)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return ResponseLoggedMsg{Template: tpl, Action: action}
	}
}

func (m Model) archiveCmd(templateID int64, title string) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dataTimeout)
		defer cancel()
		if err := repo.ArchiveTemplate(ctx, templateID); err != nil {
			return AppErrorMsg{Err: err}
		}
		return TemplateArchivedMsg{Title: title}
	}
}

func waitForDueEventCmd(events <-chan scheduler.DueEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return DueEventMsg{Event: ev}
	}
}
