package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/hustle/internal/engine"
	"github.com/sandeepkv93/hustle/internal/scoring"
	"github.com/sandeepkv93/hustle/internal/views"
)

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case " ", "enter":
		if t, ok := m.selectedTask(); ok {
			m.applyOutcome(m.engine.ToggleComplete(t.ID), toggleMessage(t.Completed, t.Name))
		}
	case "s":
		if t, ok := m.selectedTask(); ok {
			m.applyOutcome(m.engine.SkipTask(t.ID), "skipped: "+t.Name+" (combo reset)")
		}
	case "d":
		if t, ok := m.selectedTask(); ok {
			m.applyOutcome(m.engine.DeleteTask(t.ID), "deleted: "+t.Name)
		}
	case "t":
		if t, ok := m.selectedTask(); ok {
			out := m.engine.StartTimer(t.ID)
			if m.applyOutcome(out, "timer started: "+t.Name) {
				m.CurrentView = ViewTimer
			} else {
				m.Status = StatusBar{Text: "timer needs an open task", IsError: true}
			}
		}
	case "a":
		m.openPalette("add ")
	}
	return m
}

func toggleMessage(wasCompleted bool, name string) string {
	if wasCompleted {
		return "reopened: " + name
	}
	return "completed: " + name
}

// applyOutcome installs the outcome's snapshot and reports whether the event
// changed anything.
func (m *Model) applyOutcome(out engine.Outcome, message string) bool {
	m.setSnapshot(out.Snapshot)
	if !out.Applied {
		return false
	}
	if out.Stars > 0 {
		message = fmt.Sprintf("%s +%d★ (combo x%d)", message, out.Stars, out.Snapshot.Stats.CurrentCombo)
	}
	m.Status = StatusBar{Text: strings.TrimSpace(message)}
	return true
}

func (m Model) renderTasksView() string {
	snap := m.Snapshot
	rows := make([]views.TaskRowData, 0, len(snap.Active))
	for _, t := range snap.Active {
		rows = append(rows, views.TaskRowData{
			ID:        t.ID,
			Name:      t.Name,
			Icon:      t.Category.Icon(),
			Category:  string(t.Category),
			Duration:  t.Duration,
			Stars:     scoring.Stars(t.Duration),
			Completed: t.Completed,
			Timing:    snap.Timer.Active && snap.Timer.TaskID == t.ID,
		})
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		Items:      rows,
		SelectedID: m.SelectedTaskID,
		Pending:    len(snap.Pending()),
	})
}

func (m Model) renderTaskDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("id: %s\n", t.ID))
	b.WriteString(fmt.Sprintf("category: %s %s\n", t.Category.Icon(), t.Category))
	b.WriteString(fmt.Sprintf("duration: %dm (+%d★)\n", t.Duration, scoring.Stars(t.Duration)))
	b.WriteString(fmt.Sprintf("created: %s\n", t.CreatedAt.In(m.Snapshot.Now.Location()).Format("2006-01-02 15:04")))
	if t.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("completed: %s\n", t.CompletedAt.In(m.Snapshot.Now.Location()).Format("2006-01-02 15:04")))
	}
	if strings.TrimSpace(t.Description) != "" {
		b.WriteString("\n" + views.RenderMarkdown(t.Description))
	}
	return strings.TrimSpace(b.String())
}
