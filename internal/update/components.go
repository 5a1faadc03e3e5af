package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/hustle/internal/achievements"
	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/engine"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/views"
)

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "Day", Width: 12},
		{Title: "Done", Width: 6},
		{Title: "Stars", Width: 6},
		{Title: "Skipped", Width: 8},
	}
	m.historyTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithHeight(8))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.timerProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(36))
	m.helpModel = help.New()
	m.rewardsView = viewport.New(54, 20)
}

func (m *Model) syncBubbleData() {
	snap := m.Snapshot
	rows := make([]table.Row, 0, 7)
	for _, day := range clock.PreviousDays(snap.Now, 7) {
		d := snap.Stats.Day(day)
		rows = append(rows, table.Row{day, fmt.Sprint(d.Completed), fmt.Sprint(d.Stars), fmt.Sprint(d.Skipped)})
	}
	m.historyTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}

	m.rewardsView.SetContent(views.RenderMarkdown(rewardsMarkdown(snap)))
}

func rewardsMarkdown(snap engine.Snapshot) string {
	missions := make([]views.MissionData, 0, len(snap.Missions))
	for _, ms := range snap.Missions {
		missions = append(missions, views.MissionData{Title: ms.Title, Reward: ms.Reward, Completed: ms.Completed, Progress: ms.Progress})
	}
	defs := achievements.Catalog()
	items := make([]views.AchievementData, 0, len(defs))
	for _, d := range defs {
		items = append(items, views.AchievementData{Icon: d.Icon, Name: d.Name, Description: d.Description, Unlocked: snap.Achievements[d.ID]})
	}
	return views.MissionsMarkdown(missions) + "\n" + views.AchievementsMarkdown(items)
}

// setSnapshot installs next and announces achievements and missions that
// flipped since the previous snapshot.
func (m *Model) setSnapshot(next engine.Snapshot) {
	prev := m.Snapshot
	m.Snapshot = next
	m.clampCursor()

	for _, id := range model.AchievementIDs {
		if next.Achievements[id] && !prev.Achievements[id] {
			name := string(id)
			if d, ok := achievements.Lookup(id); ok {
				name = d.Icon + " " + d.Name
			}
			m.notify("Achievement unlocked", name, "info")
		}
	}
	done := make(map[string]bool, len(prev.Missions))
	for _, ms := range prev.Missions {
		if ms.Completed {
			done[ms.Date+"/"+ms.ID] = true
		}
	}
	for _, ms := range next.Missions {
		if ms.Completed && !done[ms.Date+"/"+ms.ID] {
			m.notify("Mission complete", fmt.Sprintf("%s (+%d★)", ms.Title, ms.Reward), "info")
		}
	}
}

func (m *Model) clampCursor() {
	active := m.Snapshot.Active
	if len(active) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	if m.SelectedTaskID != "" {
		for i, t := range active {
			if t.ID == m.SelectedTaskID {
				m.Cursor = i
				return
			}
		}
	}
	if m.Cursor >= len(active) {
		m.Cursor = len(active) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.SelectedTaskID = active[m.Cursor].ID
}

func (m *Model) moveCursor(delta int) {
	active := m.Snapshot.Active
	if len(active) == 0 {
		return
	}
	m.Cursor = (m.Cursor + delta + len(active)) % len(active)
	m.SelectedTaskID = active[m.Cursor].ID
}

func (m Model) selectedTask() (model.Task, bool) {
	for _, t := range m.Snapshot.Active {
		if t.ID == m.SelectedTaskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m Model) taskName(id string) string {
	for _, t := range m.Snapshot.Tasks {
		if t.ID == id {
			return t.Name
		}
	}
	return strings.TrimSpace(id)
}
