package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/views"
)

func waitForEngineCmd(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return EngineChangedMsg{}
	}
}

func missionCheckCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg { return MissionCheckMsg{} })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEngineCmd(m.engine.Changes()), missionCheckCmd(m.missionEvery))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handle(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.openPalette("")
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Timer:
			m.CurrentView = ViewTimer
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Rewards:
			m.CurrentView = ViewRewards
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed), nil
		case ViewTimer:
			return m.handleTimerKey(typed), nil
		case ViewRewards:
			var cmd tea.Cmd
			m.rewardsView, cmd = m.rewardsView.Update(typed)
			return m, cmd
		}
	case EngineChangedMsg:
		m.setSnapshot(m.engine.Snapshot())
		return m, waitForEngineCmd(m.engine.Changes())
	case MissionCheckMsg:
		if out := m.engine.RotateMissions(); out.Applied {
			m.setSnapshot(out.Snapshot)
			m.notify("New day", "fresh daily missions are available", "info")
		}
		return m, missionCheckCmd(m.missionEvery)
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
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderTaskDetail()
	case ViewTimer:
		leftPane = m.renderTimerView()
		rightPane = m.renderTaskDetail()
	case ViewStats:
		leftPane = m.renderStatsView()
		rightPane = "last 7 days:\n" + m.historyTable.View()
	case ViewRewards:
		leftPane = m.rewardsView.View()
		rightPane = fmt.Sprintf("achievements: %d/%d", m.Snapshot.Achievements.UnlockedCount(), len(model.AchievementIDs))
	}
	rightPane = strings.TrimSpace(strings.Join([]string{
		rightPane,
		views.RenderCommandPalette(m.Palette.Active, m.Palette.Input),
		m.renderHelpIfVisible(),
	}, "\n"))

	notification := ""
	if n := len(m.Notifications); n > 0 {
		last := m.Notifications[n-1]
		notification = views.RenderNotification(last.Level, last.Title+": "+last.Body)
	}

	stats := m.Snapshot.Stats
	return views.RenderApp(views.AppData{
		Header:       views.RenderHeader(string(m.CurrentView), stats.TotalStars, stats.CurrentCombo, stats.LongestCombo),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: %s tasks | %s timer | %s stats | %s rewards | / cmd | %s help | %s quit", m.Keys.Tasks, m.Keys.Timer, m.Keys.Stats, m.Keys.Rewards, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderStatsView() string {
	snap := m.Snapshot
	cats := make([]views.CategoryCountData, 0, len(model.Categories))
	for _, c := range model.Categories {
		cats = append(cats, views.CategoryCountData{Icon: c.Icon(), Name: string(c), Count: snap.Stats.CategoryStats[c]})
	}
	return views.RenderStatsPanel(views.StatsPanelData{
		TotalStars:      snap.Stats.TotalStars,
		TotalCompleted:  snap.Stats.TotalCompleted,
		TasksSkipped:    snap.Stats.TasksSkipped,
		CurrentCombo:    snap.Stats.CurrentCombo,
		LongestCombo:    snap.Stats.LongestCombo,
		CompletionRate:  snap.CompletionRate(),
		AverageDuration: snap.AverageDuration(),
		TodayCompleted:  snap.Today.Completed,
		TodayStars:      snap.Today.Stars,
		TodaySkipped:    snap.Today.Skipped,
		Categories:      cats,
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewTimer, ViewStats, ViewRewards:
		return true
	default:
		return false
	}
}
