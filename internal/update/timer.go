package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/hustle/internal/views"
)

func (m Model) handleTimerKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case " ":
		out := m.engine.PauseTimer()
		text := "timer resumed"
		if out.Snapshot.Timer.Paused {
			text = "timer paused"
		}
		m.applyOutcome(out, text)
	case "x":
		m.applyOutcome(m.engine.StopTimer(), "timer stopped")
	case "f":
		out := m.engine.CompleteTimerNow()
		name := ""
		if out.Task != nil {
			name = out.Task.Name
		}
		m.applyOutcome(out, "finished: "+name)
	}
	return m
}

func (m Model) renderTimerView() string {
	st := m.Snapshot.Timer
	name := ""
	if st.Active {
		name = m.taskName(st.TaskID)
	}
	pct := st.Progress()
	return views.RenderTimerPanel(views.TimerPanelData{
		TaskName:     name,
		Phase:        st.Phase,
		Clock:        formatDuration(st.Remaining),
		ProgressView: m.timerProgress.ViewAs(pct),
		ProgressPct:  int(pct * 100),
	})
}
