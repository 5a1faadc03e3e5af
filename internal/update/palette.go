package update

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/hustle/internal/commands"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/snapshot"
	"github.com/sandeepkv93/hustle/internal/tasks"
)

func (m *Model) openPalette(prefix string) {
	m.Palette.Active = true
	m.Palette.Input = prefix
	m.commandInput.Focus()
	m.commandInput.SetValue(prefix)
	m.commandInput.CursorEnd()
	m.Status = StatusBar{Text: "command palette active"}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

// resolve accepts "." for the selected task, a full id or a unique prefix.
func (m Model) resolve(ref string) (model.Task, error) {
	if ref == "." {
		if t, ok := m.selectedTask(); ok {
			return t, nil
		}
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no task selected"}
	}
	t, ok := m.engine.Resolve(ref)
	if !ok {
		return model.Task{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task matches %q", ref)}
	}
	return t, nil
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.closePalette()
		return m
	}

	res, err := commands.Execute(cmd, m.paletteHandlers())
	m.closePalette()
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m
	}
	if res.Message != "" {
		m.Status = StatusBar{Text: res.Message}
	}
	return m
}

func (m *Model) paletteHandlers() commands.Handlers {
	withTarget := func(action func(model.Task) (string, error)) func(commands.TargetArgs) (commands.Result, error) {
		return func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			msg, err := action(t)
			return commands.Result{Message: msg}, err
		}
	}
	timer := func(run func() bool, msg string) func() (commands.Result, error) {
		return func() (commands.Result, error) {
			if !run() {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no timer to " + msg}
			}
			return commands.Result{Message: "timer: " + msg}, nil
		}
	}

	return commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			out, err := m.engine.CreateTask(a.Name, a.Description, a.Duration, a.Category)
			if err != nil {
				return commands.Result{}, err
			}
			m.setSnapshot(out.Snapshot)
			m.SelectedTaskID = out.Task.ID
			m.clampCursor()
			m.CurrentView = ViewTasks
			return commands.Result{Message: fmt.Sprintf("added: %s %s (%dm)", a.Category.Icon(), a.Name, a.Duration)}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			out, err := m.engine.EditTask(t.ID, tasks.Patch{Name: a.Name, Description: a.Description, Duration: a.Duration, Category: a.Category})
			if err != nil {
				return commands.Result{}, err
			}
			m.setSnapshot(out.Snapshot)
			return commands.Result{Message: "updated: " + out.Task.Name}, nil
		},
		Done: withTarget(func(t model.Task) (string, error) {
			if t.Completed {
				return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: t.Name + " is already completed"}
			}
			out := m.engine.ToggleComplete(t.ID)
			m.applyOutcome(out, "completed: "+t.Name)
			return m.Status.Text, nil
		}),
		Skip: withTarget(func(t model.Task) (string, error) {
			m.applyOutcome(m.engine.SkipTask(t.ID), "skipped: "+t.Name)
			return m.Status.Text, nil
		}),
		Delete: withTarget(func(t model.Task) (string, error) {
			m.applyOutcome(m.engine.DeleteTask(t.ID), "deleted: "+t.Name)
			return m.Status.Text, nil
		}),
		Start: withTarget(func(t model.Task) (string, error) {
			if !m.applyOutcome(m.engine.StartTimer(t.ID), "timer started: "+t.Name) {
				return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: t.Name + " cannot be timed"}
			}
			m.CurrentView = ViewTimer
			return m.Status.Text, nil
		}),
		Pause: timer(func() bool {
			out := m.engine.PauseTimer()
			m.setSnapshot(out.Snapshot)
			return out.Applied
		}, "pause"),
		Resume: timer(func() bool {
			out := m.engine.ResumeTimer()
			m.setSnapshot(out.Snapshot)
			return out.Applied
		}, "resume"),
		Stop: timer(func() bool {
			out := m.engine.StopTimer()
			m.setSnapshot(out.Snapshot)
			return out.Applied
		}, "stop"),
		Finish: timer(func() bool {
			out := m.engine.CompleteTimerNow()
			m.setSnapshot(out.Snapshot)
			return out.Applied
		}, "finish"),
		Export: func(a commands.PathArgs) (commands.Result, error) {
			now := m.Snapshot.Now
			path := strings.TrimSpace(a.Path)
			if path == "" {
				path = filepath.Join(m.exportDir, snapshot.DefaultFileName(now))
			}
			if err := snapshot.WriteFile(path, snapshot.Export(m.engine.State(), now)); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "exported to " + path}, nil
		},
		Import: func(a commands.PathArgs) (commands.Result, error) {
			raw, err := snapshot.ReadFile(context.Background(), a.Path)
			if err != nil {
				return commands.Result{}, err
			}
			st, err := snapshot.Import(raw, m.engine.State())
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.engine.Replace(st); err != nil {
				return commands.Result{}, err
			}
			m.Snapshot = m.engine.Snapshot()
			m.SelectedTaskID = ""
			m.Cursor = 0
			m.clampCursor()
			return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", len(st.Tasks), a.Path)}, nil
		},
	}
}
