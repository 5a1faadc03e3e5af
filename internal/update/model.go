package update

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/hustle/internal/engine"
)

type View string

const (
	ViewTasks   View = "Tasks"
	ViewTimer   View = "Timer"
	ViewStats   View = "Stats"
	ViewRewards View = "Rewards"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks   string
	Timer   string
	Stats   string
	Rewards string
	Help    string
	Quit    string
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

// Options configures a Model. Zero values fall back to sane defaults.
type Options struct {
	DesktopNotifications bool
	Notifier             DesktopNotifier
	ExportDir            string
	MissionCheckInterval time.Duration
}

type Model struct {
	CurrentView    View
	Cursor         int
	SelectedTaskID string
	Snapshot       engine.Snapshot
	Palette        CommandPaletteState
	HelpVisible    bool
	Notifications  []Notification
	DesktopEnabled bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	engine        *engine.Engine
	notifier      DesktopNotifier
	exportDir     string
	missionEvery  time.Duration
	commandInput  textinput.Model
	timerProgress progress.Model
	historyTable  table.Model
	helpModel     help.Model
	rewardsView   viewport.Model
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

// EngineChangedMsg reports a mutation the model did not initiate, such as a
// timer tick or expiry.
type EngineChangedMsg struct{}

// MissionCheckMsg asks the engine to rotate missions after midnight.
type MissionCheckMsg struct{}

func NewModel(eng *engine.Engine, opts Options) Model {
	m := Model{
		CurrentView:    ViewTasks,
		engine:         eng,
		DesktopEnabled: opts.DesktopNotifications,
		notifier:       NoopDesktopNotifier{},
		exportDir:      opts.ExportDir,
		missionEvery:   opts.MissionCheckInterval,
		Keys: GlobalKeyMap{
			Tasks:   "1",
			Timer:   "2",
			Stats:   "3",
			Rewards: "4",
			Help:    "?",
			Quit:    "q",
		},
	}
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	if m.missionEvery <= 0 {
		m.missionEvery = time.Minute
	}
	m.initBubbleComponents()
	m.Snapshot = eng.Snapshot()
	m.clampCursor()
	m.syncBubbleData()
	return m
}
