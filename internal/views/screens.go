package views

import (
	"fmt"
	"strconv"
	"strings"
)

type TaskRowData struct {
	ID        string
	Name      string
	Icon      string
	Category  string
	Duration  int
	Stars     int
	Completed bool
	Timing    bool
}

type TaskPanelData struct {
	Items      []TaskRowData
	SelectedID string
	Pending    int
}

type TimerPanelData struct {
	TaskName     string
	Phase        string
	Clock        string
	ProgressView string
	ProgressPct  int
}

type CategoryCountData struct {
	Icon  string
	Name  string
	Count int
}

type StatsPanelData struct {
	TotalStars      int
	TotalCompleted  int
	TasksSkipped    int
	CurrentCombo    int
	LongestCombo    int
	CompletionRate  int
	AverageDuration int
	TodayCompleted  int
	TodayStars      int
	TodaySkipped    int
	HistoryView     string
	Categories      []CategoryCountData
}

type AchievementData struct {
	Icon        string
	Name        string
	Description string
	Unlocked    bool
}

type MissionData struct {
	Title     string
	Reward    int
	Completed bool
	Progress  int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func itoa(n int) string { return strconv.Itoa(n) }

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %d pending\n", data.Pending))
	b.WriteString("actions: [j/k]move [space]done [s]skip [d]delete [t]timer [a]add\n")
	if len(data.Items) == 0 {
		b.WriteString("\n(no tasks yet, press a to add one)")
		return b.String()
	}
	for _, item := range data.Items {
		cursor := " "
		if item.ID == data.SelectedID {
			cursor = ">"
		}
		check := "[ ]"
		name := item.Name
		if item.Completed {
			check = "[x]"
			name = doneStyle.Render(name)
		}
		line := fmt.Sprintf("%s %s %s %s %dm +%d★", cursor, check, item.Icon, name, item.Duration, item.Stars)
		if item.Timing {
			line += " ⏱"
		}
		b.WriteString("\n" + line)
	}
	return strings.TrimSpace(b.String())
}

func RenderTimerPanel(data TimerPanelData) string {
	var b strings.Builder
	b.WriteString("timer:\n")
	if data.TaskName == "" {
		b.WriteString("task: (none running, press t on a task)\n")
	} else {
		b.WriteString(fmt.Sprintf("task: %s\n", data.TaskName))
	}
	b.WriteString(fmt.Sprintf("state: %s\n", strings.ToUpper(data.Phase)))
	b.WriteString(fmt.Sprintf("remaining: %s\n", data.Clock))
	b.WriteString(fmt.Sprintf("progress: %s %d%%\n", data.ProgressView, data.ProgressPct))
	b.WriteString("actions: [space]pause/resume [x]stop [f]finish now")
	return b.String()
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("stars: %s  completed: %d  skipped: %d\n", starStyle.Render(itoa(data.TotalStars)), data.TotalCompleted, data.TasksSkipped))
	b.WriteString(fmt.Sprintf("combo: %d (best %d)\n", data.CurrentCombo, data.LongestCombo))
	b.WriteString(fmt.Sprintf("completion rate: %d%%  avg duration: %dm\n", data.CompletionRate, data.AverageDuration))
	b.WriteString(fmt.Sprintf("today: %d done, %d★, %d skipped\n", data.TodayCompleted, data.TodayStars, data.TodaySkipped))
	if len(data.Categories) > 0 {
		b.WriteString("\ncategories:\n")
		for _, c := range data.Categories {
			b.WriteString(fmt.Sprintf("%s %-9s %d\n", c.Icon, c.Name, c.Count))
		}
	}
	if data.HistoryView != "" {
		b.WriteString("\nlast 7 days:\n")
		b.WriteString(data.HistoryView)
	}
	return strings.TrimSpace(b.String())
}

// AchievementsMarkdown lists every achievement with its unlock state.
func AchievementsMarkdown(items []AchievementData) string {
	unlocked := 0
	for _, a := range items {
		if a.Unlocked {
			unlocked++
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("## Achievements (%d/%d)\n\n", unlocked, len(items)))
	for _, a := range items {
		if a.Unlocked {
			b.WriteString(fmt.Sprintf("- %s **%s**: %s\n", a.Icon, a.Name, a.Description))
		} else {
			b.WriteString(fmt.Sprintf("- 🔒 %s: _%s_\n", a.Name, a.Description))
		}
	}
	return b.String()
}

func MissionsMarkdown(items []MissionData) string {
	var b strings.Builder
	b.WriteString("## Daily missions\n\n")
	if len(items) == 0 {
		b.WriteString("_No missions today_\n")
		return b.String()
	}
	for _, m := range items {
		box := "[ ]"
		if m.Completed {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("- %s %s (+%d★, %d%%)\n", box, m.Title, m.Reward, m.Progress))
	}
	return b.String()
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
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
