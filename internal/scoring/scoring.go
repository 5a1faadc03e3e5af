// Package scoring turns completion and skip events into updated stats.
package scoring

import (
	"time"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/model"
)

const (
	MinutesPerStar = 5
	SpeedRunWindow = 10 * time.Minute
)

// Stars awarded for completing a task of the given duration in minutes.
func Stars(duration int) int {
	return max(1, duration/MinutesPerStar)
}

// OnComplete applies one completion. The input stats are not modified.
func OnComplete(in model.Stats, task model.Task, now time.Time) (model.Stats, int) {
	stats := in.Clone()
	stars := Stars(task.Duration)
	today := clock.DayKey(now)

	stats.TotalStars += stars
	stats.TotalCompleted++
	stats.CurrentCombo++
	stats.ConsecutiveNoSkip++
	stats.LongestCombo = max(stats.LongestCombo, stats.CurrentCombo)

	day := stats.DailyHistory[today]
	day.Completed++
	day.Stars += stars
	stats.DailyHistory[today] = day

	if task.Category.IsValid() {
		stats.CategoryStats[task.Category]++
	}
	stats.SpeedRunWindow = advanceWindow(stats.SpeedRunWindow, now)
	stats.LastCompletionDate = today
	return stats, stars
}

// OnSkip applies one skip. Stars are never taken away.
func OnSkip(in model.Stats, now time.Time) model.Stats {
	stats := in.Clone()
	today := clock.DayKey(now)

	stats.CurrentCombo = 0
	stats.TasksSkipped++
	stats.ConsecutiveNoSkip = 0

	day := stats.DailyHistory[today]
	day.Skipped++
	stats.DailyHistory[today] = day

	stats.SpeedRunWindow = model.SpeedRunWindow{}
	return stats
}

// AwardBonus adds mission rewards to the running total and today's history.
func AwardBonus(in model.Stats, stars int, now time.Time) model.Stats {
	if stars <= 0 {
		return in
	}
	stats := in.Clone()
	today := clock.DayKey(now)
	stats.TotalStars += stars
	day := stats.DailyHistory[today]
	day.Stars += stars
	stats.DailyHistory[today] = day
	return stats
}

func advanceWindow(w model.SpeedRunWindow, now time.Time) model.SpeedRunWindow {
	if w.Start != nil && now.Sub(*w.Start) <= SpeedRunWindow && !now.Before(*w.Start) {
		return model.SpeedRunWindow{Start: w.Start, Count: w.Count + 1}
	}
	start := now
	return model.SpeedRunWindow{Start: &start, Count: 1}
}
