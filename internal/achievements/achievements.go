// Package achievements evaluates the fixed achievement predicates.
package achievements

import (
	"time"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/model"
)

// View is the read-only state predicates are evaluated against.
type View struct {
	Stats model.Stats
	Tasks []model.Task
	Now   time.Time
}

type Predicate func(View) bool

type Definition struct {
	ID          model.AchievementID
	Name        string
	Description string
	Icon        string
	Check       Predicate
}

var catalog = []Definition{
	{model.AchievementFirstTask, "First Step", "Complete your first task", "🎯", func(v View) bool {
		return v.Stats.TotalCompleted >= 1
	}},
	{model.AchievementCombo5, "On Fire", "Reach 5 combo", "🔥", func(v View) bool {
		return v.Stats.CurrentCombo >= 5
	}},
	{model.AchievementCombo10, "Combo Master", "Reach 10 combo", "⚡", func(v View) bool {
		return v.Stats.CurrentCombo >= 10
	}},
	{model.AchievementStreak7, "Week Warrior", "Complete tasks for 7 days", "📅", streak7},
	{model.AchievementStars100, "Century Club", "Earn 100 stars", "💯", func(v View) bool {
		return v.Stats.TotalStars >= 100
	}},
	{model.AchievementPerfectionist, "No Mistakes", "Complete 10 tasks without skipping", "✨", func(v View) bool {
		return v.Stats.ConsecutiveNoSkip >= 10
	}},
	{model.AchievementSpeedRunner, "Lightning Fast", "Complete 3 tasks in under 10 minutes", "⚡", func(v View) bool {
		return v.Stats.SpeedRunWindow.Count >= 3
	}},
	{model.AchievementNightOwl, "Night Owl", "Complete a task after 11 PM", "🌙", func(v View) bool {
		hour, ok := lastCompletionHour(v)
		return ok && (hour >= 23 || hour < 1)
	}},
	{model.AchievementEarlyBird, "Early Riser", "Complete a task before 7 AM", "🌅", func(v View) bool {
		hour, ok := lastCompletionHour(v)
		return ok && hour < 7
	}},
	{model.AchievementBalanced, "Well Rounded", "Complete tasks in all 5 categories", "🎨", func(v View) bool {
		for _, c := range model.Categories {
			if v.Stats.CategoryStats[c] <= 0 {
				return false
			}
		}
		return true
	}},
}

// Catalog returns the definitions in display order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

func Lookup(id model.AchievementID) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Evaluate returns the updated unlock map and the ids newly unlocked by this
// call. Already unlocked ids are never reported again.
func Evaluate(current model.Achievements, v View) (model.Achievements, []model.AchievementID) {
	next := current.Clone()
	var unlocked []model.AchievementID
	for _, d := range catalog {
		if next[d.ID] {
			continue
		}
		if d.Check(v) {
			next[d.ID] = true
			unlocked = append(unlocked, d.ID)
		}
	}
	return next, unlocked
}

func streak7(v View) bool {
	for _, day := range clock.PreviousDays(v.Now, 7) {
		if v.Stats.DailyHistory[day].Completed <= 0 {
			return false
		}
	}
	return true
}

// lastCompletionHour reads the hour of the most recent completion in the
// view's location.
func lastCompletionHour(v View) (int, bool) {
	var latest *time.Time
	for i := range v.Tasks {
		t := v.Tasks[i]
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		if latest == nil || !t.CompletedAt.Before(*latest) {
			latest = t.CompletedAt
		}
	}
	if latest == nil {
		return 0, false
	}
	loc := v.Now.Location()
	return latest.In(loc).Hour(), true
}
