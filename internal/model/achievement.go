package model

import "fmt"

type AchievementID string

const (
	AchievementFirstTask     AchievementID = "first_task"
	AchievementCombo5        AchievementID = "combo_5"
	AchievementCombo10       AchievementID = "combo_10"
	AchievementStreak7       AchievementID = "streak_7"
	AchievementStars100      AchievementID = "stars_100"
	AchievementPerfectionist AchievementID = "perfectionist"
	AchievementSpeedRunner   AchievementID = "speed_runner"
	AchievementNightOwl      AchievementID = "night_owl"
	AchievementEarlyBird     AchievementID = "early_bird"
	AchievementBalanced      AchievementID = "balanced"
)

var AchievementIDs = []AchievementID{
	AchievementFirstTask,
	AchievementCombo5,
	AchievementCombo10,
	AchievementStreak7,
	AchievementStars100,
	AchievementPerfectionist,
	AchievementSpeedRunner,
	AchievementNightOwl,
	AchievementEarlyBird,
	AchievementBalanced,
}

func (a AchievementID) IsValid() bool {
	for _, id := range AchievementIDs {
		if id == a {
			return true
		}
	}
	return false
}

// Achievements maps every known id to its unlocked flag.
type Achievements map[AchievementID]bool

func NewAchievements() Achievements {
	out := make(Achievements, len(AchievementIDs))
	for _, id := range AchievementIDs {
		out[id] = false
	}
	return out
}

func (a Achievements) Clone() Achievements {
	out := NewAchievements()
	for id, v := range a {
		out[id] = v
	}
	return out
}

func (a Achievements) UnlockedCount() int {
	n := 0
	for _, id := range AchievementIDs {
		if a[id] {
			n++
		}
	}
	return n
}

func (a Achievements) Validate() error {
	for id := range a {
		if !id.IsValid() {
			return fmt.Errorf("model: unknown achievement %q", id)
		}
	}
	return nil
}
