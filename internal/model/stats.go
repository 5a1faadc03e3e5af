package model

import (
	"errors"
	"time"
)

type DayStats struct {
	Completed int `json:"completed"`
	Stars     int `json:"stars"`
	Skipped   int `json:"skipped"`
}

// SpeedRunWindow counts completions inside a rolling ten minute window.
type SpeedRunWindow struct {
	Start *time.Time `json:"speedRunStart"`
	Count int        `json:"speedRunCount"`
}

type Stats struct {
	CurrentCombo       int                 `json:"currentCombo"`
	LongestCombo       int                 `json:"longestCombo"`
	TotalStars         int                 `json:"totalStars"`
	TotalCompleted     int                 `json:"totalCompleted"`
	TasksSkipped       int                 `json:"tasksSkipped"`
	ConsecutiveNoSkip  int                 `json:"consecutiveNoSkip"`
	DailyHistory       map[string]DayStats `json:"dailyHistory"`
	CategoryStats      map[Category]int    `json:"categoryStats"`
	LastCompletionDate string              `json:"lastCompletionDate,omitempty"`
	SpeedRunWindow
}

func NewStats() Stats {
	s := Stats{
		DailyHistory:  make(map[string]DayStats),
		CategoryStats: make(map[Category]int, len(Categories)),
	}
	for _, c := range Categories {
		s.CategoryStats[c] = 0
	}
	return s
}

// Clone returns a deep copy so callers can mutate without aliasing maps.
func (s Stats) Clone() Stats {
	out := s
	out.DailyHistory = make(map[string]DayStats, len(s.DailyHistory))
	for k, v := range s.DailyHistory {
		out.DailyHistory[k] = v
	}
	out.CategoryStats = make(map[Category]int, len(Categories))
	for _, c := range Categories {
		out.CategoryStats[c] = s.CategoryStats[c]
	}
	if s.Start != nil {
		start := *s.Start
		out.Start = &start
	}
	return out
}

func (s Stats) Day(key string) DayStats {
	return s.DailyHistory[key]
}

func (s Stats) Validate() error {
	counters := []int{s.CurrentCombo, s.LongestCombo, s.TotalStars, s.TotalCompleted, s.TasksSkipped, s.ConsecutiveNoSkip, s.Count}
	for _, v := range counters {
		if v < 0 {
			return errors.New("model: stats counters must be non-negative")
		}
	}
	if s.CurrentCombo > s.LongestCombo {
		return errors.New("model: currentCombo exceeds longestCombo")
	}
	for _, day := range s.DailyHistory {
		if day.Completed < 0 || day.Stars < 0 || day.Skipped < 0 {
			return errors.New("model: daily history counters must be non-negative")
		}
	}
	for c, v := range s.CategoryStats {
		if !c.IsValid() {
			return ErrInvalidCategory
		}
		if v < 0 {
			return errors.New("model: category counters must be non-negative")
		}
	}
	return nil
}
