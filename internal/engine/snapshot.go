package engine

import (
	"time"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/missions"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/timer"
)

type MissionStatus struct {
	model.Mission
	Progress int
}

// Snapshot is the derived state handed to the presentation layer.
type Snapshot struct {
	Now          time.Time
	Tasks        []model.Task
	Active       []model.Task
	Stats        model.Stats
	Today        model.DayStats
	Achievements model.Achievements
	Missions     []MissionStatus
	Timer        timer.State
}

// Pending returns active tasks that are not completed.
func (s Snapshot) Pending() []model.Task {
	out := make([]model.Task, 0, len(s.Active))
	for _, t := range s.Active {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// CompletionRate is completions over active tasks, in percent.
func (s Snapshot) CompletionRate() int {
	if len(s.Active) == 0 {
		return 0
	}
	return int(float64(s.Stats.TotalCompleted)/float64(len(s.Active))*100 + 0.5)
}

// AverageDuration is the mean duration of completed active tasks in minutes.
func (s Snapshot) AverageDuration() int {
	sum, n := 0, 0
	for _, t := range s.Active {
		if t.Completed {
			sum += t.Duration
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(float64(sum)/float64(n) + 0.5)
}

// Outcome is returned by every inbound event. Applied is false when the
// event targeted an unknown or soft-deleted task or was otherwise a no-op.
type Outcome struct {
	Snapshot          Snapshot
	Applied           bool
	Task              *model.Task
	Stars             int
	Unlocked          []model.AchievementID
	CompletedMissions []model.Mission
}

func (e *Engine) outcomeLocked(now time.Time) Outcome {
	return Outcome{Snapshot: e.snapshotLocked(now)}
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	st := e.stateLocked()
	view := missions.View{Stats: st.Stats, Tasks: st.Tasks, Now: now}
	ms := make([]MissionStatus, 0, len(st.Missions))
	for _, m := range st.Missions {
		ms = append(ms, MissionStatus{Mission: m, Progress: missions.Progress(m, view)})
	}
	active := make([]model.Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		if t.Active() {
			active = append(active, t)
		}
	}
	return Snapshot{
		Now:          now,
		Tasks:        st.Tasks,
		Active:       active,
		Stats:        st.Stats,
		Today:        st.Stats.Day(clock.DayKey(now)),
		Achievements: st.Achievements,
		Missions:     ms,
		Timer:        e.timer.State(),
	}
}
