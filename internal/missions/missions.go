// Package missions generates, rotates and scores the daily missions.
package missions

import (
	"math/rand"
	"time"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/scoring"
)

// DailyCount is the number of missions live on any given day.
const DailyCount = 3

type View struct {
	Stats model.Stats
	Tasks []model.Task
	Now   time.Time
}

func (v View) today() model.DayStats {
	return v.Stats.Day(clock.DayKey(v.Now))
}

type Template struct {
	ID     string
	Title  string
	Reward int
	Check  func(View) bool
}

var pool = []Template{
	{ID: "complete_all", Title: "Complete all tasks on time", Reward: 50, Check: completeAll},
	{ID: "stars_100", Title: "Earn 100 stars today", Reward: 50, Check: func(v View) bool {
		return v.today().Stars >= 100
	}},
	{ID: "combo_5", Title: "Maintain 5+ combo", Reward: 30, Check: func(v View) bool {
		return v.Stats.CurrentCombo >= 5
	}},
	{ID: "complete_3", Title: "Complete 3 tasks", Reward: 30, Check: func(v View) bool {
		return v.today().Completed >= 3
	}},
	{ID: "no_skip", Title: "No skipped tasks", Reward: 40, Check: func(v View) bool {
		day := v.today()
		return day.Skipped == 0 && day.Completed > 0
	}},
	{ID: "same_category", Title: "All tasks in same category", Reward: 35, Check: sameCategory},
}

func Templates() []Template {
	return append([]Template(nil), pool...)
}

func Lookup(id string) (Template, bool) {
	for _, t := range pool {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

type Manager struct {
	rng *rand.Rand
}

// NewManager uses rng for draws; a nil rng seeds from the wall clock.
func NewManager(rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{rng: rng}
}

// RegenerateIfNewDay keeps current when its first mission is dated today and
// otherwise draws a fresh set. The bool reports whether a new set was drawn.
func (m *Manager) RegenerateIfNewDay(current []model.Mission, now time.Time) ([]model.Mission, bool) {
	today := clock.DayKey(now)
	if len(current) > 0 && current[0].Date == today {
		return current, false
	}
	order := m.rng.Perm(len(pool))
	out := make([]model.Mission, 0, DailyCount)
	for _, i := range order[:min(DailyCount, len(order))] {
		t := pool[i]
		out = append(out, model.Mission{ID: t.ID, Title: t.Title, Reward: t.Reward, Date: today})
	}
	return out, true
}

// Evaluate completes every open mission whose predicate now holds, paying its
// reward once into stats. It returns the updated missions, stats and the
// missions completed by this call.
func Evaluate(current []model.Mission, v View) ([]model.Mission, model.Stats, []model.Mission) {
	next := append([]model.Mission(nil), current...)
	stats := v.Stats
	var done []model.Mission
	for i := range next {
		if next[i].Completed {
			continue
		}
		t, ok := Lookup(next[i].ID)
		if !ok || !t.Check(View{Stats: stats, Tasks: v.Tasks, Now: v.Now}) {
			continue
		}
		next[i].Completed = true
		stats = scoring.AwardBonus(stats, next[i].Reward, v.Now)
		done = append(done, next[i])
	}
	return next, stats, done
}

// Progress is 100 when the mission is done or its predicate currently holds.
func Progress(m model.Mission, v View) int {
	if m.Completed {
		return 100
	}
	if t, ok := Lookup(m.ID); ok && t.Check(v) {
		return 100
	}
	return 0
}

func completeAll(v View) bool {
	done := 0
	for _, t := range v.Tasks {
		if t.Deleted {
			continue
		}
		if !t.Completed {
			return false
		}
		done++
	}
	return done > 0
}

// sameCategory counts every task completed today, including ones deleted
// since; a deletion does not undo the completion.
func sameCategory(v View) bool {
	var first model.Category
	n := 0
	for _, t := range v.Tasks {
		if !t.Completed || t.CompletedAt == nil || !clock.SameDay(v.Now, *t.CompletedAt) {
			continue
		}
		if n == 0 {
			first = t.Category
		} else if t.Category != first {
			return false
		}
		n++
	}
	return n >= 2
}
