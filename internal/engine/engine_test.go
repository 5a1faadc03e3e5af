package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/scheduler"
	"github.com/sandeepkv93/hustle/internal/tasks"
)

var morning = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

type countingSaver struct {
	calls int
	last  model.State
	err   error
}

func (s *countingSaver) SaveState(_ context.Context, st model.State) error {
	s.calls++
	s.last = st
	return s.err
}

func newTestEngine(t *testing.T, st model.State, opts Options) (*Engine, *clock.Manual) {
	t.Helper()
	c := clock.NewManual(morning)
	opts.Clock = c
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(st, opts)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, c
}

// quietState pins missions that a handful of completions cannot finish, so
// star totals stay predictable.
func quietState() model.State {
	st := model.NewState()
	st.Missions = todaysMissions("stars_100", "combo_5", "complete_3")
	return st
}

func mustCreate(t *testing.T, e *Engine, name string, duration int, cat model.Category) model.Task {
	t.Helper()
	out, err := e.CreateTask(name, "", duration, cat)
	if err != nil || out.Task == nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return *out.Task
}

func TestEndToEndCompleteThenSkip(t *testing.T) {
	e, _ := newTestEngine(t, quietState(), Options{})
	a := mustCreate(t, e, "A", 30, model.CategoryHealth)
	b := mustCreate(t, e, "B", 10, model.CategoryWork)

	out := e.ToggleComplete(a.ID)
	stats := out.Snapshot.Stats
	if !out.Applied || out.Stars != 6 {
		t.Fatalf("unexpected completion outcome: %+v", out)
	}
	if stats.TotalStars != 6 || stats.TotalCompleted != 1 || stats.CurrentCombo != 1 || stats.CategoryStats[model.CategoryHealth] != 1 {
		t.Fatalf("unexpected stats after completion: %+v", stats)
	}
	if len(out.Unlocked) != 1 || out.Unlocked[0] != model.AchievementFirstTask || !out.Snapshot.Achievements[model.AchievementFirstTask] {
		t.Fatalf("expected first_task unlock, got %v", out.Unlocked)
	}

	before := out.Snapshot.Achievements
	out = e.SkipTask(b.ID)
	stats = out.Snapshot.Stats
	if stats.CurrentCombo != 0 || stats.TasksSkipped != 1 || stats.ConsecutiveNoSkip != 0 {
		t.Fatalf("unexpected stats after skip: %+v", stats)
	}
	if stats.TotalStars != 6 || stats.LongestCombo != 1 {
		t.Fatalf("skip changed stars or longest combo: %+v", stats)
	}
	for id, v := range before {
		if out.Snapshot.Achievements[id] != v {
			t.Fatalf("skip changed achievement %s", id)
		}
	}
	if len(out.Unlocked) != 0 {
		t.Fatalf("skip unlocked achievements: %v", out.Unlocked)
	}
}

func TestCreateValidationIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	out, err := e.CreateTask("bad", "", 0, model.CategoryWork)
	if !errors.Is(err, model.ErrInvalidDuration) || out.Applied {
		t.Fatalf("expected rejected create, err=%v applied=%v", err, out.Applied)
	}
	if _, err := e.CreateTask("bad", "", 5, model.Category("Chores")); !errors.Is(err, model.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if n := len(e.Snapshot().Tasks); n != 0 {
		t.Fatalf("rejected creates stored %d tasks", n)
	}
}

func TestReopenDoesNotReverseStats(t *testing.T) {
	e, _ := newTestEngine(t, quietState(), Options{})
	a := mustCreate(t, e, "A", 10, model.CategoryStudy)

	e.ToggleComplete(a.ID)
	out := e.ToggleComplete(a.ID)
	if !out.Applied || out.Task.Completed || out.Task.CompletedAt != nil {
		t.Fatalf("expected reopened task, got %+v", out.Task)
	}
	if out.Snapshot.Stats.TotalStars != 2 || out.Snapshot.Stats.TotalCompleted != 1 || out.Snapshot.Stats.CurrentCombo != 1 {
		t.Fatalf("reopen must not reverse stats: %+v", out.Snapshot.Stats)
	}
}

func TestSoftDeleteKeepsHistoryAndBlocksMutations(t *testing.T) {
	e, _ := newTestEngine(t, quietState(), Options{})
	a := mustCreate(t, e, "A", 15, model.CategorySocial)
	e.ToggleComplete(a.ID)

	out := e.DeleteTask(a.ID)
	if !out.Applied || len(out.Snapshot.Active) != 0 || len(out.Snapshot.Tasks) != 1 {
		t.Fatalf("unexpected delete outcome: %+v", out.Snapshot)
	}
	if out.Snapshot.Stats.CategoryStats[model.CategorySocial] != 1 || out.Snapshot.Stats.TotalStars != 3 {
		t.Fatalf("delete must not touch recorded stats: %+v", out.Snapshot.Stats)
	}

	if e.DeleteTask(a.ID).Applied || e.ToggleComplete(a.ID).Applied || e.SkipTask(a.ID).Applied || e.StartTimer(a.ID).Applied {
		t.Fatal("operations on a deleted task must be no-ops")
	}
	name := "renamed"
	if out, err := e.EditTask(a.ID, tasks.Patch{Name: &name}); err != nil || out.Applied {
		t.Fatalf("edit of deleted task must be a silent no-op, err=%v", err)
	}
	if e.SkipTask("missing").Applied {
		t.Fatal("unknown id must be a no-op")
	}
	if got := e.Snapshot().Stats.TasksSkipped; got != 0 {
		t.Fatalf("no-op skip changed stats: %d", got)
	}
}

func TestTimerExpiryCompletesTask(t *testing.T) {
	e, c := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 1, model.CategoryWork)

	out := e.StartTimer(a.ID)
	gen := out.Snapshot.Timer.Generation
	if !out.Applied || !out.Snapshot.Timer.Active || out.Snapshot.Timer.Remaining != 60 {
		t.Fatalf("unexpected timer after start: %+v", out.Snapshot.Timer)
	}
	for i := 0; i < 59; i++ {
		c.Advance(time.Second)
		if out := e.Tick(gen); out.Task != nil {
			t.Fatalf("completed early at tick %d", i+1)
		}
	}
	c.Advance(time.Second)
	out = e.Tick(gen)
	if out.Task == nil || !out.Task.Completed || out.Stars != 1 {
		t.Fatalf("expected completion on expiry, got %+v", out)
	}
	if out.Snapshot.Timer.Active || out.Snapshot.Timer.Phase != "idle" {
		t.Fatalf("timer should reset to idle: %+v", out.Snapshot.Timer)
	}
	if out.Snapshot.Stats.TotalCompleted != 1 {
		t.Fatalf("unexpected stats: %+v", out.Snapshot.Stats)
	}
	if e.Tick(gen).Applied {
		t.Fatal("late tick after expiry must be ignored")
	}
}

func TestStopPreventsLateTick(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 1, model.CategoryWork)
	gen := e.StartTimer(a.ID).Snapshot.Timer.Generation

	for i := 0; i < 59; i++ {
		e.Tick(gen)
	}
	if !e.StopTimer().Applied {
		t.Fatal("stop should apply")
	}
	out := e.Tick(gen)
	if out.Applied || out.Task != nil {
		t.Fatal("tick after stop must not apply")
	}
	if out.Snapshot.Stats.TotalCompleted != 0 || out.Snapshot.Tasks[0].Completed {
		t.Fatal("stopped timer completed its task")
	}
}

func TestStartingSecondTimerDiscardsFirst(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 1, model.CategoryWork)
	b := mustCreate(t, e, "B", 2, model.CategoryStudy)

	first := e.StartTimer(a.ID).Snapshot.Timer.Generation
	second := e.StartTimer(b.ID).Snapshot.Timer
	if second.TaskID != b.ID || second.Generation == first {
		t.Fatalf("unexpected second timer: %+v", second)
	}
	for i := 0; i < 60; i++ {
		if e.Tick(first).Applied {
			t.Fatal("ticks for the discarded timer must be ignored")
		}
	}
	snap := e.Snapshot()
	if snap.Stats.TotalCompleted != 0 || snap.Timer.Remaining != 120 {
		t.Fatalf("discarded timer leaked: %+v", snap.Timer)
	}
}

func TestPauseResumeAndCompleteNow(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 1, model.CategoryWork)
	gen := e.StartTimer(a.ID).Snapshot.Timer.Generation

	if out := e.PauseTimer(); !out.Applied || !out.Snapshot.Timer.Paused {
		t.Fatalf("expected paused timer: %+v", out.Snapshot.Timer)
	}
	for i := 0; i < 90; i++ {
		e.Tick(gen)
	}
	if got := e.Snapshot().Timer.Remaining; got != 60 {
		t.Fatalf("paused timer lost time: %d", got)
	}
	if !e.ResumeTimer().Applied {
		t.Fatal("resume should apply")
	}
	e.Tick(gen)

	out := e.CompleteTimerNow()
	if out.Task == nil || !out.Task.Completed || out.Snapshot.Timer.Active {
		t.Fatalf("complete now failed: %+v", out)
	}
	if e.CompleteTimerNow().Applied {
		t.Fatal("complete now without a timer must be a no-op")
	}
}

func TestSkipOrDeleteBoundTaskStopsTimer(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)
	b := mustCreate(t, e, "B", 5, model.CategoryWork)

	e.StartTimer(a.ID)
	if out := e.SkipTask(a.ID); out.Snapshot.Timer.Active {
		t.Fatal("skipping the bound task should stop the timer")
	}
	e.StartTimer(b.ID)
	if out := e.DeleteTask(b.ID); out.Snapshot.Timer.Active {
		t.Fatal("deleting the bound task should stop the timer")
	}
	if got := e.Snapshot().Stats.TotalCompleted; got != 0 {
		t.Fatalf("stopping must not complete tasks, got %d", got)
	}
}

func TestStartTimerRejectsCompletedTask(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)
	e.ToggleComplete(a.ID)
	if e.StartTimer(a.ID).Applied {
		t.Fatal("timer on completed task must be a no-op")
	}
}

func todaysMissions(ids ...string) []model.Mission {
	out := make([]model.Mission, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Mission{ID: id, Title: id, Reward: 30, Date: "2026-02-09"})
	}
	return out
}

func TestMissionRewardPaidOnceAfterCompletion(t *testing.T) {
	st := model.NewState()
	st.Missions = todaysMissions("combo_5", "complete_3", "same_category")
	e, _ := newTestEngine(t, st, Options{})

	var paid []model.Mission
	for i := 0; i < 5; i++ {
		task := mustCreate(t, e, "task", 5, model.CategoryWork)
		out := e.ToggleComplete(task.ID)
		paid = append(paid, out.CompletedMissions...)
	}
	if len(paid) != 3 {
		t.Fatalf("expected all three missions completed once, got %v", paid)
	}
	snap := e.Snapshot()
	if snap.Stats.TotalStars != 5+90 {
		t.Fatalf("unexpected total stars: %d", snap.Stats.TotalStars)
	}
	if snap.Today.Stars != 95 || snap.Today.Completed != 5 {
		t.Fatalf("unexpected today stats: %+v", snap.Today)
	}
	for _, m := range snap.Missions {
		if !m.Completed || m.Progress != 100 {
			t.Fatalf("mission not completed: %+v", m)
		}
	}
}

func TestMissionsRotateAtDayBoundary(t *testing.T) {
	st := model.NewState()
	st.Missions = todaysMissions("combo_5", "complete_3", "no_skip")
	st.Missions[0].Completed = true
	e, c := newTestEngine(t, st, Options{})

	if out := e.RotateMissions(); out.Applied {
		t.Fatal("same-day rotation must be a no-op")
	}
	if !e.Snapshot().Missions[0].Completed {
		t.Fatal("completed mission must stay completed for the day")
	}

	c.Set(morning.AddDate(0, 0, 1))
	out := e.RotateMissions()
	if !out.Applied || len(out.Snapshot.Missions) != 3 {
		t.Fatalf("expected new mission set, got %+v", out.Snapshot.Missions)
	}
	for _, m := range out.Snapshot.Missions {
		if m.Completed || m.Date != "2026-02-10" {
			t.Fatalf("unexpected rotated mission: %+v", m)
		}
	}
}

func TestEmptyMissionsAreDrawnOnStart(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	if got := len(e.Snapshot().Missions); got != 3 {
		t.Fatalf("expected 3 missions on a fresh engine, got %d", got)
	}
}

func TestReplaceIsAtomic(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)
	b := mustCreate(t, e, "B", 5, model.CategoryWork)
	e.ToggleComplete(a.ID)
	before := e.State()

	bad := model.NewState()
	bad.Tasks = []model.Task{{ID: "x", Name: "x", Duration: -1, Category: model.CategoryWork, CreatedAt: morning}}
	if err := e.Replace(bad); err == nil {
		t.Fatal("expected invalid replace to fail")
	}
	after := e.State()
	if len(after.Tasks) != len(before.Tasks) || after.Stats.TotalStars != before.Stats.TotalStars {
		t.Fatal("failed replace mutated state")
	}

	good := model.NewState()
	good.Stats.TotalStars = 500
	if !e.StartTimer(b.ID).Applied {
		t.Fatal("expected timer to start")
	}
	if err := e.Replace(good); err != nil {
		t.Fatalf("replace: %v", err)
	}
	snap := e.Snapshot()
	if snap.Stats.TotalStars != 500 || len(snap.Tasks) != 0 || snap.Timer.Active || len(snap.Missions) != 3 {
		t.Fatalf("unexpected replaced state: %+v", snap)
	}
}

func TestSaverCalledAfterAppliedMutations(t *testing.T) {
	saver := &countingSaver{err: errors.New("disk full")}
	e, _ := newTestEngine(t, model.State{}, Options{Saver: saver})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)
	e.ToggleComplete(a.ID)
	e.SkipTask("missing")

	if saver.calls != 2 {
		t.Fatalf("expected 2 saves, got %d", saver.calls)
	}
	if saver.last.Stats.TotalCompleted != 1 {
		t.Fatalf("saver received stale state: %+v", saver.last.Stats)
	}
}

func TestTimerTicksAreScheduledAndCancelled(t *testing.T) {
	sched := scheduler.NewEngine(4)
	e, _ := newTestEngine(t, model.State{}, Options{Scheduler: sched})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)

	gen := e.StartTimer(a.ID).Snapshot.Timer.Generation
	if sched.Pending() != 1 {
		t.Fatalf("expected one queued tick, got %d", sched.Pending())
	}
	e.Tick(gen)
	if sched.Pending() != 2 {
		t.Fatalf("each tick should queue the next one, got %d", sched.Pending())
	}
	e.StopTimer()
	if sched.Pending() != 0 {
		t.Fatalf("stop should cancel queued ticks, got %d", sched.Pending())
	}
}

func TestRunRequiresScheduler(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	if err := e.Run(context.Background()); !errors.Is(err, ErrNoScheduler) {
		t.Fatalf("expected ErrNoScheduler, got %v", err)
	}

	sched := scheduler.NewEngine(4)
	e, _ = newTestEngine(t, model.State{}, Options{Scheduler: sched})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveByPrefix(t *testing.T) {
	e, _ := newTestEngine(t, model.State{}, Options{})
	a := mustCreate(t, e, "A", 5, model.CategoryWork)

	if got, ok := e.Resolve(a.ID[:8]); !ok || got.ID != a.ID {
		t.Fatalf("prefix did not resolve: %v %v", got.ID, ok)
	}
	e.DeleteTask(a.ID)
	if _, ok := e.Resolve(a.ID); ok {
		t.Fatal("deleted tasks must not resolve")
	}
}
