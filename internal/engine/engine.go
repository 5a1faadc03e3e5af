// Package engine owns the task list and every piece of derived gamification
// state. All mutations are serialized through one mutex so a completion's
// stats update, achievement scan and mission scan are observed as one unit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sandeepkv93/hustle/internal/achievements"
	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/missions"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/scheduler"
	"github.com/sandeepkv93/hustle/internal/scoring"
	"github.com/sandeepkv93/hustle/internal/tasks"
	"github.com/sandeepkv93/hustle/internal/timer"
)

const timerKey = "timer"

var ErrNoScheduler = errors.New("engine: no scheduler configured")

// Saver persists a full state copy after every applied mutation.
type Saver interface {
	SaveState(ctx context.Context, st model.State) error
}

type Options struct {
	Clock     clock.Clock
	Rand      *rand.Rand
	Logger    *slog.Logger
	Saver     Saver
	Scheduler *scheduler.Engine
}

type Engine struct {
	mu           sync.Mutex
	clock        clock.Clock
	logger       *slog.Logger
	saver        Saver
	sched        *scheduler.Engine
	store        *tasks.Store
	stats        model.Stats
	achievements model.Achievements
	missions     []model.Mission
	missionMgr   *missions.Manager
	timer        *timer.Controller
	changes      chan struct{}
}

// New builds an engine seeded with st. A zero State is treated as empty.
func New(st model.State, opts Options) (*Engine, error) {
	st = normalize(st)
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid initial state: %w", err)
	}
	ctrl, err := timer.NewController()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{
		clock:        opts.Clock,
		logger:       opts.Logger,
		saver:        opts.Saver,
		sched:        opts.Scheduler,
		store:        tasks.NewStore(),
		stats:        st.Stats,
		achievements: st.Achievements,
		missions:     st.Missions,
		missionMgr:   missions.NewManager(opts.Rand),
		timer:        ctrl,
		changes:      make(chan struct{}, 1),
	}
	e.store.Replace(st.Tasks)
	e.mu.Lock()
	e.rotateLocked(e.clock.Now())
	e.mu.Unlock()
	return e, nil
}

// Changes signals after mutations that did not originate from a caller,
// such as timer ticks.
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

func (e *Engine) CreateTask(name, description string, duration int, category model.Category) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	task, err := e.store.Create(name, description, duration, category, now)
	if err != nil {
		return e.outcomeLocked(now), err
	}
	e.logger.Info("engine: task created", "id", task.ID, "category", task.Category, "duration", task.Duration)
	out := e.outcomeLocked(now)
	out.Applied = true
	out.Task = &task
	e.commitLocked()
	return out, nil
}

func (e *Engine) EditTask(id string, patch tasks.Patch) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	task, ok, err := e.store.Edit(id, patch)
	if err != nil || !ok {
		return e.outcomeLocked(now), err
	}
	e.logger.Info("engine: task edited", "id", id)
	out := e.outcomeLocked(now)
	out.Applied = true
	out.Task = &task
	e.commitLocked()
	return out, nil
}

// DeleteTask soft-deletes id, stopping the timer if it is bound to it.
func (e *Engine) DeleteTask(id string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	if !e.store.SoftDelete(id) {
		return e.outcomeLocked(now)
	}
	if e.timer.Active() && e.timer.TaskID() == id {
		e.stopTimerLocked()
	}
	e.logger.Info("engine: task deleted", "id", id)
	out := e.outcomeLocked(now)
	out.Applied = true
	e.commitLocked()
	return out
}

// ToggleComplete flips completion. Only the incomplete to complete direction
// scores; reopening a task leaves stats untouched.
func (e *Engine) ToggleComplete(id string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	task, completed, ok := e.store.ToggleCompletion(id, now)
	if !ok {
		return e.outcomeLocked(now)
	}
	var out Outcome
	if completed {
		if e.timer.Active() && e.timer.TaskID() == id {
			e.stopTimerLocked()
		}
		out = e.scoreCompletionLocked(task, now)
	} else {
		e.logger.Info("engine: task reopened", "id", id)
		out = e.outcomeLocked(now)
	}
	out.Applied = true
	out.Task = &task
	e.commitLocked()
	return out
}

func (e *Engine) SkipTask(id string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	task, ok := e.store.Get(id)
	if !ok || task.Deleted {
		return e.outcomeLocked(now)
	}
	if e.timer.Active() && e.timer.TaskID() == id {
		e.stopTimerLocked()
	}
	e.stats = scoring.OnSkip(e.stats, now)
	var done []model.Mission
	e.missions, e.stats, done = missions.Evaluate(e.missions, e.missionView(now))
	e.logger.Info("engine: task skipped", "id", id, "skipped_total", e.stats.TasksSkipped)

	out := e.outcomeLocked(now)
	out.Applied = true
	out.Task = &task
	out.CompletedMissions = done
	e.commitLocked()
	return out
}

// StartTimer binds the countdown to a live, incomplete task.
func (e *Engine) StartTimer(id string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	task, ok := e.store.Get(id)
	if !ok || task.Deleted || task.Completed {
		return e.outcomeLocked(now)
	}
	if e.sched != nil {
		e.sched.Cancel(timerKey)
	}
	gen := e.timer.Start(task.ID, task.Duration, now)
	e.scheduleTickLocked(gen, now)
	e.logger.Info("engine: timer started", "task", task.ID, "seconds", task.Duration*60)

	out := e.outcomeLocked(now)
	out.Applied = true
	out.Task = &task
	return out
}

// PauseTimer toggles between running and paused.
func (e *Engine) PauseTimer() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()
	applied := e.timer.TogglePause()
	out := e.outcomeLocked(now)
	out.Applied = applied
	return out
}

func (e *Engine) ResumeTimer() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()
	applied := e.timer.Resume()
	out := e.outcomeLocked(now)
	out.Applied = applied
	return out
}

func (e *Engine) StopTimer() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()
	applied := e.stopTimerLocked()
	out := e.outcomeLocked(now)
	out.Applied = applied
	return out
}

// CompleteTimerNow completes the bound task immediately and stops the timer.
func (e *Engine) CompleteTimerNow() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	if !e.timer.Active() {
		return e.outcomeLocked(now)
	}
	id := e.timer.TaskID()
	e.stopTimerLocked()
	return e.completeBoundLocked(id, now)
}

// Tick advances the countdown identified by generation by one second. Ticks
// for a stopped or replaced countdown are ignored.
func (e *Engine) Tick(generation uint64) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.begin()

	if generation != e.timer.Generation() || !e.timer.Active() {
		return e.outcomeLocked(now)
	}
	if !e.timer.Tick() {
		e.scheduleTickLocked(generation, now)
		out := e.outcomeLocked(now)
		out.Applied = true
		return out
	}
	id := e.timer.TaskID()
	e.timer.Reset()
	e.logger.Info("engine: timer expired", "task", id)
	return e.completeBoundLocked(id, now)
}

// RotateMissions draws a fresh mission set when the calendar day changed.
func (e *Engine) RotateMissions() Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	rotated := e.rotateLocked(now)
	out := e.outcomeLocked(now)
	out.Applied = rotated
	if rotated {
		e.commitLocked()
	}
	return out
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clock.Now())
}

// Resolve maps a full id or unique id prefix to a live task.
func (e *Engine) Resolve(ref string) (model.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Resolve(ref)
}

// State returns a deep copy of the persisted portion of the engine.
func (e *Engine) State() model.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Replace swaps the whole state, as an import does. The active timer is
// discarded. Invalid states leave the engine untouched.
func (e *Engine) Replace(st model.State) error {
	st = normalize(st)
	if err := st.Validate(); err != nil {
		return fmt.Errorf("engine: replace state: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.store.Replace(st.Tasks)
	e.stats = st.Stats
	e.achievements = st.Achievements
	e.missions = st.Missions
	e.rotateLocked(e.clock.Now())
	e.logger.Info("engine: state replaced", "tasks", len(st.Tasks))
	e.commitLocked()
	return nil
}

// Run pumps scheduler ticks into the engine until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if e.sched == nil {
		return ErrNoScheduler
	}
	e.sched.Start()
	defer e.sched.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-e.sched.C():
			if !ok {
				return nil
			}
			if out := e.Tick(ev.Generation); out.Applied {
				e.notify()
			}
		}
	}
}

func (e *Engine) begin() time.Time {
	now := e.clock.Now()
	e.rotateLocked(now)
	return now
}

func (e *Engine) rotateLocked(now time.Time) bool {
	next, drawn := e.missionMgr.RegenerateIfNewDay(e.missions, now)
	if drawn {
		e.missions = next
		ids := make([]string, 0, len(next))
		for _, m := range next {
			ids = append(ids, m.ID)
		}
		e.logger.Info("engine: daily missions drawn", "day", clock.DayKey(now), "missions", ids)
	}
	return drawn
}

func (e *Engine) completeBoundLocked(id string, now time.Time) Outcome {
	task, ok := e.store.MarkCompleted(id, now)
	if !ok {
		out := e.outcomeLocked(now)
		out.Applied = true
		return out
	}
	out := e.scoreCompletionLocked(task, now)
	out.Applied = true
	out.Task = &task
	e.commitLocked()
	return out
}

func (e *Engine) scoreCompletionLocked(task model.Task, now time.Time) Outcome {
	var stars int
	e.stats, stars = scoring.OnComplete(e.stats, task, now)

	var unlocked []model.AchievementID
	e.achievements, unlocked = achievements.Evaluate(e.achievements, achievements.View{
		Stats: e.stats,
		Tasks: e.store.All(),
		Now:   now,
	})
	var done []model.Mission
	e.missions, e.stats, done = missions.Evaluate(e.missions, e.missionView(now))

	e.logger.Info("engine: task completed", "id", task.ID, "stars", stars, "combo", e.stats.CurrentCombo)
	for _, id := range unlocked {
		e.logger.Info("engine: achievement unlocked", "id", id)
	}
	for _, m := range done {
		e.logger.Info("engine: mission completed", "id", m.ID, "reward", m.Reward)
	}

	out := e.outcomeLocked(now)
	out.Stars = stars
	out.Unlocked = unlocked
	out.CompletedMissions = done
	return out
}

func (e *Engine) stopTimerLocked() bool {
	if e.sched != nil {
		e.sched.Cancel(timerKey)
	}
	stopped := e.timer.Stop()
	if stopped {
		e.logger.Info("engine: timer stopped")
	}
	return stopped
}

func (e *Engine) scheduleTickLocked(generation uint64, now time.Time) {
	if e.sched == nil {
		return
	}
	ev := scheduler.TickEvent{Key: timerKey, Generation: generation, TriggerAt: now.Add(time.Second)}
	if err := e.sched.Schedule(ev); err != nil {
		e.logger.Warn("engine: schedule timer tick failed", "error", err)
	}
}

func (e *Engine) missionView(now time.Time) missions.View {
	return missions.View{Stats: e.stats, Tasks: e.store.All(), Now: now}
}

func (e *Engine) stateLocked() model.State {
	return model.State{
		Tasks:        e.store.All(),
		Stats:        e.stats,
		Achievements: e.achievements,
		Missions:     e.missions,
	}.Clone()
}

func (e *Engine) commitLocked() {
	if e.saver == nil {
		return
	}
	if err := e.saver.SaveState(context.Background(), e.stateLocked()); err != nil {
		e.logger.Warn("engine: persist state failed", "error", err)
	}
}

func (e *Engine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}

// normalize deep-copies st and fills every map and slice, so callers never
// share memory with the engine.
func normalize(st model.State) model.State {
	st = st.Clone()
	if st.Tasks == nil {
		st.Tasks = make([]model.Task, 0)
	}
	if st.Missions == nil {
		st.Missions = make([]model.Mission, 0)
	}
	return st
}
