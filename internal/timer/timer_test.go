package timer

import (
	"testing"
	"time"
)

var start = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController()
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if c.Phase() != StateIdle {
		t.Fatalf("expected idle, got %s", c.Phase())
	}
	return c
}

func TestStartAndExpire(t *testing.T) {
	c := newController(t)
	c.Start("task-1", 1, start)

	st := c.State()
	if !st.Active || st.TaskID != "task-1" || st.Duration != 60 || st.Remaining != 60 {
		t.Fatalf("unexpected started state: %+v", st)
	}

	for i := 0; i < 59; i++ {
		if c.Tick() {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	if !c.Tick() {
		t.Fatal("expected expiry on 60th tick")
	}
	if c.Phase() != StateExpired || c.State().Remaining != 0 {
		t.Fatalf("unexpected state after expiry: %+v", c.State())
	}
	if c.Tick() {
		t.Fatal("expired timer must not expire twice")
	}
	c.Reset()
	if c.Phase() != StateIdle || c.TaskID() != "" {
		t.Fatalf("expected idle after reset, got %+v", c.State())
	}
}

func TestPauseSuppressesTicks(t *testing.T) {
	c := newController(t)
	c.Start("task-1", 1, start)
	c.Tick()
	if !c.Pause() {
		t.Fatal("pause should apply while running")
	}
	for i := 0; i < 120; i++ {
		c.Tick()
	}
	if c.State().Remaining != 59 || !c.State().Paused {
		t.Fatalf("paused ticks must not consume time: %+v", c.State())
	}
	if !c.TogglePause() || c.Phase() != StateRunning {
		t.Fatalf("toggle should resume, got %s", c.Phase())
	}
	c.Tick()
	if c.State().Remaining != 58 {
		t.Fatalf("unexpected remaining after resume: %d", c.State().Remaining)
	}
}

func TestStopDiscardsWithoutExpiry(t *testing.T) {
	c := newController(t)
	gen := c.Start("task-1", 5, start)
	if !c.Stop() {
		t.Fatal("stop should apply")
	}
	if c.Generation() == gen {
		t.Fatal("stop must invalidate the running generation")
	}
	if c.Tick() || c.Phase() != StateIdle {
		t.Fatalf("stopped timer must not tick, phase=%s", c.Phase())
	}
	if c.Stop() {
		t.Fatal("stopping an idle timer is a no-op")
	}
	if c.Pause() {
		t.Fatal("pausing an idle timer is a no-op")
	}
}

func TestStartReplacesPriorTimer(t *testing.T) {
	c := newController(t)
	first := c.Start("task-1", 5, start)
	c.Pause()
	second := c.Start("task-2", 2, start.Add(time.Minute))
	if second == first {
		t.Fatal("restart must produce a new generation")
	}
	st := c.State()
	if st.TaskID != "task-2" || st.Duration != 120 || st.Paused || st.Phase != StateRunning {
		t.Fatalf("unexpected state after restart: %+v", st)
	}
	if got := st.Progress(); got != 0 {
		t.Fatalf("unexpected progress: %v", got)
	}
}
