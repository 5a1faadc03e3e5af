// Package timer implements the single countdown bound to one task.
package timer

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// Machine states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
	StatePaused  = "paused"
	StateExpired = "expired"
)

// Machine events.
const (
	EventStart  = "start"
	EventPause  = "pause"
	EventResume = "resume"
	EventStop   = "stop"
	EventExpire = "expire"
	EventReset  = "reset"
)

type timerContext struct {
	TaskID string
}

// State is a read-only view of the controller for rendering and export.
type State struct {
	Phase      string    `json:"phase"`
	Active     bool      `json:"active"`
	TaskID     string    `json:"taskId,omitempty"`
	Duration   int       `json:"duration"`
	Remaining  int       `json:"remaining"`
	Paused     bool      `json:"paused"`
	StartTime  time.Time `json:"startTime"`
	Generation uint64    `json:"generation"`
}

// Progress is the elapsed fraction of the countdown in [0,1].
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Duration-s.Remaining) / float64(s.Duration)
}

type Controller struct {
	interpreter *statekit.Interpreter[timerContext]
	taskID      string
	duration    int
	remaining   int
	startTime   time.Time
	generation  uint64
}

func NewController() (*Controller, error) {
	builder := statekit.NewMachine[timerContext]("countdown").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(timerContext{})

	builder.State(StateIdle).
		On(EventStart).Target(StateRunning).
		Done()

	builder.State(StateRunning).
		On(EventPause).Target(StatePaused).
		On(EventStop).Target(StateIdle).
		On(EventExpire).Target(StateExpired).
		Done()

	builder.State(StatePaused).
		On(EventResume).Target(StateRunning).
		On(EventStop).Target(StateIdle).
		Done()

	builder.State(StateExpired).
		On(EventReset).Target(StateIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("timer: build state machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &Controller{interpreter: interpreter}, nil
}

func (c *Controller) Phase() string {
	return string(c.interpreter.State().Value)
}

func (c *Controller) send(event string) bool {
	before := c.Phase()
	c.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return c.Phase() != before
}

// Start binds a new countdown to taskID, discarding any prior one without
// completing it. It returns the new generation.
func (c *Controller) Start(taskID string, minutes int, now time.Time) uint64 {
	c.discard()
	c.taskID = taskID
	c.duration = minutes * 60
	c.remaining = c.duration
	c.startTime = now
	c.generation++
	c.send(EventStart)
	return c.generation
}

// Tick advances one second. It reports true exactly when this tick expired
// the countdown; the caller completes the task and then calls Reset.
func (c *Controller) Tick() bool {
	if c.Phase() != StateRunning {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return false
	}
	return c.send(EventExpire)
}

func (c *Controller) Pause() bool  { return c.send(EventPause) }
func (c *Controller) Resume() bool { return c.send(EventResume) }

func (c *Controller) TogglePause() bool {
	switch c.Phase() {
	case StateRunning:
		return c.Pause()
	case StatePaused:
		return c.Resume()
	default:
		return false
	}
}

// Stop returns to idle without completion. Any outstanding tick generation
// is invalidated.
func (c *Controller) Stop() bool {
	if !c.Active() && c.Phase() != StateExpired {
		return false
	}
	c.discard()
	return true
}

// Reset clears an expired countdown back to idle.
func (c *Controller) Reset() {
	c.discard()
}

func (c *Controller) discard() {
	switch c.Phase() {
	case StateRunning, StatePaused:
		c.send(EventStop)
	case StateExpired:
		c.send(EventReset)
	}
	c.taskID = ""
	c.duration = 0
	c.remaining = 0
	c.startTime = time.Time{}
	c.generation++
}

func (c *Controller) Active() bool {
	p := c.Phase()
	return p == StateRunning || p == StatePaused
}

func (c *Controller) TaskID() string     { return c.taskID }
func (c *Controller) Generation() uint64 { return c.generation }

func (c *Controller) State() State {
	return State{
		Phase:      c.Phase(),
		Active:     c.Active(),
		TaskID:     c.taskID,
		Duration:   c.duration,
		Remaining:  c.remaining,
		Paused:     c.Phase() == StatePaused,
		StartTime:  c.startTime,
		Generation: c.generation,
	}
}
