// Package scheduler delivers countdown ticks at their trigger time on a
// buffered channel. Delivery never blocks: a tick that finds the channel full
// is counted as dropped and the countdown owner schedules the next one.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

// TickEvent asks the consumer to advance the countdown identified by Key.
// Generation lets the consumer drop ticks issued for a replaced countdown.
type TickEvent struct {
	Key        string
	Generation uint64
	TriggerAt  time.Time
}

// pending orders queued ticks by trigger time, then by arrival.
type pending struct {
	tick TickEvent
	seq  uint64
}

type tickHeap []pending

func (h tickHeap) Len() int { return len(h) }

func (h tickHeap) Less(i, j int) bool {
	a, b := h[i].tick.TriggerAt, h[j].tick.TriggerAt
	if a.Equal(b) {
		return h[i].seq < h[j].seq
	}
	return a.Before(b)
}

func (h tickHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *tickHeap) Push(x any) { *h = append(*h, x.(pending)) }

func (h *tickHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type Engine struct {
	mu      sync.Mutex
	queue   tickHeap
	nextSeq uint64
	ticks   chan TickEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

// NewEngine returns a stopped scheduler whose tick channel holds bufferSize
// undelivered ticks.
func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		ticks:  make(chan TickEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C is closed once the scheduler stops.
func (e *Engine) C() <-chan TickEvent {
	return e.ticks
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.run()
}

// Stop ends delivery and waits for the delivery goroutine to exit. Queued
// ticks are discarded.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(tick TickEvent) error {
	if tick.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.nextSeq++
	heap.Push(&e.queue, pending{tick: tick, seq: e.nextSeq})
	e.signalWakeup()
	return nil
}

// Cancel drops every queued tick for key and reports how many were removed.
// Ticks already handed to C() are not recalled; consumers check Generation.
func (e *Engine) Cancel(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.queue[:0]
	removed := 0
	for _, p := range e.queue {
		if p.tick.Key == key {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	e.queue = kept
	if removed > 0 {
		heap.Init(&e.queue)
		e.signalWakeup()
	}
	return removed
}

// Pending counts queued, undelivered ticks.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) run() {
	defer close(e.doneCh)
	defer close(e.ticks)

	var timer *time.Timer
	for {
		next, ok := e.peek()
		if !ok {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		timer = resetTimer(timer, max(0, time.Until(next.TriggerAt)))
		select {
		case <-timer.C:
			e.deliver(e.popDue(time.Now()))
		case <-e.wakeup:
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) deliver(due []TickEvent) {
	for _, tick := range due {
		select {
		case e.ticks <- tick:
		default:
			atomic.AddUint64(&e.dropped, 1)
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (TickEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return TickEvent{}, false
	}
	return e.queue[0].tick, true
}

func (e *Engine) popDue(now time.Time) []TickEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []TickEvent
	for len(e.queue) > 0 && !e.queue[0].tick.TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.queue).(pending).tick)
	}
	return due
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
