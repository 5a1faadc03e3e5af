// Package tasks holds the ordered in-memory task collection.
package tasks

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/hustle/internal/model"
)

// Patch carries the editable task fields; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Duration    *int
	Category    *model.Category
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Duration == nil && p.Category == nil
}

type Store struct {
	items []model.Task
	index map[string]int
	newID func() string
}

func NewStore() *Store {
	return &Store{
		items: make([]model.Task, 0),
		index: make(map[string]int),
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Store) Create(name, description string, duration int, category model.Category, now time.Time) (model.Task, error) {
	name = strings.TrimSpace(name)
	if err := model.ValidateFields(name, duration, category); err != nil {
		return model.Task{}, err
	}
	task := model.Task{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Duration:    duration,
		Category:    category,
		CreatedAt:   now,
	}
	s.index[task.ID] = len(s.items)
	s.items = append(s.items, task)
	return task, nil
}

// Edit applies p to a live task. Unknown or soft-deleted ids report ok=false.
func (s *Store) Edit(id string, p Patch) (model.Task, bool, error) {
	i, ok := s.live(id)
	if !ok {
		return model.Task{}, false, nil
	}
	next := s.items[i]
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		next.Description = strings.TrimSpace(*p.Description)
	}
	if p.Duration != nil {
		next.Duration = *p.Duration
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if err := model.ValidateFields(next.Name, next.Duration, next.Category); err != nil {
		return s.items[i], false, err
	}
	s.items[i] = next
	return next, true, nil
}

// SoftDelete marks the task deleted. Repeated calls report false.
func (s *Store) SoftDelete(id string) bool {
	i, ok := s.live(id)
	if !ok {
		return false
	}
	s.items[i].Deleted = true
	return true
}

// ToggleCompletion flips the completion flag and reports whether this call
// moved the task from incomplete to complete.
func (s *Store) ToggleCompletion(id string, now time.Time) (task model.Task, completed bool, ok bool) {
	i, ok := s.live(id)
	if !ok {
		return model.Task{}, false, false
	}
	t := &s.items[i]
	t.Completed = !t.Completed
	if t.Completed {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	return *t, t.Completed, true
}

// MarkCompleted completes a live incomplete task; it never uncompletes.
func (s *Store) MarkCompleted(id string, now time.Time) (model.Task, bool) {
	i, ok := s.live(id)
	if !ok || s.items[i].Completed {
		return model.Task{}, false
	}
	at := now
	s.items[i].Completed = true
	s.items[i].CompletedAt = &at
	return s.items[i], true
}

func (s *Store) Get(id string) (model.Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.items[i], true
}

// Active returns non-deleted tasks in creation order.
func (s *Store) Active() []model.Task {
	out := make([]model.Task, 0, len(s.items))
	for _, t := range s.items {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) All() []model.Task {
	return append([]model.Task(nil), s.items...)
}

func (s *Store) Len() int { return len(s.items) }

// Replace swaps the whole collection, used by import and load.
func (s *Store) Replace(items []model.Task) {
	s.items = append([]model.Task(nil), items...)
	s.index = make(map[string]int, len(items))
	for i, t := range s.items {
		s.index[t.ID] = i
	}
}

// Resolve finds a live task by full id or unique id prefix.
func (s *Store) Resolve(ref string) (model.Task, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, false
	}
	if t, ok := s.Get(ref); ok && t.Active() {
		return t, true
	}
	var found model.Task
	matches := 0
	for _, t := range s.items {
		if t.Active() && strings.HasPrefix(t.ID, ref) {
			found = t
			matches++
		}
	}
	return found, matches == 1
}

func (s *Store) live(id string) (int, bool) {
	i, ok := s.index[id]
	if !ok || s.items[i].Deleted {
		return 0, false
	}
	return i, true
}
