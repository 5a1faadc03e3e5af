package model

import "fmt"

// State is the full derived and source state owned by one engine.
type State struct {
	Tasks        []Task
	Stats        Stats
	Achievements Achievements
	Missions     []Mission
}

func NewState() State {
	return State{
		Tasks:        make([]Task, 0),
		Stats:        NewStats(),
		Achievements: NewAchievements(),
		Missions:     make([]Mission, 0),
	}
}

func (s State) Clone() State {
	out := State{
		Tasks:        append([]Task(nil), s.Tasks...),
		Stats:        s.Stats.Clone(),
		Achievements: s.Achievements.Clone(),
		Missions:     append([]Mission(nil), s.Missions...),
	}
	for i := range out.Tasks {
		if at := out.Tasks[i].CompletedAt; at != nil {
			v := *at
			out.Tasks[i].CompletedAt = &v
		}
	}
	return out
}

func (s State) Validate() error {
	seen := make(map[string]bool, len(s.Tasks))
	for i, t := range s.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		if seen[t.ID] {
			return fmt.Errorf("task %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
	}
	if err := s.Stats.Validate(); err != nil {
		return err
	}
	if err := s.Achievements.Validate(); err != nil {
		return err
	}
	for i, m := range s.Missions {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("mission %d: %w", i, err)
		}
	}
	return nil
}
