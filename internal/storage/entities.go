package storage

import (
	"time"

	"github.com/sandeepkv93/hustle/internal/model"
)

// Task is a row of the tasks table. Position preserves creation order.
type Task struct {
	ID          string
	Position    int
	Name        string
	Description string
	Duration    int
	Category    string
	Completed   bool
	Deleted     bool
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type TaskListFilter struct {
	Category       string
	Completed      *bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

func taskFromModel(position int, in model.Task) Task {
	return Task{
		ID:          in.ID,
		Position:    position,
		Name:        in.Name,
		Description: in.Description,
		Duration:    in.Duration,
		Category:    string(in.Category),
		Completed:   in.Completed,
		Deleted:     in.Deleted,
		CreatedAt:   in.CreatedAt,
		CompletedAt: in.CompletedAt,
	}
}

// Model converts the row back into the domain type.
func (t Task) Model() model.Task {
	return model.Task{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Duration:    t.Duration,
		Category:    model.Category(t.Category),
		Completed:   t.Completed,
		Deleted:     t.Deleted,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}
