package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/hustle/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository persists the complete engine state. SaveState replaces what is
// stored in one transaction; LoadState on an empty database returns a fresh
// state.
type Repository interface {
	LoadState(ctx context.Context) (model.State, error)
	SaveState(ctx context.Context, st model.State) error

	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
}
