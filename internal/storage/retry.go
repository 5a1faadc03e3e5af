package storage

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/sandeepkv93/hustle/internal/model"
)

// Retrying wraps a Repository so state loads and saves survive a transiently
// locked database.
type Retrying struct {
	Repository
	cfg retry.Config
}

func WithRetry(repo Repository) *Retrying {
	return &Retrying{
		Repository: repo,
		cfg: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

func (r *Retrying) LoadState(ctx context.Context) (model.State, error) {
	return retry.New[model.State](r.cfg).Do(ctx, func(ctx context.Context) (model.State, error) {
		return r.Repository.LoadState(ctx)
	})
}

func (r *Retrying) SaveState(ctx context.Context, st model.State) error {
	_, err := retry.New[struct{}](r.cfg).Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.Repository.SaveState(ctx, st)
	})
	return err
}
