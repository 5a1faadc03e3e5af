package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
)

var readRetry = retry.Config{
	MaxAttempts:   3,
	InitialDelay:  10 * time.Millisecond,
	BackoffPolicy: retry.BackoffExponential,
}

// WriteFile writes doc next to path and renames it into place.
func WriteFile(path string, doc Document) error {
	payload, err := Encode(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("snapshot: create dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

func ReadFile(ctx context.Context, path string) ([]byte, error) {
	return retry.New[[]byte](readRetry).Do(ctx, func(ctx context.Context) ([]byte, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
		}
		return raw, nil
	})
}

// DefaultFileName follows the backup naming of hustle-backup-YYYY-MM-DD.json.
func DefaultFileName(now time.Time) string {
	return "hustle-backup-" + now.Format("2006-01-02") + ".json"
}
