package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/hustle/internal/model"
)

// wireDocument distinguishes absent sections from empty ones and accepts
// both this tool's backups and browser-era ones that store instants as
// epoch milliseconds.
type wireDocument struct {
	Version      string          `json:"version"`
	Tasks        []wireTask      `json:"tasks"`
	Stats        json.RawMessage `json:"stats"`
	Achievements json.RawMessage `json:"achievements"`
	Missions     []model.Mission `json:"missions"`
}

// instant is a timestamp written as RFC 3339 text or epoch milliseconds.
type instant struct {
	set bool
	t   *time.Time
}

func (i *instant) UnmarshalJSON(data []byte) error {
	i.set = true
	i.t = nil
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", text)
		}
		i.t = &t
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid timestamp %s", data)
		}
		ms, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return fmt.Errorf("invalid timestamp %s", data)
			}
			ms = int64(f)
		}
		t := time.UnixMilli(ms).UTC()
		i.t = &t
		return nil
	}
}

type wireTask struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Duration    int            `json:"duration"`
	Category    model.Category `json:"category"`
	Completed   bool           `json:"completed"`
	Deleted     bool           `json:"deleted"`
	CreatedAt   instant        `json:"createdAt"`
	CompletedAt instant        `json:"completedAt"`
}

func (w wireTask) model() (model.Task, error) {
	if w.CreatedAt.t == nil {
		return model.Task{}, errors.New("model: task createdAt is required")
	}
	return model.Task{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Duration:    w.Duration,
		Category:    w.Category,
		Completed:   w.Completed,
		Deleted:     w.Deleted,
		CreatedAt:   *w.CreatedAt.t,
		CompletedAt: w.CompletedAt.t,
	}, nil
}

// statsFields drops Stats' methods so wireStats can shadow speedRunStart.
type statsFields model.Stats

type wireStats struct {
	*statsFields
	SpeedRunStart instant `json:"speedRunStart"`
}

// mergeStats decodes raw over a copy of base; fields the document leaves
// out keep their base values.
func mergeStats(base model.Stats, raw json.RawMessage) (model.Stats, error) {
	out := base.Clone()
	w := wireStats{statsFields: (*statsFields)(&out)}
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Stats{}, err
	}
	if w.SpeedRunStart.set {
		out.Start = w.SpeedRunStart.t
	}
	if out.DailyHistory == nil {
		out.DailyHistory = make(map[string]model.DayStats)
	}
	if out.CategoryStats == nil {
		out.CategoryStats = make(map[model.Category]int, len(model.Categories))
	}
	return out, nil
}

// mergeAchievements overlays the flags present in raw on a copy of base.
func mergeAchievements(base model.Achievements, raw json.RawMessage) (model.Achievements, error) {
	out := base.Clone()
	if out == nil {
		out = model.NewAchievements()
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
