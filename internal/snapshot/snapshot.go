// Package snapshot converts engine state to and from the portable backup
// document.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sandeepkv93/hustle/internal/model"
)

const Version = "1.0"

var ErrInvalidDocument = errors.New("snapshot: invalid document")

type Document struct {
	Version      string             `json:"version"`
	ExportDate   time.Time          `json:"exportDate"`
	Tasks        []model.Task       `json:"tasks"`
	Stats        model.Stats        `json:"stats"`
	Achievements model.Achievements `json:"achievements"`
	Missions     []model.Mission    `json:"missions"`
}

func Export(st model.State, now time.Time) Document {
	st = st.Clone()
	if st.Tasks == nil {
		st.Tasks = make([]model.Task, 0)
	}
	if st.Missions == nil {
		st.Missions = make([]model.Mission, 0)
	}
	return Document{
		Version:      Version,
		ExportDate:   now,
		Tasks:        st.Tasks,
		Stats:        st.Stats,
		Achievements: st.Achievements,
		Missions:     st.Missions,
	}
}

func Encode(doc Document) ([]byte, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return append(payload, '\n'), nil
}

// Import builds the state a document describes. Stats and achievements
// present in the document are merged field by field over current; absent
// ones keep current. Missing tasks or missions become empty. Any schema or
// model violation rejects the whole document.
func Import(raw []byte, current model.State) (model.State, error) {
	result, err := gojsonschema.Validate(documentSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return model.State{}, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	var doc wireDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	next := current.Clone()
	next.Tasks = make([]model.Task, 0, len(doc.Tasks))
	for i, wt := range doc.Tasks {
		t, err := wt.model()
		if err != nil {
			return model.State{}, fmt.Errorf("%w: tasks.%d: %v", ErrInvalidDocument, i, err)
		}
		next.Tasks = append(next.Tasks, t)
	}
	next.Missions = doc.Missions
	if next.Missions == nil {
		next.Missions = make([]model.Mission, 0)
	}
	if present(doc.Stats) {
		if next.Stats, err = mergeStats(current.Stats, doc.Stats); err != nil {
			return model.State{}, fmt.Errorf("%w: stats: %v", ErrInvalidDocument, err)
		}
	}
	if present(doc.Achievements) {
		if next.Achievements, err = mergeAchievements(current.Achievements, doc.Achievements); err != nil {
			return model.State{}, fmt.Errorf("%w: achievements: %v", ErrInvalidDocument, err)
		}
	}
	if err := next.Validate(); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return next, nil
}
