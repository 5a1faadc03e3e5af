package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/hustle/internal/model"
)

var exportedAt = time.Date(2026, 2, 9, 18, 0, 0, 0, time.UTC)

func populatedState() model.State {
	created := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	done := created.Add(30 * time.Minute)
	st := model.NewState()
	st.Tasks = []model.Task{
		{ID: "t1", Name: "Run", Duration: 30, Category: model.CategoryHealth, Completed: true, CreatedAt: created, CompletedAt: &done},
		{ID: "t2", Name: "Read", Duration: 15, Category: model.CategoryStudy, CreatedAt: created},
	}
	st.Stats.TotalStars = 6
	st.Stats.TotalCompleted = 1
	st.Stats.CurrentCombo = 1
	st.Stats.LongestCombo = 3
	st.Stats.Start = &done
	st.Stats.Count = 1
	st.Stats.DailyHistory["2026-02-09"] = model.DayStats{Completed: 1, Stars: 6}
	st.Stats.CategoryStats[model.CategoryHealth] = 1
	st.Achievements[model.AchievementFirstTask] = true
	st.Missions = []model.Mission{{ID: "complete_3", Title: "Complete 3 tasks", Reward: 30, Date: "2026-02-09"}}
	return st
}

func TestExportImportRoundTrip(t *testing.T) {
	st := populatedState()
	raw, err := Encode(Export(st, exportedAt))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(raw), `"version": "1.0"`) || !strings.Contains(string(raw), `"exportDate"`) {
		t.Fatalf("missing envelope fields: %s", raw)
	}

	got, err := Import(raw, model.NewState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].CompletedAt == nil || !got.Tasks[0].CompletedAt.Equal(*st.Tasks[0].CompletedAt) {
		t.Fatalf("unexpected tasks: %#v", got.Tasks)
	}
	if got.Stats.TotalStars != 6 || got.Stats.LongestCombo != 3 || got.Stats.Count != 1 || got.Stats.Start == nil {
		t.Fatalf("unexpected stats: %#v", got.Stats)
	}
	if got.Stats.DailyHistory["2026-02-09"].Stars != 6 || got.Stats.CategoryStats[model.CategoryHealth] != 1 {
		t.Fatalf("unexpected history: %#v", got.Stats)
	}
	if !got.Achievements[model.AchievementFirstTask] || len(got.Missions) != 1 {
		t.Fatalf("unexpected achievements or missions: %#v %#v", got.Achievements, got.Missions)
	}
}

func TestImportFallsBackForAbsentSections(t *testing.T) {
	current := populatedState()
	got, err := Import([]byte(`{"version":"1.0"}`), current)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Tasks) != 0 || len(got.Missions) != 0 {
		t.Fatalf("absent tasks and missions should become empty: %#v", got)
	}
	if got.Stats.TotalStars != 6 || !got.Achievements[model.AchievementFirstTask] {
		t.Fatalf("absent stats and achievements should keep current values: %#v", got)
	}

	got.Stats.DailyHistory["2026-02-10"] = model.DayStats{Completed: 1}
	if _, ok := current.Stats.DailyHistory["2026-02-10"]; ok {
		t.Fatal("imported state aliases the current state")
	}
}

func TestImportNullSectionsTreatedAsAbsent(t *testing.T) {
	current := populatedState()
	got, err := Import([]byte(`{"tasks":null,"stats":null,"achievements":null,"missions":null}`), current)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Stats.TotalStars != 6 || len(got.Tasks) != 0 {
		t.Fatalf("unexpected state: %#v", got)
	}
}

func TestImportPartialStatsKeepsUntouchedFields(t *testing.T) {
	current := populatedState()
	current.Stats.LongestCombo = 7
	current.Stats.TotalStars = 90

	got, err := Import([]byte(`{"stats":{"currentCombo":2}}`), current)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Stats.CurrentCombo != 2 || got.Stats.LongestCombo != 7 || got.Stats.TotalStars != 90 {
		t.Fatalf("partial stats did not merge over current: %#v", got.Stats)
	}
	if got.Stats.Start == nil || got.Stats.DailyHistory["2026-02-09"].Stars != 6 || got.Stats.CategoryStats[model.CategoryHealth] != 1 {
		t.Fatalf("untouched stats fields were lost: %#v", got.Stats)
	}
	if current.Stats.CurrentCombo != 1 {
		t.Fatal("import mutated the current stats")
	}
}

func TestImportPartialStatsMergesMaps(t *testing.T) {
	got, err := Import([]byte(`{"stats":{"dailyHistory":{"2026-02-10":{"completed":2,"stars":9}},"categoryStats":{"Work":4}}}`), populatedState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Stats.DailyHistory["2026-02-09"].Stars != 6 || got.Stats.DailyHistory["2026-02-10"].Stars != 9 {
		t.Fatalf("daily history not merged: %#v", got.Stats.DailyHistory)
	}
	if got.Stats.CategoryStats[model.CategoryWork] != 4 || got.Stats.CategoryStats[model.CategoryHealth] != 1 {
		t.Fatalf("category stats not merged: %#v", got.Stats.CategoryStats)
	}
}

func TestImportPartialAchievementsKeepCurrentUnlocks(t *testing.T) {
	got, err := Import([]byte(`{"achievements":{"combo_5":true}}`), populatedState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !got.Achievements[model.AchievementFirstTask] || !got.Achievements[model.AchievementCombo5] {
		t.Fatalf("achievements not merged over current: %#v", got.Achievements)
	}
	if len(got.Achievements) != len(model.AchievementIDs) {
		t.Fatalf("unexpected achievement set: %#v", got.Achievements)
	}
}

// A backup written by the browser app: instants are epoch milliseconds and
// lastCompletionDate starts out null.
const browserBackup = `{
  "version": "1.0",
  "exportDate": 1770660000000,
  "tasks": [
    {"id": "lq2x9k", "name": "Run", "description": "", "duration": 30, "category": "Health",
     "completed": true, "deleted": false, "createdAt": 1770627600000, "completedAt": 1770629400000},
    {"id": "lq2xa1", "name": "Read", "description": "", "duration": 15, "category": "Study",
     "completed": false, "deleted": false, "createdAt": 1770627600000, "completedAt": null}
  ],
  "stats": {
    "currentCombo": 1, "longestCombo": 1, "totalStars": 6, "totalCompleted": 1,
    "tasksSkipped": 0, "consecutiveNoSkip": 1,
    "dailyHistory": {"2026-02-09": {"completed": 1, "stars": 6}},
    "categoryStats": {"Work": 0, "Study": 0, "Health": 1, "Personal": 0, "Social": 0},
    "lastCompletionDate": null
  },
  "achievements": {"first_task": true, "combo_5": false, "combo_10": false, "streak_7": false,
    "stars_100": false, "perfectionist": false, "speed_runner": false, "night_owl": false,
    "early_bird": false, "balanced": false},
  "missions": [
    {"id": "complete_3", "title": "Complete 3 tasks", "reward": 30, "completed": false, "date": "2026-02-09"}
  ]
}`

func TestImportBrowserBackup(t *testing.T) {
	got, err := Import([]byte(browserBackup), model.NewState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("unexpected tasks: %#v", got.Tasks)
	}
	run := got.Tasks[0]
	wantCreated := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	if !run.CreatedAt.Equal(wantCreated) || run.CompletedAt == nil || !run.CompletedAt.Equal(wantCreated.Add(30*time.Minute)) {
		t.Fatalf("epoch millisecond instants decoded wrong: %v %v", run.CreatedAt, run.CompletedAt)
	}
	if got.Tasks[1].CompletedAt != nil {
		t.Fatalf("null completedAt should stay empty: %v", got.Tasks[1].CompletedAt)
	}
	if got.Stats.TotalStars != 6 || got.Stats.DailyHistory["2026-02-09"].Stars != 6 || got.Stats.LastCompletionDate != "" {
		t.Fatalf("unexpected stats: %#v", got.Stats)
	}
	if !got.Achievements[model.AchievementFirstTask] || len(got.Missions) != 1 {
		t.Fatalf("unexpected achievements or missions: %#v %#v", got.Achievements, got.Missions)
	}
}

func TestImportSpeedRunStartFormats(t *testing.T) {
	got, err := Import([]byte(`{"stats":{"speedRunStart":1770627600000,"speedRunCount":2,"longestCombo":3}}`), model.NewState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Stats.Start == nil || !got.Stats.Start.Equal(time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)) || got.Stats.Count != 2 {
		t.Fatalf("unexpected speed run window: %#v", got.Stats.SpeedRunWindow)
	}

	got, err = Import([]byte(`{"stats":{"speedRunStart":null}}`), populatedState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Stats.Start != nil {
		t.Fatalf("explicit null should clear the window start: %v", got.Stats.Start)
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"malformed":        `{"tasks": [`,
		"not an object":    `[1,2,3]`,
		"bad category":     `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Chores","createdAt":"2026-02-09T09:00:00Z"}]}`,
		"zero duration":    `{"tasks":[{"id":"x","name":"x","duration":0,"category":"Work","createdAt":"2026-02-09T09:00:00Z"}]}`,
		"negative stars":   `{"stats":{"totalStars":-1}}`,
		"mission no date":  `{"missions":[{"id":"combo_5","reward":30}]}`,
		"completed no at":  `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Work","completed":true,"createdAt":"2026-02-09T09:00:00Z"}]}`,
		"duplicate ids":    `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Work","createdAt":"2026-02-09T09:00:00Z"},{"id":"x","name":"y","duration":5,"category":"Work","createdAt":"2026-02-09T09:00:00Z"}]}`,
		"combo over max":   `{"stats":{"currentCombo":3,"longestCombo":1}}`,
		"unknown unlock":   `{"achievements":{"moon_landing":true}}`,
		"non-bool unlock":  `{"achievements":{"first_task":"yes"}}`,
		"string as tasks":  `{"tasks":"none"}`,
		"bad created time": `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Work","createdAt":"yesterday"}]}`,
		"null created":     `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Work","createdAt":null}]}`,
		"negative instant": `{"tasks":[{"id":"x","name":"x","duration":5,"category":"Work","createdAt":-5}]}`,
	}
	current := populatedState()
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Import([]byte(raw), current)
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			if strings.TrimSpace(strings.TrimPrefix(err.Error(), ErrInvalidDocument.Error()+":")) == "" {
				t.Fatalf("error carries no detail: %v", err)
			}
		})
	}
	if current.Stats.TotalStars != 6 || len(current.Tasks) != 2 {
		t.Fatal("failed imports mutated the current state")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName(exportedAt))
	if filepath.Base(path) != "hustle-backup-2026-02-09.json" {
		t.Fatalf("unexpected file name: %s", path)
	}
	if err := WriteFile(path, Export(populatedState(), exportedAt)); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := Import(raw, model.NewState())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("unexpected tasks: %d", len(got.Tasks))
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
