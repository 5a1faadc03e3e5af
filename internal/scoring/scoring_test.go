package scoring

import (
	"testing"
	"time"

	"github.com/sandeepkv93/hustle/internal/model"
)

var base = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func task(duration int, cat model.Category) model.Task {
	return model.Task{ID: "t", Name: "t", Duration: duration, Category: cat, CreatedAt: base}
}

func TestStarsTable(t *testing.T) {
	cases := []struct {
		duration int
		want     int
	}{
		{1, 1}, {4, 1}, {5, 1}, {9, 1}, {10, 2}, {30, 6}, {61, 12},
	}
	for _, tc := range cases {
		if got := Stars(tc.duration); got != tc.want {
			t.Fatalf("Stars(%d) = %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestOnCompleteUpdatesEveryCounter(t *testing.T) {
	in := model.NewStats()
	out, stars := OnComplete(in, task(30, model.CategoryHealth), base)

	if stars != 6 || out.TotalStars != 6 || out.TotalCompleted != 1 {
		t.Fatalf("unexpected totals: stars=%d %+v", stars, out)
	}
	if out.CurrentCombo != 1 || out.LongestCombo != 1 || out.ConsecutiveNoSkip != 1 {
		t.Fatalf("unexpected combo counters: %+v", out)
	}
	day := out.DailyHistory["2026-02-09"]
	if day.Completed != 1 || day.Stars != 6 || day.Skipped != 0 {
		t.Fatalf("unexpected day stats: %+v", day)
	}
	if out.CategoryStats[model.CategoryHealth] != 1 {
		t.Fatalf("unexpected category stats: %+v", out.CategoryStats)
	}
	if out.LastCompletionDate != "2026-02-09" {
		t.Fatalf("unexpected last completion date: %q", out.LastCompletionDate)
	}
	if in.TotalStars != 0 || len(in.DailyHistory) != 0 {
		t.Fatalf("input stats mutated: %+v", in)
	}
}

func TestLongestComboIsHighWaterMark(t *testing.T) {
	stats := model.NewStats()
	seq := []bool{true, true, true, false, true, true, false, true}
	now := base
	maxSeen := 0
	for _, complete := range seq {
		now = now.Add(time.Hour)
		if complete {
			stats, _ = OnComplete(stats, task(5, model.CategoryWork), now)
		} else {
			stats = OnSkip(stats, now)
			if stats.CurrentCombo != 0 {
				t.Fatalf("skip must reset combo, got %d", stats.CurrentCombo)
			}
		}
		maxSeen = max(maxSeen, stats.CurrentCombo)
		if stats.LongestCombo != maxSeen {
			t.Fatalf("longest combo = %d, want %d", stats.LongestCombo, maxSeen)
		}
	}
	if stats.LongestCombo != 3 || stats.CurrentCombo != 1 {
		t.Fatalf("unexpected final combos: %+v", stats)
	}
}

func TestOnSkip(t *testing.T) {
	stats, _ := OnComplete(model.NewStats(), task(10, model.CategoryWork), base)
	stats = OnSkip(stats, base.Add(time.Minute))
	if stats.CurrentCombo != 0 || stats.TasksSkipped != 1 || stats.ConsecutiveNoSkip != 0 {
		t.Fatalf("unexpected skip counters: %+v", stats)
	}
	if stats.TotalStars != 2 || stats.LongestCombo != 1 {
		t.Fatalf("skip must not change stars or longest combo: %+v", stats)
	}
	if stats.DailyHistory["2026-02-09"].Skipped != 1 {
		t.Fatalf("unexpected day: %+v", stats.DailyHistory)
	}
	if stats.SpeedRunWindow.Start != nil || stats.SpeedRunWindow.Count != 0 {
		t.Fatalf("skip must reset speed run window: %+v", stats.SpeedRunWindow)
	}
}

func TestSpeedRunWindowRollsOver(t *testing.T) {
	stats := model.NewStats()
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base)
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base.Add(300*time.Second))
	if stats.SpeedRunWindow.Count != 2 {
		t.Fatalf("count after t=300s = %d, want 2", stats.SpeedRunWindow.Count)
	}
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base.Add(700*time.Second))
	if stats.SpeedRunWindow.Count != 1 {
		t.Fatalf("count after t=700s = %d, want 1", stats.SpeedRunWindow.Count)
	}
	if !stats.SpeedRunWindow.Start.Equal(base.Add(700 * time.Second)) {
		t.Fatalf("window should restart at t=700s, got %v", stats.SpeedRunWindow.Start)
	}
}

func TestSpeedRunWindowBoundaryIsInclusive(t *testing.T) {
	stats := model.NewStats()
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base)
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base.Add(600*time.Second))
	if stats.SpeedRunWindow.Count != 2 {
		t.Fatalf("completion at exactly 600s should extend window, count=%d", stats.SpeedRunWindow.Count)
	}
	stats, _ = OnComplete(stats, task(5, model.CategoryWork), base.Add(601*time.Second))
	if stats.SpeedRunWindow.Count != 1 {
		t.Fatalf("completion at 601s should reset window, count=%d", stats.SpeedRunWindow.Count)
	}
}

func TestAwardBonus(t *testing.T) {
	stats := AwardBonus(model.NewStats(), 30, base)
	if stats.TotalStars != 30 || stats.DailyHistory["2026-02-09"].Stars != 30 {
		t.Fatalf("unexpected bonus stats: %+v", stats)
	}
	if stats.DailyHistory["2026-02-09"].Completed != 0 {
		t.Fatal("bonus must not count a completion")
	}
}
