package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/hustle/internal/achievements"
	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/engine"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/scoring"
	"github.com/sandeepkv93/hustle/internal/snapshot"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stars, combos, missions and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags, false)
			if err != nil {
				return err
			}
			defer a.Close()
			writeStats(cmd.OutOrStdout(), a.eng.Snapshot())
			return nil
		},
	}
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write a JSON backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.eng.Snapshot().Now
			path := filepath.Join(filepath.Dir(a.cfg.DBPath), snapshot.DefaultFileName(now))
			if len(args) == 1 {
				path = args[0]
			}
			if err := snapshot.WriteFile(path, snapshot.Export(a.eng.State(), now)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace all data with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			raw, err := snapshot.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, err := snapshot.Import(raw, a.eng.State())
			if err != nil {
				return err
			}
			if err := a.eng.Replace(st); err != nil {
				return err
			}
			// Replace persists best effort; save again so a failure surfaces.
			if err := a.store.SaveState(cmd.Context(), a.eng.State()); err != nil {
				return fmt.Errorf("save imported state: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d task(s) from %s\n", len(st.Tasks), args[0])
			return nil
		},
	}
}

func writeStats(w io.Writer, snap engine.Snapshot) {
	s := snap.Stats
	fmt.Fprintf(w, "stars: %d★  completed: %d  skipped: %d\n", s.TotalStars, s.TotalCompleted, s.TasksSkipped)
	fmt.Fprintf(w, "combo: x%d (best x%d)\n", s.CurrentCombo, s.LongestCombo)
	fmt.Fprintf(w, "completion rate: %d%%  avg duration: %dm\n", snap.CompletionRate(), snap.AverageDuration())
	fmt.Fprintf(w, "today: %d done, %d★, %d skipped\n", snap.Today.Completed, snap.Today.Stars, snap.Today.Skipped)

	fmt.Fprintln(w, "\ncategories:")
	for _, c := range model.Categories {
		fmt.Fprintf(w, "  %s %-9s %d\n", c.Icon(), c, s.CategoryStats[c])
	}

	fmt.Fprintln(w, "\nlast 7 days:")
	for _, day := range clock.PreviousDays(snap.Now, 7) {
		d := s.Day(day)
		fmt.Fprintf(w, "  %s  %2d done  %3d★\n", day, d.Completed, d.Stars)
	}

	fmt.Fprintf(w, "\nmissions (%s):\n", clock.DayKey(snap.Now))
	for _, m := range snap.Missions {
		box := "[ ]"
		if m.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %s +%d★ (%d%%)\n", box, m.Title, m.Reward, m.Progress)
	}

	fmt.Fprintf(w, "\nachievements: %d/%d\n", snap.Achievements.UnlockedCount(), len(model.AchievementIDs))
	for _, id := range model.AchievementIDs {
		if snap.Achievements[id] {
			fmt.Fprintf(w, "  %s\n", achievementLabel(id))
		}
	}
}

func achievementLabel(id model.AchievementID) string {
	if d, ok := achievements.Lookup(id); ok {
		return d.Icon + " " + d.Name
	}
	return string(id)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func starsFor(duration int) int {
	return scoring.Stars(duration)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

