package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/hustle/internal/commands"
	"github.com/sandeepkv93/hustle/internal/engine"
	"github.com/sandeepkv93/hustle/internal/model"
	"github.com/sandeepkv93/hustle/internal/storage"
)

func newAddCmd(flags *rootFlags) *cobra.Command {
	var (
		duration    int
		category    string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := model.ParseCategory(category)
			if err != nil {
				return err
			}
			a, err := openApp(flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.eng.CreateTask(joinArgs(args), description, duration, cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%dm, +%d★) %s\n", cat.Icon(), out.Task.Name, out.Task.Duration, starsFor(out.Task.Duration), shortID(out.Task.ID))
			return nil
		},
	}
	cmd.Flags().IntVarP(&duration, "duration", "d", commands.DefaultDuration, "duration in minutes")
	cmd.Flags().StringVarP(&category, "category", "c", string(commands.DefaultCategory), "Work, Study, Health, Personal or Social")
	cmd.Flags().StringVar(&description, "desc", "", "optional description")
	return cmd
}

func newDoneCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(flags, args[0], func(eng *engine.Engine, t model.Task) error {
				if t.Completed {
					return fmt.Errorf("%s is already completed", t.Name)
				}
				out := eng.ToggleComplete(t.ID)
				printOutcome(cmd.OutOrStdout(), "completed "+t.Name, out)
				return nil
			})
		},
	}
}

func newSkipCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <id>",
		Short: "Skip a task and reset the combo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(flags, args[0], func(eng *engine.Engine, t model.Task) error {
				out := eng.SkipTask(t.ID)
				printOutcome(cmd.OutOrStdout(), "skipped "+t.Name, out)
				return nil
			})
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		category string
		pending  bool
		all      bool
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := storage.TaskListFilter{IncludeDeleted: all, Limit: limit}
			if category != "" {
				cat, err := model.ParseCategory(category)
				if err != nil {
					return err
				}
				filter.Category = string(cat)
			}
			if pending {
				no := false
				filter.Completed = &no
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			repo, err := storage.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			rows, err := repo.ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			writeTaskList(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().BoolVar(&pending, "pending", false, "only incomplete tasks")
	cmd.Flags().BoolVar(&all, "all", false, "include deleted tasks")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows, 0 for no limit")
	return cmd
}

func withTask(flags *rootFlags, ref string, fn func(*engine.Engine, model.Task) error) error {
	a, err := openApp(flags, false)
	if err != nil {
		return err
	}
	defer a.Close()
	t, ok := a.eng.Resolve(ref)
	if !ok {
		return fmt.Errorf("no task matches %q", ref)
	}
	return fn(a.eng, t)
}

func writeTaskList(w io.Writer, rows []storage.Task) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, r := range rows {
		mark := "[ ]"
		switch {
		case r.Deleted:
			mark = "[-]"
		case r.Completed:
			mark = "[x]"
		}
		icon := model.Category(r.Category).Icon()
		fmt.Fprintf(w, "%s %s %s %-32s %3dm +%d★\n", mark, shortID(r.ID), icon, r.Name, r.Duration, starsFor(r.Duration))
	}
}

func printOutcome(w io.Writer, what string, out engine.Outcome) {
	if !out.Applied {
		fmt.Fprintln(w, "nothing changed")
		return
	}
	stats := out.Snapshot.Stats
	if out.Stars > 0 {
		fmt.Fprintf(w, "%s +%d★ (total %d★, combo x%d)\n", what, out.Stars, stats.TotalStars, stats.CurrentCombo)
	} else {
		fmt.Fprintf(w, "%s (combo x%d)\n", what, stats.CurrentCombo)
	}
	for _, m := range out.CompletedMissions {
		fmt.Fprintf(w, "mission complete: %s +%d★\n", m.Title, m.Reward)
	}
	for _, id := range out.Unlocked {
		fmt.Fprintf(w, "achievement unlocked: %s\n", achievementLabel(id))
	}
}
