package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/hustle/internal/config"
	"github.com/sandeepkv93/hustle/internal/update"
)

var version = "v0.1.0"

type rootFlags struct {
	config   string
	dbPath   string
	logLevel string
}

func defaultConfigPath() string {
	if v := os.Getenv("HUSTLE_CONFIG"); v != "" {
		return v
	}
	return config.DefaultFile
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "hustle",
		Short:         "hustle turns your task list into a game",
		Long:          "hustle tracks tasks with stars, combos, achievements and daily missions. Run without a subcommand to open the terminal UI.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.config, "config", defaultConfigPath(), "path to the YAML config file")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the terminal UI (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runTUI(cmd.Context(), flags)
			},
		},
		newAddCmd(flags),
		newDoneCmd(flags),
		newSkipCmd(flags),
		newListCmd(flags),
		newStatsCmd(flags),
		newExportCmd(flags),
		newImportCmd(flags),
	)
	return root
}

func runTUI(ctx context.Context, flags *rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(flags, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := a.eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("engine loop stopped", "error", err)
		}
	}()

	opts := update.Options{
		DesktopNotifications: a.cfg.DesktopNotifications,
		ExportDir:            filepath.Dir(a.cfg.DBPath),
	}
	if a.cfg.DesktopNotifications {
		opts.Notifier = update.ExecDesktopNotifier{}
	}
	program := tea.NewProgram(update.NewModel(a.eng, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("hustle failed: %w", err)
	}
	return nil
}
