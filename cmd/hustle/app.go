package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sandeepkv93/hustle/internal/clock"
	"github.com/sandeepkv93/hustle/internal/config"
	"github.com/sandeepkv93/hustle/internal/engine"
	"github.com/sandeepkv93/hustle/internal/scheduler"
	"github.com/sandeepkv93/hustle/internal/storage"
)

// app bundles what every subcommand needs: resolved config, the repository
// and an engine seeded from it.
type app struct {
	cfg     config.Config
	repo    *storage.SQLiteRepository
	store   *storage.Retrying
	eng     *engine.Engine
	logger  *slog.Logger
	logFile *os.File
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(flags.dbPath) != "" {
		cfg.DBPath = flags.dbPath
	}
	if strings.TrimSpace(flags.logLevel) != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func openApp(flags *rootFlags, withScheduler bool) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.Level()
	loc, _ := cfg.Location()

	a := &app{cfg: cfg}
	out := os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo
	a.store = storage.WithRetry(repo)

	st, err := a.store.LoadState(context.Background())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	opts := engine.Options{
		Clock:  clock.System{Location: loc},
		Rand:   cfg.Rand(),
		Logger: a.logger,
		Saver:  a.store,
	}
	if withScheduler {
		opts.Scheduler = scheduler.NewEngine(cfg.SchedulerBuffer)
	}
	a.eng, err = engine.New(st, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.logger.Debug("hustle started", "db", cfg.DBPath, "tasks", len(st.Tasks))
	return a, nil
}

func (a *app) Close() error {
	var err error
	if a.repo != nil {
		err = a.repo.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	return err
}
