package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/hustle/internal/model"
)

const (
	sqliteTimeLayout = time.RFC3339Nano
	taskColumns      = `id, position, name, description, duration_minutes, category, completed, deleted, created_at, completed_at`
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens path and applies the embedded migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writes serialized on one sqlite handle.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveState(ctx context.Context, st model.State) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"tasks", "daily_history", "category_stats", "achievements", "missions"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("storage: clear %s: %w", table, err)
		}
	}

	for i, t := range st.Tasks {
		row := taskFromModel(i, t)
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.Position, row.Name, row.Description, row.Duration, row.Category,
			boolInt(row.Completed), boolInt(row.Deleted), mustTime(row.CreatedAt), nullTime(row.CompletedAt),
		); err != nil {
			return fmt.Errorf("storage: insert task %s: %w", row.ID, err)
		}
	}

	s := st.Stats
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO stats (id, current_combo, longest_combo, total_stars, total_completed, tasks_skipped,
			consecutive_no_skip, speed_run_start, speed_run_count, last_completion_date, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_combo = excluded.current_combo,
			longest_combo = excluded.longest_combo,
			total_stars = excluded.total_stars,
			total_completed = excluded.total_completed,
			tasks_skipped = excluded.tasks_skipped,
			consecutive_no_skip = excluded.consecutive_no_skip,
			speed_run_start = excluded.speed_run_start,
			speed_run_count = excluded.speed_run_count,
			last_completion_date = excluded.last_completion_date,
			updated_at = excluded.updated_at`,
		s.CurrentCombo, s.LongestCombo, s.TotalStars, s.TotalCompleted, s.TasksSkipped,
		s.ConsecutiveNoSkip, nullTime(s.Start), s.Count, s.LastCompletionDate, mustTime(r.now()),
	); err != nil {
		return fmt.Errorf("storage: upsert stats: %w", err)
	}

	for day, v := range s.DailyHistory {
		if _, err = tx.ExecContext(ctx, `INSERT INTO daily_history (day, completed, stars, skipped) VALUES (?, ?, ?, ?)`,
			day, v.Completed, v.Stars, v.Skipped); err != nil {
			return fmt.Errorf("storage: insert daily history %s: %w", day, err)
		}
	}
	for c, n := range s.CategoryStats {
		if _, err = tx.ExecContext(ctx, `INSERT INTO category_stats (category, completed) VALUES (?, ?)`, string(c), n); err != nil {
			return fmt.Errorf("storage: insert category %s: %w", c, err)
		}
	}
	for id, unlocked := range st.Achievements {
		if _, err = tx.ExecContext(ctx, `INSERT INTO achievements (id, unlocked) VALUES (?, ?)`, string(id), boolInt(unlocked)); err != nil {
			return fmt.Errorf("storage: insert achievement %s: %w", id, err)
		}
	}
	for i, m := range st.Missions {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO missions (position, id, title, reward, completed, day) VALUES (?, ?, ?, ?, ?, ?)`,
			i, m.ID, m.Title, m.Reward, boolInt(m.Completed), m.Date); err != nil {
			return fmt.Errorf("storage: insert mission %s: %w", m.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit save: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadState(ctx context.Context) (model.State, error) {
	st := model.NewState()

	tasks, err := r.ListTasks(ctx, TaskListFilter{IncludeDeleted: true})
	if err != nil {
		return model.State{}, err
	}
	for _, t := range tasks {
		st.Tasks = append(st.Tasks, t.Model())
	}

	if err := r.loadStats(ctx, &st.Stats); err != nil {
		return model.State{}, err
	}
	if err := r.loadAchievements(ctx, st.Achievements); err != nil {
		return model.State{}, err
	}
	missions, err := r.loadMissions(ctx)
	if err != nil {
		return model.State{}, err
	}
	st.Missions = missions
	return st, nil
}

func (r *SQLiteRepository) loadStats(ctx context.Context, out *model.Stats) error {
	var start sql.NullString
	row := r.db.QueryRowContext(ctx, `
		SELECT current_combo, longest_combo, total_stars, total_completed, tasks_skipped,
			consecutive_no_skip, speed_run_start, speed_run_count, last_completion_date
		FROM stats WHERE id = 1`)
	err := row.Scan(&out.CurrentCombo, &out.LongestCombo, &out.TotalStars, &out.TotalCompleted, &out.TasksSkipped,
		&out.ConsecutiveNoSkip, &start, &out.Count, &out.LastCompletionDate)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("storage: load stats: %w", err)
	}
	if out.Start, err = parseNullableTime(start); err != nil {
		return fmt.Errorf("storage: parse speed run start: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT day, completed, stars, skipped FROM daily_history`)
	if err != nil {
		return fmt.Errorf("storage: load daily history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var day string
		var v model.DayStats
		if err := rows.Scan(&day, &v.Completed, &v.Stars, &v.Skipped); err != nil {
			return err
		}
		out.DailyHistory[day] = v
	}
	if err := rows.Err(); err != nil {
		return err
	}

	catRows, err := r.db.QueryContext(ctx, `SELECT category, completed FROM category_stats`)
	if err != nil {
		return fmt.Errorf("storage: load category stats: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var c string
		var n int
		if err := catRows.Scan(&c, &n); err != nil {
			return err
		}
		out.CategoryStats[model.Category(c)] = n
	}
	return catRows.Err()
}

func (r *SQLiteRepository) loadAchievements(ctx context.Context, out model.Achievements) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, unlocked FROM achievements`)
	if err != nil {
		return fmt.Errorf("storage: load achievements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var unlocked int
		if err := rows.Scan(&id, &unlocked); err != nil {
			return err
		}
		if model.AchievementID(id).IsValid() {
			out[model.AchievementID(id)] = unlocked == 1
		}
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadMissions(ctx context.Context) ([]model.Mission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, reward, completed, day FROM missions ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage: load missions: %w", err)
	}
	defer rows.Close()
	out := make([]model.Mission, 0)
	for rows.Next() {
		var m model.Mission
		var completed int
		if err := rows.Scan(&m.ID, &m.Title, &m.Reward, &completed, &m.Date); err != nil {
			return nil, err
		}
		m.Completed = completed == 1
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted = 0")
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY position ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var completed, deleted int
	var created string
	var completedAt sql.NullString
	if err := s.Scan(&out.ID, &out.Position, &out.Name, &out.Description, &out.Duration, &out.Category,
		&completed, &deleted, &created, &completedAt); err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	doneAt, err := parseNullableTime(completedAt)
	if err != nil {
		return Task{}, err
	}
	out.Completed = completed == 1
	out.Deleted = deleted == 1
	out.CreatedAt = createdAt
	out.CompletedAt = doneAt
	return out, nil
}
