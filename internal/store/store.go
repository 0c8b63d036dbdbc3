package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	// study_sessions.task_id is a weak reference on purpose (no foreign
	// key): deleting a task leaves its sessions behind, and lookups must
	// tolerate the dangling id.
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		subject           TEXT NOT NULL DEFAULT '',
		priority          TEXT NOT NULL DEFAULT 'medium',
		type              TEXT NOT NULL DEFAULT 'assignment',
		difficulty        INTEGER NOT NULL DEFAULT 3,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		actual_minutes    INTEGER NOT NULL DEFAULT 0,
		progress          INTEGER NOT NULL DEFAULT 0,
		completed         INTEGER NOT NULL DEFAULT 0,
		tags              TEXT NOT NULL DEFAULT '',
		due_date          TEXT,
		created_at        TEXT NOT NULL,
		completed_at      TEXT
	);

	CREATE TABLE IF NOT EXISTS study_sessions (
		id           TEXT PRIMARY KEY,
		task_id      TEXT,
		subject      TEXT NOT NULL,
		technique    TEXT NOT NULL,
		duration     INTEGER NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		focus_rating INTEGER NOT NULL DEFAULT 3,
		completed    INTEGER NOT NULL DEFAULT 1,
		breaks       INTEGER NOT NULL DEFAULT 0,
		distractions INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start   ON study_sessions(start_time);
	CREATE INDEX IF NOT EXISTS idx_sessions_subject ON study_sessions(subject);

	CREATE TABLE IF NOT EXISTS quick_notes (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL,
		subject    TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		important  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS study_goals (
		id           TEXT PRIMARY KEY,
		type         TEXT NOT NULL,
		target_hours REAL NOT NULL,
		period_start TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS study_streak (
		id               INTEGER PRIMARY KEY CHECK (id = 1),
		current_streak   INTEGER NOT NULL DEFAULT 0,
		longest_streak   INTEGER NOT NULL DEFAULT 0,
		last_study_date  TEXT,
		total_study_days INTEGER NOT NULL DEFAULT 0
	);

	INSERT OR IGNORE INTO study_streak (id) VALUES (1);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_focus',      '1500'),
		('pomodoro_break',      '300'),
		('pomodoro_long_break', '900'),
		('pomodoro_count',      '4'),
		('auto_continue',       'false'),
		('timeblock_duration',  '3600'),
		('flowtime_duration',   '5400'),
		('sprint_duration',     '900'),
		('daily_goal_hours',    '2');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/studyflow/studyflow.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "studyflow", "studyflow.db"), nil
}
