package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Timer.Focus != nil {
		t.Fatal("missing file should yield zero config")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadParsesTimerSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timer]
focus = 50
auto-continue = true

[goals]
daily-goal-hours = 3.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timer.Focus == nil || *cfg.Timer.Focus != 50 {
		t.Fatalf("focus = %v, want 50", cfg.Timer.Focus)
	}
	if cfg.Timer.AutoContinue == nil || !*cfg.Timer.AutoContinue {
		t.Fatal("auto-continue not parsed")
	}
	if cfg.Timer.Break != nil {
		t.Fatal("absent key should stay nil")
	}
	if cfg.Goals.DailyGoalHours == nil || *cfg.Goals.DailyGoalHours != 3.5 {
		t.Fatalf("daily-goal-hours = %v, want 3.5", cfg.Goals.DailyGoalHours)
	}
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[timer\nfocus="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestFromStoreDefaults(t *testing.T) {
	s := FromStore(nil)
	if s.Timer.FocusDuration != 25*time.Minute {
		t.Fatalf("focus = %v, want 25m", s.Timer.FocusDuration)
	}
	if s.Timer.SessionsUntilLongBreak != 4 {
		t.Fatalf("count = %d, want 4", s.Timer.SessionsUntilLongBreak)
	}
	if s.Durations[store.TechniqueFlowtime] != 90*time.Minute {
		t.Fatalf("flowtime = %v, want 90m", s.Durations[store.TechniqueFlowtime])
	}
	if s.DailyGoalHours != 2 {
		t.Fatalf("daily goal = %v, want 2", s.DailyGoalHours)
	}
}

func TestFromStoreParsesValues(t *testing.T) {
	s := FromStore(map[string]string{
		"pomodoro_focus":   "3000",
		"pomodoro_count":   "3",
		"auto_continue":    "true",
		"sprint_duration":  "garbage",
		"daily_goal_hours": "4",
	})
	if s.Timer.FocusDuration != 50*time.Minute {
		t.Fatalf("focus = %v, want 50m", s.Timer.FocusDuration)
	}
	if s.Durations[store.TechniquePomodoro] != 50*time.Minute {
		t.Fatal("pomodoro technique duration should track focus setting")
	}
	if s.Timer.SessionsUntilLongBreak != 3 {
		t.Fatalf("count = %d, want 3", s.Timer.SessionsUntilLongBreak)
	}
	if !s.Timer.AutoContinue {
		t.Fatal("auto_continue not applied")
	}
	if s.Durations[store.TechniqueSprint] != 15*time.Minute {
		t.Fatal("malformed value should keep the default")
	}
	if s.DailyGoalHours != 4 {
		t.Fatalf("daily goal = %v, want 4", s.DailyGoalHours)
	}
}

func TestOverlayFileWins(t *testing.T) {
	base := FromStore(map[string]string{"pomodoro_focus": "1500"})
	focus := 45
	auto := true
	hours := 5.0

	s := base.Overlay(FileConfig{
		Timer: TimerConfig{Focus: &focus, AutoContinue: &auto},
		Goals: GoalsConfig{DailyGoalHours: &hours},
	})
	if s.Timer.FocusDuration != 45*time.Minute {
		t.Fatalf("focus = %v, want 45m", s.Timer.FocusDuration)
	}
	if !s.Timer.AutoContinue {
		t.Fatal("auto-continue overlay not applied")
	}
	if s.DailyGoalHours != 5 {
		t.Fatalf("daily goal = %v, want 5", s.DailyGoalHours)
	}
	// Untouched values survive.
	if s.Timer.BreakDuration != 5*time.Minute {
		t.Fatalf("break = %v, want 5m", s.Timer.BreakDuration)
	}
}
