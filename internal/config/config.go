// Package config layers runtime configuration: defaults, the settings
// table in the database, then an optional TOML file on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sadopc/studyflow/internal/store"
	"github.com/sadopc/studyflow/internal/timer"
)

// FileConfig represents the TOML configuration file. All fields are
// pointers so absent keys leave the database-backed settings alone.
type FileConfig struct {
	Database DatabaseConfig `toml:"database"`
	Timer    TimerConfig    `toml:"timer"`
	Goals    GoalsConfig    `toml:"goals"`
}

type DatabaseConfig struct {
	Path *string `toml:"path"`
}

// TimerConfig maps timer-related settings. Durations are minutes.
type TimerConfig struct {
	Focus         *int  `toml:"focus"`
	Break         *int  `toml:"break"`
	LongBreak     *int  `toml:"long-break"`
	PomodoroCount *int  `toml:"pomodoro-count"`
	AutoContinue  *bool `toml:"auto-continue"`
	Timeblock     *int  `toml:"timeblock"`
	Flowtime      *int  `toml:"flowtime"`
	Sprint        *int  `toml:"sprint"`
}

type GoalsConfig struct {
	DailyGoalHours *float64 `toml:"daily-goal-hours"`
}

// Load reads a TOML config from the given path. A missing file is not
// an error.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Settings is the effective runtime configuration after layering.
type Settings struct {
	Timer          timer.Config
	Durations      map[store.Technique]time.Duration
	DailyGoalHours float64
}

// FromStore builds Settings from the settings table, falling back to
// defaults for missing or malformed values.
func FromStore(values map[string]string) Settings {
	s := Settings{
		Timer: timer.DefaultConfig(),
		Durations: map[store.Technique]time.Duration{
			store.TechniquePomodoro:  25 * time.Minute,
			store.TechniqueTimeblock: 60 * time.Minute,
			store.TechniqueFlowtime:  90 * time.Minute,
			store.TechniqueSprint:    15 * time.Minute,
		},
		DailyGoalHours: 2,
	}

	if v, ok := seconds(values, "pomodoro_focus"); ok {
		s.Timer.FocusDuration = v
		s.Durations[store.TechniquePomodoro] = v
	}
	if v, ok := seconds(values, "pomodoro_break"); ok {
		s.Timer.BreakDuration = v
	}
	if v, ok := seconds(values, "pomodoro_long_break"); ok {
		s.Timer.LongBreakDuration = v
	}
	if v, err := strconv.Atoi(values["pomodoro_count"]); err == nil && v > 0 {
		s.Timer.SessionsUntilLongBreak = v
	}
	if v, err := strconv.ParseBool(values["auto_continue"]); err == nil {
		s.Timer.AutoContinue = v
	}
	if v, ok := seconds(values, "timeblock_duration"); ok {
		s.Durations[store.TechniqueTimeblock] = v
	}
	if v, ok := seconds(values, "flowtime_duration"); ok {
		s.Durations[store.TechniqueFlowtime] = v
	}
	if v, ok := seconds(values, "sprint_duration"); ok {
		s.Durations[store.TechniqueSprint] = v
	}
	if v, err := strconv.ParseFloat(values["daily_goal_hours"], 64); err == nil && v > 0 {
		s.DailyGoalHours = v
	}

	return s
}

// Overlay applies the file config on top of the database-backed
// settings. File values win.
func (s Settings) Overlay(fc FileConfig) Settings {
	t := fc.Timer
	if t.Focus != nil && *t.Focus > 0 {
		s.Timer.FocusDuration = time.Duration(*t.Focus) * time.Minute
		s.Durations[store.TechniquePomodoro] = s.Timer.FocusDuration
	}
	if t.Break != nil && *t.Break > 0 {
		s.Timer.BreakDuration = time.Duration(*t.Break) * time.Minute
	}
	if t.LongBreak != nil && *t.LongBreak > 0 {
		s.Timer.LongBreakDuration = time.Duration(*t.LongBreak) * time.Minute
	}
	if t.PomodoroCount != nil && *t.PomodoroCount > 0 {
		s.Timer.SessionsUntilLongBreak = *t.PomodoroCount
	}
	if t.AutoContinue != nil {
		s.Timer.AutoContinue = *t.AutoContinue
	}
	if t.Timeblock != nil && *t.Timeblock > 0 {
		s.Durations[store.TechniqueTimeblock] = time.Duration(*t.Timeblock) * time.Minute
	}
	if t.Flowtime != nil && *t.Flowtime > 0 {
		s.Durations[store.TechniqueFlowtime] = time.Duration(*t.Flowtime) * time.Minute
	}
	if t.Sprint != nil && *t.Sprint > 0 {
		s.Durations[store.TechniqueSprint] = time.Duration(*t.Sprint) * time.Minute
	}
	if fc.Goals.DailyGoalHours != nil && *fc.Goals.DailyGoalHours > 0 {
		s.DailyGoalHours = *fc.Goals.DailyGoalHours
	}
	return s
}

func seconds(values map[string]string, key string) (time.Duration, bool) {
	v, err := strconv.Atoi(values[key])
	if err != nil || v <= 0 {
		return 0, false
	}
	return time.Duration(v) * time.Second, true
}
