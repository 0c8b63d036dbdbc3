// studyflow is a terminal study companion: task list, focus timer,
// quick notes, goals and analytics backed by a local SQLite database.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyflow/internal/advice"
	"github.com/sadopc/studyflow/internal/config"
	"github.com/sadopc/studyflow/internal/export"
	"github.com/sadopc/studyflow/internal/stats"
	"github.com/sadopc/studyflow/internal/store"
	"github.com/sadopc/studyflow/internal/tui"
)

var (
	flagDB     string
	flagConfig string

	exportFormat string
	exportOut    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "studyflow",
		Short:         "Terminal study companion",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the SQLite database (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the TOML config file")

	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func openStore() (*store.Store, error) {
	path := flagDB
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}
	return store.New(path)
}

func loadSettings(s *store.Store) (config.Settings, error) {
	all, err := s.GetAllSettings()
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	values := make(map[string]string, len(all))
	for _, kv := range all {
		values[kv.Key] = kv.Value
	}
	settings := config.FromStore(values)

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Settings{}, err
	}
	return settings.Overlay(fileCfg), nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	settings, err := loadSettings(s)
	if err != nil {
		return err
	}

	app := tui.NewApp(s, settings)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data to CSV or JSON",
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&exportFormat, "format", "json", "export format: csv or json")
	cmd.Flags().StringVar(&exportOut, "out", "", "output file path")
	return cmd
}

func runExport(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	out := exportOut
	if out == "" {
		home, _ := os.UserHomeDir()
		out = filepath.Join(home, fmt.Sprintf("studyflow-export-%s.%s",
			time.Now().Format("2006-01-02"), exportFormat))
	}

	switch exportFormat {
	case "csv":
		sessions, err := s.ListSessions(store.SessionFilter{})
		if err != nil {
			return err
		}
		tasks, err := s.ListTasks(true)
		if err != nil {
			return err
		}
		titles := make(map[string]string, len(tasks))
		for _, t := range tasks {
			titles[t.ID] = t.Title
		}
		if err := export.SessionsToCSV(sessions, titles, out); err != nil {
			return err
		}
		fmt.Printf("Exported %d session(s) to %s\n", len(sessions), out)
		return nil

	case "json":
		data, err := collectData(s)
		if err != nil {
			return err
		}
		if err := export.ToJSON(data, out); err != nil {
			return err
		}
		fmt.Println("Exported snapshot to", out)
		return nil

	default:
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}
}

func collectData(s *store.Store) (export.Data, error) {
	tasks, err := s.ListTasks(true)
	if err != nil {
		return export.Data{}, err
	}
	sessions, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		return export.Data{}, err
	}
	notes, err := s.ListNotes()
	if err != nil {
		return export.Data{}, err
	}
	goals, err := s.ListGoals()
	if err != nil {
		return export.Data{}, err
	}
	streak, err := s.Streak()
	if err != nil {
		return export.Data{}, err
	}
	return export.Data{Tasks: tasks, Sessions: sessions, Notes: notes, Goals: goals, Streak: streak}, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON snapshot, keeping existing records",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
}

func runImport(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := export.FromJSON(args[0])
	if err != nil {
		return err
	}

	counts, err := s.Restore(data.Tasks, data.Sessions, data.Notes, data.Goals, data.Streak)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d task(s), %d session(s), %d note(s), %d goal(s)\n",
		counts.Tasks, counts.Sessions, counts.Notes, counts.Goals)
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print today's and this week's study statistics",
		RunE:  runStats,
	}
}

func runStats(_ *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	from := stats.DayStart(now).AddDate(0, 0, -6)
	sessions, err := s.ListSessions(store.SessionFilter{From: &from})
	if err != nil {
		return err
	}
	tasks, err := s.ListTasks(true)
	if err != nil {
		return err
	}
	overdue, err := s.CountOverdueTasks(now)
	if err != nil {
		return err
	}
	streak, err := s.Streak()
	if err != nil {
		return err
	}

	today := stats.Today(sessions, tasks, now)
	week := stats.Week(sessions, tasks, now)

	fmt.Printf("Today:     %s studied, %d task(s) done", formatMinutes(today.StudyTime), today.TasksCompleted)
	if today.FocusScore > 0 {
		fmt.Printf(", focus %.1f/5", today.FocusScore)
	}
	fmt.Println()
	fmt.Printf("This week: %s over %d day(s), %d task(s) done\n",
		formatMinutes(week.StudyTime), week.StudyDays, week.TasksCompleted)
	fmt.Printf("Streak:    %d day(s) current, %d longest, %d total\n",
		streak.CurrentStreak, streak.LongestStreak, streak.TotalStudyDays)

	if subjects := stats.Subjects(sessions); len(subjects) > 0 {
		fmt.Println("\nSubjects this week:")
		for _, sub := range subjects {
			fmt.Printf("  %-24s %s\n", sub.Subject, formatMinutes(sub.Minutes))
		}
	}

	recs := advice.Recommend(advice.Input{
		Today:         today,
		Week:          week,
		OverdueTasks:  overdue,
		CurrentStreak: streak.CurrentStreak,
	})
	if len(recs) > 0 {
		fmt.Println("\nSuggestions:")
		for _, r := range recs {
			fmt.Println("  -", r.Message)
		}
	}
	return nil
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	if minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
