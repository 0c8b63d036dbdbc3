package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

func sampleData() Data {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 3)
	taskID := "task-1"
	lastStudy := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	return Data{
		Tasks: []store.Task{
			{
				ID:               taskID,
				Title:            "Read chapter 4",
				Subject:          "Physics",
				Priority:         store.PriorityHigh,
				Type:             store.TypeReading,
				Difficulty:       3,
				EstimatedMinutes: 60,
				Progress:         40,
				DueDate:          &due,
				CreatedAt:        now,
			},
		},
		Sessions: []store.StudySession{
			{
				ID:          "sess-1",
				TaskID:      &taskID,
				Subject:     "Physics",
				Technique:   store.TechniquePomodoro,
				Duration:    25,
				StartTime:   now,
				EndTime:     now.Add(25 * time.Minute),
				FocusRating: 4,
				Completed:   true,
			},
			{
				ID:        "sess-2",
				Subject:   "Math",
				Technique: store.TechniqueFlowtime,
				Duration:  50,
				StartTime: now.Add(time.Hour),
				EndTime:   now.Add(time.Hour + 50*time.Minute),
				Completed: false,
			},
		},
		Notes: []store.QuickNote{
			{ID: "note-1", Content: "review momentum formulas", Subject: "Physics", Important: true, CreatedAt: now},
		},
		Goals: []store.StudyGoal{
			{ID: "goal-1", Type: store.GoalDaily, TargetHours: 2, PeriodStart: lastStudy, CreatedAt: now},
		},
		Streak: &store.StudyStreak{CurrentStreak: 3, LongestStreak: 5, LastStudyDate: &lastStudy, TotalStudyDays: 12},
	}
}

// ============================================================
// CSV
// ============================================================

func TestSessionsToCSV(t *testing.T) {
	d := sampleData()
	path := filepath.Join(t.TempDir(), "sessions.csv")

	tasks := map[string]string{"task-1": "Read chapter 4"}
	if err := SessionsToCSV(d.Sessions, tasks, path); err != nil {
		t.Fatalf("SessionsToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][6] != "Minutes" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[1] != "Physics" {
		t.Fatalf("Subject = %q, want Physics", row[1])
	}
	if row[2] != "Read chapter 4" {
		t.Fatalf("Task = %q, want task title", row[2])
	}
	if row[6] != "25" {
		t.Fatalf("Minutes = %q, want 25", row[6])
	}
	if row[8] != "true" {
		t.Fatalf("Completed = %q, want true", row[8])
	}

	// Unlinked session shows an empty task column.
	if records[2][2] != "" {
		t.Fatalf("unlinked session task = %q, want empty", records[2][2])
	}
}

func TestSessionsToCSVDeletedTask(t *testing.T) {
	gone := "gone"
	sessions := []store.StudySession{
		{ID: "s1", TaskID: &gone, Subject: "Math", StartTime: time.Now(), EndTime: time.Now(), Duration: 10},
	}
	path := filepath.Join(t.TempDir(), "dangling.csv")

	if err := SessionsToCSV(sessions, map[string]string{}, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if records[1][2] != "-" {
		t.Fatalf("deleted task should show '-', got %q", records[1][2])
	}
}

func TestSessionsToCSVBadPath(t *testing.T) {
	if err := SessionsToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON snapshot
// ============================================================

func TestJSONRoundTrip(t *testing.T) {
	d := sampleData()
	path := filepath.Join(t.TempDir(), "snapshot.json")

	if err := ToJSON(d, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := FromJSON(path)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if len(got.Tasks) != 1 || len(got.Sessions) != 2 || len(got.Notes) != 1 || len(got.Goals) != 1 {
		t.Fatalf("collection sizes wrong: %d/%d/%d/%d", len(got.Tasks), len(got.Sessions), len(got.Notes), len(got.Goals))
	}

	task := got.Tasks[0]
	if task.ID != "task-1" || task.Priority != store.PriorityHigh || task.Progress != 40 {
		t.Fatalf("task mangled: %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(*d.Tasks[0].DueDate) {
		t.Fatalf("due date mangled: %v", task.DueDate)
	}

	sess := got.Sessions[0]
	if sess.TaskID == nil || *sess.TaskID != "task-1" {
		t.Fatalf("session task link lost: %v", sess.TaskID)
	}
	if !sess.StartTime.Equal(d.Sessions[0].StartTime) {
		t.Fatalf("start time mangled: %v", sess.StartTime)
	}
	if got.Sessions[1].TaskID != nil {
		t.Fatal("unlinked session gained a task id")
	}

	if got.Streak == nil || got.Streak.CurrentStreak != 3 || got.Streak.TotalStudyDays != 12 {
		t.Fatalf("streak mangled: %+v", got.Streak)
	}
	if got.Streak.LastStudyDate == nil || !got.Streak.LastStudyDate.Equal(*d.Streak.LastStudyDate) {
		t.Fatalf("last study date mangled: %v", got.Streak.LastStudyDate)
	}
}

func TestFromJSONCorruptCollection(t *testing.T) {
	// A snapshot whose tasks array is garbage should still deliver the
	// sessions that decode fine.
	raw := `{
  "exported_at": "2024-03-15T10:00:00Z",
  "tasks": "not an array",
  "study_sessions": [
    {"id": "s1", "subject": "Math", "technique": "pomodoro", "duration_minutes": 25,
     "start_time": "2024-03-15T10:00:00Z", "end_time": "2024-03-15T10:25:00Z",
     "focus_rating": 4, "completed": true}
  ]
}`
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FromJSON(path)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Tasks != nil {
		t.Fatalf("corrupt tasks should decode to nil, got %+v", got.Tasks)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].Duration != 25 {
		t.Fatalf("sessions lost: %+v", got.Sessions)
	}
}

func TestFromJSONNotAnObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("[1,2,3]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromJSON(path); err == nil {
		t.Fatal("expected error for non-object snapshot")
	}
}

func TestFromJSONMissingFile(t *testing.T) {
	if _, err := FromJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	if err := ToJSON(Data{}, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, snap.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", snap.ExportedAt)
	}
}
