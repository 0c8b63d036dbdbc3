package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// Snapshot is the on-disk JSON form of the whole dataset. Timestamps are
// RFC3339 strings so exports stay readable and diffable.
type Snapshot struct {
	ExportedAt string          `json:"exported_at"`
	Tasks      json.RawMessage `json:"tasks"`
	Sessions   json.RawMessage `json:"study_sessions"`
	Notes      json.RawMessage `json:"quick_notes"`
	Goals      json.RawMessage `json:"study_goals"`
	Streak     json.RawMessage `json:"study_streak"`
}

// Data is the decoded form of a snapshot. Collections that fail to
// decode come back empty rather than failing the whole import.
type Data struct {
	Tasks    []store.Task
	Sessions []store.StudySession
	Notes    []store.QuickNote
	Goals    []store.StudyGoal
	Streak   *store.StudyStreak
}

type jsonTask struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Subject          string  `json:"subject"`
	Priority         string  `json:"priority"`
	Type             string  `json:"type"`
	Difficulty       int     `json:"difficulty"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	ActualMinutes    int     `json:"actual_minutes"`
	Progress         int     `json:"progress"`
	Completed        bool    `json:"completed"`
	Tags             string  `json:"tags,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	CreatedAt        string  `json:"created_at"`
	CompletedAt      *string `json:"completed_at,omitempty"`
}

type jsonSession struct {
	ID           string  `json:"id"`
	TaskID       *string `json:"task_id,omitempty"`
	Subject      string  `json:"subject"`
	Technique    string  `json:"technique"`
	Duration     int     `json:"duration_minutes"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	FocusRating  int     `json:"focus_rating"`
	Completed    bool    `json:"completed"`
	Breaks       int     `json:"breaks"`
	Distractions int     `json:"distractions"`
}

type jsonNote struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Subject   string `json:"subject,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Important bool   `json:"important"`
	CreatedAt string `json:"created_at"`
}

type jsonGoal struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	TargetHours float64 `json:"target_hours"`
	PeriodStart string  `json:"period_start"`
	CreatedAt   string  `json:"created_at"`
}

type jsonStreak struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	LastStudyDate  *string `json:"last_study_date,omitempty"`
	TotalStudyDays int     `json:"total_study_days"`
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

// ToJSON writes the full dataset as a pretty-printed snapshot.
func ToJSON(d Data, path string) error {
	snap := Snapshot{ExportedAt: fmtTime(time.Now())}

	tasks := make([]jsonTask, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		tasks = append(tasks, jsonTask{
			ID:               t.ID,
			Title:            t.Title,
			Subject:          t.Subject,
			Priority:         string(t.Priority),
			Type:             string(t.Type),
			Difficulty:       t.Difficulty,
			EstimatedMinutes: t.EstimatedMinutes,
			ActualMinutes:    t.ActualMinutes,
			Progress:         t.Progress,
			Completed:        t.Completed,
			Tags:             t.Tags,
			DueDate:          fmtTimePtr(t.DueDate),
			CreatedAt:        fmtTime(t.CreatedAt),
			CompletedAt:      fmtTimePtr(t.CompletedAt),
		})
	}

	sessions := make([]jsonSession, 0, len(d.Sessions))
	for _, s := range d.Sessions {
		sessions = append(sessions, jsonSession{
			ID:           s.ID,
			TaskID:       s.TaskID,
			Subject:      s.Subject,
			Technique:    string(s.Technique),
			Duration:     s.Duration,
			StartTime:    fmtTime(s.StartTime),
			EndTime:      fmtTime(s.EndTime),
			FocusRating:  s.FocusRating,
			Completed:    s.Completed,
			Breaks:       s.Breaks,
			Distractions: s.Distractions,
		})
	}

	notes := make([]jsonNote, 0, len(d.Notes))
	for _, n := range d.Notes {
		notes = append(notes, jsonNote{
			ID:        n.ID,
			Content:   n.Content,
			Subject:   n.Subject,
			Tags:      n.Tags,
			Important: n.Important,
			CreatedAt: fmtTime(n.CreatedAt),
		})
	}

	goals := make([]jsonGoal, 0, len(d.Goals))
	for _, g := range d.Goals {
		goals = append(goals, jsonGoal{
			ID:          g.ID,
			Type:        string(g.Type),
			TargetHours: g.TargetHours,
			PeriodStart: fmtTime(g.PeriodStart),
			CreatedAt:   fmtTime(g.CreatedAt),
		})
	}

	var err error
	if snap.Tasks, err = json.Marshal(tasks); err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if snap.Sessions, err = json.Marshal(sessions); err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if snap.Notes, err = json.Marshal(notes); err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	if snap.Goals, err = json.Marshal(goals); err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	if d.Streak != nil {
		streak := jsonStreak{
			CurrentStreak:  d.Streak.CurrentStreak,
			LongestStreak:  d.Streak.LongestStreak,
			LastStudyDate:  fmtTimePtr(d.Streak.LastStudyDate),
			TotalStudyDays: d.Streak.TotalStudyDays,
		}
		if snap.Streak, err = json.Marshal(streak); err != nil {
			return fmt.Errorf("marshal streak: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// FromJSON reads a snapshot back. Each collection is decoded on its own;
// a corrupt collection yields its zero value instead of aborting, so a
// partially damaged export still restores what it can. Only a file that
// is not a JSON object at the top level is an error.
func FromJSON(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read json file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Data{}, fmt.Errorf("parse snapshot: %w", err)
	}

	var d Data

	var tasks []jsonTask
	if len(snap.Tasks) > 0 && json.Unmarshal(snap.Tasks, &tasks) == nil {
		for _, t := range tasks {
			created, err := parseTime(t.CreatedAt)
			if err != nil {
				continue
			}
			d.Tasks = append(d.Tasks, store.Task{
				ID:               t.ID,
				Title:            t.Title,
				Subject:          t.Subject,
				Priority:         store.Priority(t.Priority),
				Type:             store.TaskType(t.Type),
				Difficulty:       t.Difficulty,
				EstimatedMinutes: t.EstimatedMinutes,
				ActualMinutes:    t.ActualMinutes,
				Progress:         t.Progress,
				Completed:        t.Completed,
				Tags:             t.Tags,
				DueDate:          parseTimePtr(t.DueDate),
				CreatedAt:        created,
				CompletedAt:      parseTimePtr(t.CompletedAt),
			})
		}
	}

	var sessions []jsonSession
	if len(snap.Sessions) > 0 && json.Unmarshal(snap.Sessions, &sessions) == nil {
		for _, s := range sessions {
			start, err := parseTime(s.StartTime)
			if err != nil {
				continue
			}
			end, err := parseTime(s.EndTime)
			if err != nil {
				continue
			}
			d.Sessions = append(d.Sessions, store.StudySession{
				ID:           s.ID,
				TaskID:       s.TaskID,
				Subject:      s.Subject,
				Technique:    store.Technique(s.Technique),
				Duration:     s.Duration,
				StartTime:    start,
				EndTime:      end,
				FocusRating:  s.FocusRating,
				Completed:    s.Completed,
				Breaks:       s.Breaks,
				Distractions: s.Distractions,
			})
		}
	}

	var notes []jsonNote
	if len(snap.Notes) > 0 && json.Unmarshal(snap.Notes, &notes) == nil {
		for _, n := range notes {
			created, err := parseTime(n.CreatedAt)
			if err != nil {
				continue
			}
			d.Notes = append(d.Notes, store.QuickNote{
				ID:        n.ID,
				Content:   n.Content,
				Subject:   n.Subject,
				Tags:      n.Tags,
				Important: n.Important,
				CreatedAt: created,
			})
		}
	}

	var goals []jsonGoal
	if len(snap.Goals) > 0 && json.Unmarshal(snap.Goals, &goals) == nil {
		for _, g := range goals {
			period, err := parseTime(g.PeriodStart)
			if err != nil {
				continue
			}
			created, err := parseTime(g.CreatedAt)
			if err != nil {
				continue
			}
			d.Goals = append(d.Goals, store.StudyGoal{
				ID:          g.ID,
				Type:        store.GoalType(g.Type),
				TargetHours: g.TargetHours,
				PeriodStart: period,
				CreatedAt:   created,
			})
		}
	}

	var streak jsonStreak
	if len(snap.Streak) > 0 && json.Unmarshal(snap.Streak, &streak) == nil {
		d.Streak = &store.StudyStreak{
			CurrentStreak:  streak.CurrentStreak,
			LongestStreak:  streak.LongestStreak,
			LastStudyDate:  parseTimePtr(streak.LastStudyDate),
			TotalStudyDays: streak.TotalStudyDays,
		}
	}

	return d, nil
}
