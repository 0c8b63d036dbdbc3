package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RestoreCounts reports how many rows an import actually inserted.
// Rows whose IDs already exist are left untouched.
type RestoreCounts struct {
	Tasks    int
	Sessions int
	Notes    int
	Goals    int
}

// Restore merges a snapshot into the database. Existing rows win over
// imported ones; the streak record is overwritten only when the
// snapshot has studied more recently.
func (s *Store) Restore(tasks []Task, sessions []StudySession, notes []QuickNote, goals []StudyGoal, streak *StudyStreak) (RestoreCounts, error) {
	var counts RestoreCounts

	tx, err := s.db.Begin()
	if err != nil {
		return counts, fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		var due, completedAt any
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format(time.RFC3339)
		}
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO tasks (id, title, subject, priority, type, difficulty, estimated_minutes,
				actual_minutes, progress, completed, tags, due_date, created_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Subject, string(t.Priority), string(t.Type), t.Difficulty, t.EstimatedMinutes,
			t.ActualMinutes, t.Progress, boolToInt(t.Completed), t.Tags, due,
			t.CreatedAt.UTC().Format(time.RFC3339), completedAt,
		)
		if err != nil {
			return counts, fmt.Errorf("restore task %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			counts.Tasks++
		}
	}

	for _, sess := range sessions {
		if sess.Duration <= 0 {
			continue
		}
		if sess.ID == "" {
			sess.ID = uuid.NewString()
		}
		var taskID any
		if sess.TaskID != nil && *sess.TaskID != "" {
			taskID = *sess.TaskID
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO study_sessions (id, task_id, subject, technique, duration, start_time,
				end_time, focus_rating, completed, breaks, distractions)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, taskID, sess.Subject, string(sess.Technique), sess.Duration,
			sess.StartTime.UTC().Format(time.RFC3339), sess.EndTime.UTC().Format(time.RFC3339),
			sess.FocusRating, boolToInt(sess.Completed), sess.Breaks, sess.Distractions,
		)
		if err != nil {
			return counts, fmt.Errorf("restore session %s: %w", sess.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			counts.Sessions++
		}
	}

	for _, note := range notes {
		if note.ID == "" {
			note.ID = uuid.NewString()
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO quick_notes (id, content, subject, tags, important, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			note.ID, note.Content, note.Subject, note.Tags, boolToInt(note.Important),
			note.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return counts, fmt.Errorf("restore note %s: %w", note.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			counts.Notes++
		}
	}

	for _, g := range goals {
		if g.TargetHours <= 0 {
			continue
		}
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO study_goals (id, type, target_hours, period_start, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			g.ID, string(g.Type), g.TargetHours, g.PeriodStart.UTC().Format(time.RFC3339),
			g.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return counts, fmt.Errorf("restore goal %s: %w", g.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			counts.Goals++
		}
	}

	if streak != nil && streak.LastStudyDate != nil {
		var lastDate sql.NullString
		err := tx.QueryRow(`SELECT last_study_date FROM study_streak WHERE id = 1`).Scan(&lastDate)
		if err != nil && err != sql.ErrNoRows {
			return counts, fmt.Errorf("restore streak: %w", err)
		}
		newer := !lastDate.Valid
		if lastDate.Valid {
			if current, perr := time.Parse(time.RFC3339, lastDate.String); perr == nil {
				newer = streak.LastStudyDate.After(current)
			}
		}
		if newer {
			_, err = tx.Exec(
				`UPDATE study_streak SET current_streak = ?, longest_streak = ?, last_study_date = ?, total_study_days = ? WHERE id = 1`,
				streak.CurrentStreak, streak.LongestStreak,
				streak.LastStudyDate.UTC().Format(time.RFC3339), streak.TotalStudyDays,
			)
			if err != nil {
				return counts, fmt.Errorf("restore streak: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit restore: %w", err)
	}
	return counts, nil
}
