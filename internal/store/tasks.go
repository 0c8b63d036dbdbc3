package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyTitle = errors.New("task title is empty")

const taskColumns = `id, title, subject, priority, type, difficulty, estimated_minutes,
	actual_minutes, progress, completed, tags, due_date, created_at, completed_at`

// CreateTask inserts a new task. ID and CreatedAt are assigned here;
// the rest is taken from t.
func (s *Store) CreateTask(t Task) (*Task, error) {
	if t.Title == "" {
		return nil, ErrEmptyTitle
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	var due any
	if t.DueDate != nil {
		due = t.DueDate.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, title, subject, priority, type, difficulty, estimated_minutes, tags, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.Title, t.Subject, string(t.Priority), string(t.Type), t.Difficulty, t.EstimatedMinutes, t.Tags, due, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns tasks ordered for display: open tasks first, then by
// due date (undated last), priority rank as tie-break, oldest first.
func (s *Store) ListTasks(includeCompleted bool) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if !includeCompleted {
		query += ` WHERE completed = 0`
	}
	query += ` ORDER BY completed,
		CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date,
		CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
		created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites the editable fields of a task. Completion state and
// progress are managed through SetTaskProgress and ToggleTask only.
func (s *Store) UpdateTask(id string, t Task) error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	var due any
	if t.DueDate != nil {
		due = t.DueDate.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, subject = ?, priority = ?, type = ?, difficulty = ?,
		 estimated_minutes = ?, tags = ?, due_date = ? WHERE id = ?`,
		t.Title, t.Subject, string(t.Priority), string(t.Type), t.Difficulty, t.EstimatedMinutes, t.Tags, due, id,
	)
	return err
}

// SetTaskProgress sets progress (clamped to 0-100) and keeps completion
// consistent with it: 100 marks the task completed and stamps
// completed_at exactly once; anything lower clears both.
func (s *Store) SetTaskProgress(id string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE tasks SET progress = ?,
		 completed = CASE WHEN ? >= 100 THEN 1 ELSE 0 END,
		 completed_at = CASE WHEN ? >= 100 THEN COALESCE(completed_at, ?) ELSE NULL END
		 WHERE id = ?`,
		progress, progress, progress, now, id,
	)
	return err
}

// ToggleTask flips completion. Completing sets progress to 100;
// un-completing resets it to 0 and clears completed_at.
func (s *Store) ToggleTask(id string) error {
	t, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if t.Completed {
		return s.SetTaskProgress(id, 0)
	}
	return s.SetTaskProgress(id, 100)
}

// AddTaskActualMinutes accumulates timer minutes onto a task. A missing
// task id is tolerated: sessions may reference deleted tasks.
func (s *Store) AddTaskActualMinutes(id string, minutes int) error {
	if id == "" || minutes <= 0 {
		return nil
	}
	_, err := s.db.Exec(`UPDATE tasks SET actual_minutes = actual_minutes + ? WHERE id = ?`, minutes, id)
	return err
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// CountOverdueTasks counts open tasks whose due date is before now.
func (s *Store) CountOverdueTasks(now time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE completed = 0 AND due_date IS NOT NULL AND due_date < ?`,
		now.UTC().Format(time.RFC3339),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var priority, taskType, createdAt string
	var dueDate, completedAt sql.NullString
	var completed int

	err := row.Scan(&t.ID, &t.Title, &t.Subject, &priority, &taskType, &t.Difficulty,
		&t.EstimatedMinutes, &t.ActualMinutes, &t.Progress, &completed, &t.Tags,
		&dueDate, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = Priority(priority)
	t.Type = TaskType(taskType)
	t.Completed = completed == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if dueDate.Valid {
		d, _ := time.Parse(time.RFC3339, dueDate.String)
		t.DueDate = &d
	}
	if completedAt.Valid {
		c, _ := time.Parse(time.RFC3339, completedAt.String)
		t.CompletedAt = &c
	}
	return t, nil
}
