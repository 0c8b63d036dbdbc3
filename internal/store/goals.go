package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrZeroTarget = errors.New("goal target hours must be positive")

// AddGoal creates a goal anchored to the given period start.
func (s *Store) AddGoal(goalType GoalType, targetHours float64, periodStart time.Time) (*StudyGoal, error) {
	if targetHours <= 0 {
		return nil, ErrZeroTarget
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO study_goals (id, type, target_hours, period_start, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(goalType), targetHours, periodStart.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	return s.GetGoal(id)
}

func (s *Store) GetGoal(id string) (*StudyGoal, error) {
	row := s.db.QueryRow(
		`SELECT id, type, target_hours, period_start, created_at FROM study_goals WHERE id = ?`, id,
	)
	g, err := scanGoal(row)
	if err != nil {
		return nil, fmt.Errorf("get goal %s: %w", id, err)
	}
	return g, nil
}

func (s *Store) ListGoals() ([]StudyGoal, error) {
	rows, err := s.db.Query(
		`SELECT id, type, target_hours, period_start, created_at FROM study_goals ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []StudyGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (s *Store) UpdateGoalTarget(id string, targetHours float64) error {
	if targetHours <= 0 {
		return ErrZeroTarget
	}
	_, err := s.db.Exec(`UPDATE study_goals SET target_hours = ? WHERE id = ?`, targetHours, id)
	return err
}

func (s *Store) DeleteGoal(id string) error {
	_, err := s.db.Exec(`DELETE FROM study_goals WHERE id = ?`, id)
	return err
}

func scanGoal(row rowScanner) (*StudyGoal, error) {
	g := &StudyGoal{}
	var goalType, periodStart, createdAt string

	if err := row.Scan(&g.ID, &goalType, &g.TargetHours, &periodStart, &createdAt); err != nil {
		return nil, err
	}
	g.Type = GoalType(goalType)
	g.PeriodStart, _ = time.Parse(time.RFC3339, periodStart)
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return g, nil
}
