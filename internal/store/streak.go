package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Streak returns the singleton streak aggregate.
func (s *Store) Streak() (*StudyStreak, error) {
	st := &StudyStreak{}
	var lastDate sql.NullString

	err := s.db.QueryRow(
		`SELECT current_streak, longest_streak, last_study_date, total_study_days FROM study_streak WHERE id = 1`,
	).Scan(&st.CurrentStreak, &st.LongestStreak, &lastDate, &st.TotalStudyDays)
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	if lastDate.Valid {
		d, _ := time.Parse(time.RFC3339, lastDate.String)
		st.LastStudyDate = &d
	}
	return st, nil
}

func (s *Store) SaveStreak(st StudyStreak) error {
	var lastDate any
	if st.LastStudyDate != nil {
		lastDate = st.LastStudyDate.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`UPDATE study_streak SET current_streak = ?, longest_streak = ?, last_study_date = ?, total_study_days = ? WHERE id = 1`,
		st.CurrentStreak, st.LongestStreak, lastDate, st.TotalStudyDays,
	)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}
