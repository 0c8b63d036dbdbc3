package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrZeroDuration = errors.New("session duration is zero")

// AddSession appends a study session. Sessions are immutable once
// written; zero-length sessions are rejected to keep noise out of the
// statistics.
func (s *Store) AddSession(sess StudySession) (*StudySession, error) {
	if sess.Duration <= 0 {
		return nil, ErrZeroDuration
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	var taskID any
	if sess.TaskID != nil && *sess.TaskID != "" {
		taskID = *sess.TaskID
	}
	completed := 0
	if sess.Completed {
		completed = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO study_sessions (id, task_id, subject, technique, duration, start_time, end_time, focus_rating, completed, breaks, distractions)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, taskID, sess.Subject, string(sess.Technique), sess.Duration,
		sess.StartTime.UTC().Format(time.RFC3339), sess.EndTime.UTC().Format(time.RFC3339),
		sess.FocusRating, completed, sess.Breaks, sess.Distractions,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s.GetSession(sess.ID)
}

func (s *Store) GetSession(id string) (*StudySession, error) {
	row := s.db.QueryRow(
		`SELECT id, task_id, subject, technique, duration, start_time, end_time, focus_rating, completed, breaks, distractions
		 FROM study_sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Store) ListSessions(f SessionFilter) ([]StudySession, error) {
	query := `SELECT id, task_id, subject, technique, duration, start_time, end_time, focus_rating, completed, breaks, distractions
		FROM study_sessions WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_time >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND start_time < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	if f.Subject != "" {
		query += ` AND subject = ?`
		args = append(args, f.Subject)
	}
	query += ` ORDER BY start_time DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []StudySession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*StudySession, error) {
	sess := &StudySession{}
	var taskID sql.NullString
	var technique, startTime, endTime string
	var completed int

	err := row.Scan(&sess.ID, &taskID, &sess.Subject, &technique, &sess.Duration,
		&startTime, &endTime, &sess.FocusRating, &completed, &sess.Breaks, &sess.Distractions)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		sess.TaskID = &taskID.String
	}
	sess.Technique = Technique(technique)
	sess.Completed = completed == 1
	sess.StartTime, _ = time.Parse(time.RFC3339, startTime)
	sess.EndTime, _ = time.Parse(time.RFC3339, endTime)
	return sess, nil
}
