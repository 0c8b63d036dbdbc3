package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyContent = errors.New("note content is empty")

func (s *Store) AddNote(content, subject, tags string, important bool) (*QuickNote, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	imp := 0
	if important {
		imp = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO quick_notes (id, content, subject, tags, important, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, content, subject, tags, imp, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetNote(id)
}

func (s *Store) GetNote(id string) (*QuickNote, error) {
	row := s.db.QueryRow(
		`SELECT id, content, subject, tags, important, created_at FROM quick_notes WHERE id = ?`, id,
	)
	n, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("get note %s: %w", id, err)
	}
	return n, nil
}

// ListNotes returns notes newest first, important ones pinned to the top.
func (s *Store) ListNotes() ([]QuickNote, error) {
	rows, err := s.db.Query(
		`SELECT id, content, subject, tags, important, created_at
		 FROM quick_notes ORDER BY important DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []QuickNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *Store) DeleteNote(id string) error {
	_, err := s.db.Exec(`DELETE FROM quick_notes WHERE id = ?`, id)
	return err
}

func scanNote(row rowScanner) (*QuickNote, error) {
	n := &QuickNote{}
	var important int
	var createdAt string
	var subject, tags sql.NullString

	if err := row.Scan(&n.ID, &n.Content, &subject, &tags, &important, &createdAt); err != nil {
		return nil, err
	}
	n.Subject = subject.String
	n.Tags = tags.String
	n.Important = important == 1
	n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return n, nil
}
