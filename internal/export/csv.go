package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// SessionsToCSV writes sessions as a flat CSV report. tasks maps task
// IDs to titles so linked sessions show something readable; sessions
// whose task was deleted fall back to a dash.
func SessionsToCSV(sessions []store.StudySession, tasks map[string]string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Subject", "Task", "Technique", "Start", "End", "Minutes", "Focus", "Completed", "Breaks", "Distractions"}); err != nil {
		return err
	}

	for _, s := range sessions {
		taskName := ""
		if s.TaskID != nil {
			taskName = "-"
			if title, ok := tasks[*s.TaskID]; ok {
				taskName = title
			}
		}

		row := []string{
			s.ID,
			s.Subject,
			taskName,
			string(s.Technique),
			s.StartTime.Local().Format(time.RFC3339),
			s.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.Duration),
			fmt.Sprintf("%d", s.FocusRating),
			fmt.Sprintf("%t", s.Completed),
			fmt.Sprintf("%d", s.Breaks),
			fmt.Sprintf("%d", s.Distractions),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
