// Package streak derives the consecutive-study-day counters from the
// dates on which sessions were completed.
package streak

import (
	"math"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// Apply folds one day of study activity into the streak aggregate and
// reports whether anything changed. The day is truncated to calendar-day
// granularity before comparison, so repeated sessions on the same day
// are counted once. Days arriving out of order (a timestamp before the
// last recorded study date) are ignored rather than guessed at.
func Apply(cur store.StudyStreak, today time.Time) (store.StudyStreak, bool) {
	day := Truncate(today)

	if cur.LastStudyDate == nil {
		cur.CurrentStreak = 1
		if cur.LongestStreak < 1 {
			cur.LongestStreak = 1
		}
		cur.LastStudyDate = &day
		cur.TotalStudyDays++
		return cur, true
	}

	// The stored date round-trips through the store in UTC; bring it into
	// today's zone so both sides share one calendar-day base. Rounding
	// absorbs DST-shortened days.
	last := Truncate(cur.LastStudyDate.In(day.Location()))
	daysDiff := int(math.Round(day.Sub(last).Hours() / 24))

	switch {
	case daysDiff == 0:
		return cur, false
	case daysDiff == 1:
		cur.CurrentStreak++
		if cur.CurrentStreak > cur.LongestStreak {
			cur.LongestStreak = cur.CurrentStreak
		}
	case daysDiff > 1:
		cur.CurrentStreak = 1
	default:
		// Backdated activity: no defined ordering, leave the streak alone.
		return cur, false
	}

	cur.LastStudyDate = &day
	cur.TotalStudyDays++
	return cur, true
}

// Record loads the persisted streak, applies one day of activity and
// saves it back. Call once per completed session.
func Record(s *store.Store, today time.Time) error {
	cur, err := s.Streak()
	if err != nil {
		return err
	}
	next, changed := Apply(*cur, today)
	if !changed {
		return nil
	}
	return s.SaveStreak(next)
}

// Truncate zeroes the clock component of t, keeping its location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
