package streak

import (
	"testing"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

var day0 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func TestApplyFirstEver(t *testing.T) {
	st, changed := Apply(store.StudyStreak{}, day0.Add(14*time.Hour))
	if !changed {
		t.Fatal("first study day should change the streak")
	}
	if st.CurrentStreak != 1 || st.LongestStreak != 1 || st.TotalStudyDays != 1 {
		t.Fatalf("streak = %+v, want 1/1/1", st)
	}
	if st.LastStudyDate == nil || !st.LastStudyDate.Equal(day0) {
		t.Fatalf("LastStudyDate = %v, want truncated %v", st.LastStudyDate, day0)
	}
}

func TestApplyConsecutiveDays(t *testing.T) {
	var st store.StudyStreak
	for i := 0; i < 3; i++ {
		st, _ = Apply(st, day0.AddDate(0, 0, i).Add(20*time.Hour))
	}
	if st.CurrentStreak != 3 || st.LongestStreak != 3 || st.TotalStudyDays != 3 {
		t.Fatalf("streak = %+v, want 3/3/3", st)
	}
}

func TestApplySameDayIdempotent(t *testing.T) {
	st, _ := Apply(store.StudyStreak{}, day0)
	st2, changed := Apply(st, day0.Add(23*time.Hour))
	if changed {
		t.Fatal("second session on the same day must not change the streak")
	}
	if st2.CurrentStreak != 1 || st2.TotalStudyDays != 1 {
		t.Fatalf("streak = %+v, want unchanged 1/1", st2)
	}
}

func TestApplyGapResetsCurrentOnly(t *testing.T) {
	var st store.StudyStreak
	for i := 0; i < 5; i++ {
		st, _ = Apply(st, day0.AddDate(0, 0, i))
	}
	st, changed := Apply(st, day0.AddDate(0, 0, 8)) // 3-day gap
	if !changed {
		t.Fatal("study after a gap should still count")
	}
	if st.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want reset to 1", st.CurrentStreak)
	}
	if st.LongestStreak != 5 {
		t.Fatalf("LongestStreak = %d, want 5 preserved", st.LongestStreak)
	}
	if st.TotalStudyDays != 6 {
		t.Fatalf("TotalStudyDays = %d, want 6", st.TotalStudyDays)
	}
}

func TestApplyBackdatedIgnored(t *testing.T) {
	st, _ := Apply(store.StudyStreak{}, day0)
	st2, changed := Apply(st, day0.AddDate(0, 0, -2))
	if changed {
		t.Fatal("backdated activity must not change the streak")
	}
	if st2.CurrentStreak != st.CurrentStreak || st2.TotalStudyDays != st.TotalStudyDays {
		t.Fatalf("streak mutated: %+v vs %+v", st2, st)
	}
}

func TestApplyCrossesMidnightBoundary(t *testing.T) {
	// 23:59 one day, 00:01 the next: still consecutive.
	st, _ := Apply(store.StudyStreak{}, day0.Add(23*time.Hour+59*time.Minute))
	st, changed := Apply(st, day0.AddDate(0, 0, 1).Add(time.Minute))
	if !changed || st.CurrentStreak != 2 {
		t.Fatalf("streak = %+v, want 2 across midnight", st)
	}
}

func TestApplyLocalDayBase(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)

	st, _ := Apply(store.StudyStreak{}, time.Date(2024, 3, 15, 23, 0, 0, 0, zone))
	// The store hands the recorded date back as a UTC instant.
	utcLast := st.LastStudyDate.UTC()
	st.LastStudyDate = &utcLast

	// Just after local midnight the next day extends the streak.
	st, changed := Apply(st, time.Date(2024, 3, 16, 0, 30, 0, 0, zone))
	if !changed || st.CurrentStreak != 2 {
		t.Fatalf("streak = %+v, want 2 across the local midnight", st)
	}

	// A later session on the same local day is still a no-op.
	utcLast = st.LastStudyDate.UTC()
	st.LastStudyDate = &utcLast
	st2, changed := Apply(st, time.Date(2024, 3, 16, 22, 0, 0, 0, zone))
	if changed || st2.TotalStudyDays != st.TotalStudyDays {
		t.Fatalf("same local day changed the streak: %+v", st2)
	}
}

func TestRecordPersists(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := Record(s, day0); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := Record(s, day0.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Same-day repeat is a no-op but not an error.
	if err := Record(s, day0.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Record same day: %v", err)
	}

	st, err := s.Streak()
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentStreak != 2 || st.LongestStreak != 2 || st.TotalStudyDays != 2 {
		t.Fatalf("persisted streak = %+v, want 2/2/2", st)
	}
}
