package stats

import (
	"testing"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func session(start time.Time, minutes, rating int) store.StudySession {
	return store.StudySession{
		Subject:     "Math",
		Technique:   store.TechniquePomodoro,
		Duration:    minutes,
		StartTime:   start,
		EndTime:     start.Add(time.Duration(minutes) * time.Minute),
		FocusRating: rating,
		Completed:   true,
	}
}

func TestTodaySumsDurations(t *testing.T) {
	sessions := []store.StudySession{
		session(testNow.Add(-2*time.Hour), 25, 4),
		session(testNow.Add(-1*time.Hour), 15, 2),
		session(testNow.AddDate(0, 0, -1), 60, 5), // yesterday, excluded
	}

	st := Today(sessions, nil, testNow)
	if st.StudyTime != 40 {
		t.Fatalf("StudyTime = %d, want 40", st.StudyTime)
	}
	if st.FocusScore != 3.0 {
		t.Fatalf("FocusScore = %v, want 3.0", st.FocusScore)
	}
}

func TestTodayNoSessions(t *testing.T) {
	st := Today(nil, nil, testNow)
	if st.StudyTime != 0 || st.FocusScore != 0 {
		t.Fatalf("empty day stats = %+v, want zeros", st)
	}
}

func TestTodayCountsCompletedTasks(t *testing.T) {
	earlier := testNow.Add(-3 * time.Hour)
	yesterday := testNow.AddDate(0, 0, -1)
	tasks := []store.Task{
		{Title: "done today", Completed: true, CompletedAt: &earlier},
		{Title: "done yesterday", Completed: true, CompletedAt: &yesterday},
		{Title: "open"},
	}

	st := Today(nil, tasks, testNow)
	if st.TasksCompleted != 1 {
		t.Fatalf("TasksCompleted = %d, want 1", st.TasksCompleted)
	}
}

func TestWeekWindow(t *testing.T) {
	sessions := []store.StudySession{
		session(testNow, 30, 4),
		session(testNow.AddDate(0, 0, -6), 20, 2), // oldest day still inside
		session(testNow.AddDate(0, 0, -7), 90, 5), // outside
	}

	st := Week(sessions, nil, testNow)
	if st.StudyTime != 50 {
		t.Fatalf("StudyTime = %d, want 50", st.StudyTime)
	}
	if st.AvgFocusScore != 3.0 {
		t.Fatalf("AvgFocusScore = %v, want 3.0", st.AvgFocusScore)
	}
	if st.StudyDays != 2 {
		t.Fatalf("StudyDays = %d, want 2", st.StudyDays)
	}
}

func TestSubjectsOrderedByMinutes(t *testing.T) {
	taskID := "t1"
	sessions := []store.StudySession{
		{Subject: "Math", Duration: 30, StartTime: testNow},
		{Subject: "Physics", Duration: 90, StartTime: testNow, TaskID: &taskID},
		{Subject: "Math", Duration: 30, StartTime: testNow},
	}

	subjects := Subjects(sessions)
	if len(subjects) != 2 {
		t.Fatalf("got %d subjects, want 2", len(subjects))
	}
	if subjects[0].Subject != "Physics" || subjects[0].Minutes != 90 {
		t.Fatalf("first subject = %+v, want Physics/90", subjects[0])
	}
	if subjects[0].Tasks != 1 {
		t.Fatalf("Physics task sessions = %d, want 1", subjects[0].Tasks)
	}
	if subjects[1].Subject != "Math" || subjects[1].Minutes != 60 {
		t.Fatalf("second subject = %+v, want Math/60", subjects[1])
	}
}

func TestDailySeriesZeroFills(t *testing.T) {
	sessions := []store.StudySession{
		session(testNow, 25, 4),
		session(testNow.AddDate(0, 0, -3), 50, 3),
		session(testNow.AddDate(0, 0, -3).Add(time.Hour), 10, 3),
		session(testNow.AddDate(0, 0, -10), 99, 1), // outside the window
	}

	series := DailySeries(sessions, testNow, 7)
	if len(series) != 7 {
		t.Fatalf("len(series) = %d, want 7", len(series))
	}
	if !series[0].Date.Before(series[6].Date) {
		t.Fatal("series not oldest first")
	}
	if series[6].Minutes != 25 || series[6].Sessions != 1 {
		t.Fatalf("today bucket = %+v, want 25 min / 1 session", series[6])
	}
	if series[3].Minutes != 60 || series[3].Sessions != 2 {
		t.Fatalf("day -3 bucket = %+v, want 60 min / 2 sessions", series[3])
	}
	for _, i := range []int{0, 1, 2, 4, 5} {
		if series[i].Minutes != 0 {
			t.Fatalf("bucket %d = %+v, want zero-filled", i, series[i])
		}
	}
}

func TestPeriodStart(t *testing.T) {
	// 2024-03-15 is a Friday.
	tests := []struct {
		goalType store.GoalType
		want     time.Time
	}{
		{store.GoalDaily, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{store.GoalWeekly, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}, // Sunday
		{store.GoalMonthly, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := PeriodStart(tt.goalType, testNow); !got.Equal(tt.want) {
			t.Errorf("PeriodStart(%s) = %v, want %v", tt.goalType, got, tt.want)
		}
	}
}

func TestPeriodProgress(t *testing.T) {
	sessions := []store.StudySession{
		session(testNow, 30, 4),
		session(testNow.AddDate(0, 0, -2), 45, 4), // Wednesday, same week
		session(testNow.AddDate(0, 0, -6), 60, 4), // previous week (before Sunday)
	}

	if got := PeriodProgress(sessions, store.GoalDaily, testNow); got != 30 {
		t.Fatalf("daily progress = %d, want 30", got)
	}
	if got := PeriodProgress(sessions, store.GoalWeekly, testNow); got != 75 {
		t.Fatalf("weekly progress = %d, want 75", got)
	}
	if got := PeriodProgress(sessions, store.GoalMonthly, testNow); got != 135 {
		t.Fatalf("monthly progress = %d, want 135", got)
	}
}

func TestGoalPercentCaps(t *testing.T) {
	g := store.StudyGoal{Type: store.GoalDaily, TargetHours: 2}
	if got := GoalPercent(g, 60); got != 50 {
		t.Fatalf("GoalPercent(60) = %v, want 50", got)
	}
	if got := GoalPercent(g, 500); got != 100 {
		t.Fatalf("GoalPercent(500) = %v, want 100 (capped)", got)
	}
	if got := GoalPercent(store.StudyGoal{}, 60); got != 0 {
		t.Fatalf("zero-target percent = %v, want 0", got)
	}
}

func TestGoalActiveAcrossZones(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	localNow := time.Date(2024, 3, 15, 12, 0, 0, 0, zone)

	// Goals persist their period start as a UTC instant; a goal created
	// moments ago must still count as current.
	g := store.StudyGoal{
		Type:        store.GoalDaily,
		PeriodStart: PeriodStart(store.GoalDaily, localNow).UTC(),
	}
	if !GoalActive(g, localNow) {
		t.Fatal("goal created in the current period reported inactive")
	}

	stale := store.StudyGoal{
		Type:        store.GoalDaily,
		PeriodStart: PeriodStart(store.GoalDaily, localNow.AddDate(0, 0, -1)).UTC(),
	}
	if GoalActive(stale, localNow) {
		t.Fatal("previous-day goal reported active")
	}
}

func TestDailySeriesLocalDayBuckets(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	localNow := time.Date(2024, 3, 15, 12, 0, 0, 0, zone)

	// A session just after local midnight lands before midnight UTC; it
	// still belongs to today's bar.
	early := session(time.Date(2024, 3, 15, 0, 30, 0, 0, zone).UTC(), 25, 4)
	// A session exactly one day before the window must stay out of it.
	outside := session(DayStart(localNow).AddDate(0, 0, -7).UTC(), 99, 1)

	series := DailySeries([]store.StudySession{early, outside}, localNow, 7)
	if series[6].Minutes != 25 || series[6].Sessions != 1 {
		t.Fatalf("today bucket = %+v, want 25 min / 1 session", series[6])
	}
	if series[0].Minutes != 0 || series[0].Sessions != 0 {
		t.Fatalf("oldest bucket = %+v, want empty", series[0])
	}
}

func TestWeekStudyDaysLocalZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	localNow := time.Date(2024, 3, 15, 23, 30, 0, 0, zone)

	// Both on March 15 locally, but on different UTC dates.
	sessions := []store.StudySession{
		session(time.Date(2024, 3, 15, 0, 30, 0, 0, zone).UTC(), 20, 3),
		session(time.Date(2024, 3, 15, 22, 0, 0, 0, zone).UTC(), 40, 3),
	}

	st := Week(sessions, nil, localNow)
	if st.StudyDays != 1 {
		t.Fatalf("StudyDays = %d, want 1 (single local day)", st.StudyDays)
	}
	if st.StudyTime != 60 {
		t.Fatalf("StudyTime = %d, want 60", st.StudyTime)
	}
}

func TestGoalActive(t *testing.T) {
	active := store.StudyGoal{Type: store.GoalWeekly, PeriodStart: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	stale := store.StudyGoal{Type: store.GoalWeekly, PeriodStart: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)}
	if !GoalActive(active, testNow) {
		t.Fatal("current-period goal reported inactive")
	}
	if GoalActive(stale, testNow) {
		t.Fatal("stale goal reported active")
	}
}
