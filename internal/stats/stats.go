// Package stats computes rollups over sessions and tasks. Everything
// here is a pure linear scan: the data is personal-scale, so there is
// no incremental aggregation, and "now" is always passed in.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// DayStats summarizes a single calendar day.
type DayStats struct {
	StudyTime      int // minutes
	TasksCompleted int
	FocusScore     float64 // mean focus rating, 0 when no sessions
}

// WeekStats summarizes the trailing 7 calendar days including today.
type WeekStats struct {
	StudyTime      int
	TasksCompleted int
	AvgFocusScore  float64
	StudyDays      int // distinct days with at least one session
}

type SubjectStat struct {
	Subject string
	Minutes int
	Tasks   int // sessions linked to a task
}

// DayBucket is one bar of the daily chart series.
type DayBucket struct {
	Date     time.Time
	Minutes  int
	Sessions int
}

// DayStart truncates t to midnight in its location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today aggregates sessions started today and tasks completed today.
func Today(sessions []store.StudySession, tasks []store.Task, now time.Time) DayStats {
	dayStart := DayStart(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var st DayStats
	var ratingSum, count int
	for _, s := range sessions {
		if s.StartTime.Before(dayStart) || !s.StartTime.Before(dayEnd) {
			continue
		}
		st.StudyTime += s.Duration
		ratingSum += s.FocusRating
		count++
	}
	if count > 0 {
		st.FocusScore = float64(ratingSum) / float64(count)
	}
	for _, t := range tasks {
		if t.CompletedAt != nil && !t.CompletedAt.Before(dayStart) && t.CompletedAt.Before(dayEnd) {
			st.TasksCompleted++
		}
	}
	return st
}

// Week aggregates the trailing 7-day window [today-6d, today+1d).
func Week(sessions []store.StudySession, tasks []store.Task, now time.Time) WeekStats {
	weekStart := DayStart(now).AddDate(0, 0, -6)
	weekEnd := DayStart(now).AddDate(0, 0, 1)

	var st WeekStats
	var ratingSum, count int
	days := make(map[string]struct{})
	for _, s := range sessions {
		if s.StartTime.Before(weekStart) || !s.StartTime.Before(weekEnd) {
			continue
		}
		st.StudyTime += s.Duration
		ratingSum += s.FocusRating
		count++
		days[s.StartTime.In(now.Location()).Format("2006-01-02")] = struct{}{}
	}
	if count > 0 {
		st.AvgFocusScore = float64(ratingSum) / float64(count)
	}
	st.StudyDays = len(days)
	for _, t := range tasks {
		if t.CompletedAt != nil && !t.CompletedAt.Before(weekStart) && t.CompletedAt.Before(weekEnd) {
			st.TasksCompleted++
		}
	}
	return st
}

// Subjects groups all-time sessions by subject, descending by total
// study time. Ties break alphabetically so the order is stable.
func Subjects(sessions []store.StudySession) []SubjectStat {
	bySubject := make(map[string]*SubjectStat)
	for _, s := range sessions {
		st, ok := bySubject[s.Subject]
		if !ok {
			st = &SubjectStat{Subject: s.Subject}
			bySubject[s.Subject] = st
		}
		st.Minutes += s.Duration
		if s.TaskID != nil {
			st.Tasks++
		}
	}

	out := make([]SubjectStat, 0, len(bySubject))
	for _, st := range bySubject {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// DailySeries buckets sessions per calendar day for the trailing N days,
// oldest first, with zero-filled gaps.
func DailySeries(sessions []store.StudySession, now time.Time, days int) []DayBucket {
	if days <= 0 {
		return nil
	}
	first := DayStart(now).AddDate(0, 0, -(days - 1))

	buckets := make([]DayBucket, days)
	for i := range buckets {
		buckets[i].Date = first.AddDate(0, 0, i)
	}
	for _, s := range sessions {
		// Sessions come back from the store in UTC; bucket them by the
		// calendar day of now's zone. Rounding absorbs DST-shortened days.
		day := DayStart(s.StartTime.In(now.Location()))
		if day.Before(first) {
			continue
		}
		idx := int(math.Round(day.Sub(first).Hours() / 24))
		if idx >= days {
			continue
		}
		buckets[idx].Minutes += s.Duration
		buckets[idx].Sessions++
	}
	return buckets
}

// PeriodStart returns the start of the current goal period: midnight for
// daily, the most recent Sunday for weekly, the first of the month for
// monthly.
func PeriodStart(goalType store.GoalType, now time.Time) time.Time {
	switch goalType {
	case store.GoalWeekly:
		day := DayStart(now)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case store.GoalMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return DayStart(now)
	}
}

// periodEnd returns the exclusive end of the period starting at start.
func periodEnd(goalType store.GoalType, start time.Time) time.Time {
	switch goalType {
	case store.GoalWeekly:
		return start.AddDate(0, 0, 7)
	case store.GoalMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodProgress sums session minutes logged within the current period
// for the given goal type.
func PeriodProgress(sessions []store.StudySession, goalType store.GoalType, now time.Time) int {
	start := PeriodStart(goalType, now)
	end := periodEnd(goalType, start)

	total := 0
	for _, s := range sessions {
		if !s.StartTime.Before(start) && s.StartTime.Before(end) {
			total += s.Duration
		}
	}
	return total
}

// GoalActive reports whether a goal belongs to the current period. The
// stored period start and the recomputed one are compared as instants,
// so the result does not depend on the zone the store round-trips in.
func GoalActive(g store.StudyGoal, now time.Time) bool {
	return g.PeriodStart.Equal(PeriodStart(g.Type, now))
}

// GoalPercent returns goal completion as 0-100, capped at 100.
func GoalPercent(g store.StudyGoal, progressMinutes int) float64 {
	target := g.TargetHours * 60
	if target <= 0 {
		return 0
	}
	pct := float64(progressMinutes) / target * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
