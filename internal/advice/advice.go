// Package advice maps aggregated study statistics to short advisory
// messages shown on the dashboard and analytics views.
package advice

import (
	"fmt"

	"github.com/sadopc/studyflow/internal/stats"
)

type Kind string

const (
	KindMotivation  Kind = "motivation"
	KindWellness    Kind = "wellness"
	KindUrgent      Kind = "urgent"
	KindImprovement Kind = "improvement"
	KindAchievement Kind = "achievement"
)

// Recommendation is one advisory message. Action names a suggested
// follow-up the UI may offer; it can be empty.
type Recommendation struct {
	Kind    Kind
	Message string
	Action  string
}

// Input carries the pre-aggregated figures the rules evaluate.
type Input struct {
	Today         stats.DayStats
	Week          stats.WeekStats
	OverdueTasks  int
	CurrentStreak int
}

// Recommend evaluates every rule independently, in a fixed order.
// Callers that only have room for a couple of messages take a prefix.
func Recommend(in Input) []Recommendation {
	var recs []Recommendation

	if in.Today.StudyTime < 30 {
		recs = append(recs, Recommendation{
			Kind:    KindMotivation,
			Message: "Start with just 25 minutes of focused study today!",
			Action:  "start-pomodoro",
		})
	}
	if in.Today.StudyTime > 240 {
		recs = append(recs, Recommendation{
			Kind:    KindWellness,
			Message: "Great work! Remember to take breaks and stay hydrated.",
		})
	}
	if in.OverdueTasks > 0 {
		plural := ""
		if in.OverdueTasks > 1 {
			plural = "s"
		}
		recs = append(recs, Recommendation{
			Kind:    KindUrgent,
			Message: fmt.Sprintf("You have %d overdue task%s. Tackle them first!", in.OverdueTasks, plural),
			Action:  "view-overdue",
		})
	}
	if in.Week.AvgFocusScore < 3 && in.Week.StudyTime > 0 {
		recs = append(recs, Recommendation{
			Kind:    KindImprovement,
			Message: "Try the Flowtime technique for better focus on complex tasks.",
			Action:  "try-flowtime",
		})
	}
	if in.CurrentStreak >= 7 {
		recs = append(recs, Recommendation{
			Kind:    KindAchievement,
			Message: fmt.Sprintf("Amazing! You're on a %d-day study streak!", in.CurrentStreak),
		})
	}

	return recs
}
