package store

import "time"

// Priority orders tasks for display and sort tie-breaks.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the ordinal position of the priority, most urgent first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

type TaskType string

const (
	TypeAssignment TaskType = "assignment"
	TypeReading    TaskType = "reading"
	TypePractice   TaskType = "practice"
	TypeReview     TaskType = "review"
	TypeProject    TaskType = "project"
	TypeExamPrep   TaskType = "exam-prep"
)

// Technique is a named timer discipline.
type Technique string

const (
	TechniquePomodoro  Technique = "pomodoro"
	TechniqueTimeblock Technique = "timeblock"
	TechniqueFlowtime  Technique = "flowtime"
	TechniqueSprint    Technique = "sprint"
)

type Task struct {
	ID               string
	Title            string
	Subject          string
	Priority         Priority
	Type             TaskType
	Difficulty       int // 1-5
	EstimatedMinutes int
	ActualMinutes    int
	Progress         int // 0-100; 100 iff Completed
	Completed        bool
	Tags             string
	DueDate          *time.Time
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// StudySession is one completed or manually stopped timed interval.
// Sessions are append-only and never edited.
type StudySession struct {
	ID           string
	TaskID       *string // weak reference; may point to a deleted task
	Subject      string
	Technique    Technique
	Duration     int // minutes
	StartTime    time.Time
	EndTime      time.Time
	FocusRating  int // 1-5
	Completed    bool
	Breaks       int
	Distractions int
}

type QuickNote struct {
	ID        string
	Content   string
	Subject   string
	Tags      string
	Important bool
	CreatedAt time.Time
}

type GoalType string

const (
	GoalDaily   GoalType = "daily"
	GoalWeekly  GoalType = "weekly"
	GoalMonthly GoalType = "monthly"
)

// StudyGoal targets a number of study hours within a period. The period
// start acts as an equality key: goals whose period start no longer
// matches the current period are inactive, not deleted.
type StudyGoal struct {
	ID          string
	Type        GoalType
	TargetHours float64
	PeriodStart time.Time
	CreatedAt   time.Time
}

// StudyStreak is the singleton aggregate of consecutive study days.
type StudyStreak struct {
	CurrentStreak  int
	LongestStreak  int
	LastStudyDate  *time.Time // truncated to day granularity
	TotalStudyDays int
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter study sessions in queries.
type SessionFilter struct {
	From    *time.Time
	To      *time.Time
	Subject string
	Limit   int
}
