package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/advice"
	"github.com/sadopc/studyflow/internal/stats"
	"github.com/sadopc/studyflow/internal/store"
)

type dashboardModel struct {
	store          *store.Store
	dailyGoalHours float64
	width          int
	height         int

	today   stats.DayStats
	streak  store.StudyStreak
	recent  []store.StudySession
	advices []advice.Recommendation
}

func newDashboardModel(s *store.Store, dailyGoalHours float64) dashboardModel {
	return dashboardModel{store: s, dailyGoalHours: dailyGoalHours}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	today   stats.DayStats
	streak  store.StudyStreak
	recent  []store.StudySession
	advices []advice.Recommendation
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		weekFrom := stats.DayStart(now).AddDate(0, 0, -6)
		sessions, _ := d.store.ListSessions(store.SessionFilter{From: &weekFrom})
		tasks, _ := d.store.ListTasks(true)
		recent, _ := d.store.ListSessions(store.SessionFilter{Limit: 5})
		overdue, _ := d.store.CountOverdueTasks(now)

		var streak store.StudyStreak
		if st, err := d.store.Streak(); err == nil && st != nil {
			streak = *st
		}

		today := stats.Today(sessions, tasks, now)
		advices := advice.Recommend(advice.Input{
			Today:         today,
			Week:          stats.Week(sessions, tasks, now),
			OverdueTasks:  overdue,
			CurrentStreak: streak.CurrentStreak,
		})
		if len(advices) > 2 {
			advices = advices[:2]
		}

		return dashboardDataMsg{
			today:   today,
			streak:  streak,
			recent:  recent,
			advices: advices,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.streak = msg.streak
		d.recent = msg.recent
		d.advices = msg.advices
		return d, nil
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	w := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTodayPanel(w),
		d.renderRecentPanel(w),
		d.renderAdvicePanel(w),
	)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")

	studied := accentStyle.Render(formatMinutes(d.today.StudyTime))
	line1 := fmt.Sprintf("  Studied: %s   Tasks done: %d", studied, d.today.TasksCompleted)
	if d.today.FocusScore > 0 {
		line1 += fmt.Sprintf("   Focus: %.1f/5", d.today.FocusScore)
	}

	goalMinutes := int(d.dailyGoalHours * 60)
	var goalLine string
	if goalMinutes > 0 {
		pct := d.today.StudyTime * 100 / goalMinutes
		if pct > 100 {
			pct = 100
		}
		bar := renderProgressBar(pct, 20)
		goalLine = fmt.Sprintf("  Daily goal: %s %s of %s", bar,
			formatMinutes(d.today.StudyTime), formatMinutes(goalMinutes))
		if pct >= 100 {
			goalLine += successStyle.Render("  ✓")
		}
	}

	streakLine := fmt.Sprintf("  Streak: %s current · %d longest · %d total days",
		highlightStyle.Render(fmt.Sprintf("%d day(s)", d.streak.CurrentStreak)),
		d.streak.LongestStreak, d.streak.TotalStudyDays)

	rows := []string{title, "", line1}
	if goalLine != "" {
		rows = append(rows, goalLine)
	}
	rows = append(rows, streakLine)

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")

	if len(d.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No sessions yet. Press 3 to start the timer."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, s := range d.recent {
		mark := successStyle.Render("✓")
		if !s.Completed {
			mark = warningStyle.Render("⏸")
		}
		rows = append(rows, fmt.Sprintf("  %s %-20s %8s  %s",
			mark, truncate(s.Subject, 20), formatMinutes(s.Duration),
			mutedStyle.Render(s.StartTime.Local().Format("Jan 02 15:04")),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderAdvicePanel(w int) string {
	if len(d.advices) == 0 {
		return ""
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Suggestions"))
	rows = append(rows, "")
	for _, rec := range d.advices {
		marker := highlightStyle.Render("•")
		if rec.Kind == advice.KindUrgent {
			marker = errorStyle.Render("!")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", marker, rec.Message))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
