package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/advice"
	"github.com/sadopc/studyflow/internal/stats"
	"github.com/sadopc/studyflow/internal/store"
)

type analyticsRange int

const (
	rangeWeek analyticsRange = iota
	rangeMonth
)

func (r analyticsRange) days() int {
	if r == rangeMonth {
		return 30
	}
	return 7
}

type analyticsModel struct {
	store  *store.Store
	width  int
	height int

	mode     analyticsRange
	series   []stats.DayBucket
	subjects []stats.SubjectStat
	week     stats.WeekStats
	advices  []advice.Recommendation

	chart barchart.Model
}

func newAnalyticsModel(s *store.Store) analyticsModel {
	return analyticsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type analyticsDataMsg struct {
	series   []stats.DayBucket
	subjects []stats.SubjectStat
	week     stats.WeekStats
	advices  []advice.Recommendation
}

func (a analyticsModel) refresh() tea.Cmd {
	days := a.mode.days()
	return func() tea.Msg {
		now := time.Now()
		from := stats.DayStart(now).AddDate(0, 0, -(days - 1))
		sessions, _ := a.store.ListSessions(store.SessionFilter{From: &from})
		tasks, _ := a.store.ListTasks(true)
		overdue, _ := a.store.CountOverdueTasks(now)
		streak, _ := a.store.Streak()

		current := 0
		if streak != nil {
			current = streak.CurrentStreak
		}
		week := stats.Week(sessions, tasks, now)

		return analyticsDataMsg{
			series:   stats.DailySeries(sessions, now, days),
			subjects: stats.Subjects(sessions),
			week:     week,
			advices: advice.Recommend(advice.Input{
				Today:         stats.Today(sessions, tasks, now),
				Week:          week,
				OverdueTasks:  overdue,
				CurrentStreak: current,
			}),
		}
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		a.series = msg.series
		a.subjects = msg.subjects
		a.week = msg.week
		a.advices = msg.advices
		a.buildChart()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if a.mode == rangeWeek {
				a.mode = rangeMonth
			} else {
				a.mode = rangeWeek
			}
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := a.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if a.height > 30 {
		chartHeight = 14
	}

	a.chart = barchart.New(chartWidth, chartHeight)

	barStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	emptyStyle := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, bucket := range a.series {
		label := bucket.Date.Format("02")
		if a.mode == rangeWeek {
			label = bucket.Date.Format("Mon")
		}
		style := barStyle
		if bucket.Minutes == 0 {
			style = emptyStyle
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "study", Value: float64(bucket.Minutes) / 60.0, Style: style},
			},
		})
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) view() string {
	w := a.width - 4

	weekTab := inactiveTabStyle.Render("7 days")
	monthTab := inactiveTabStyle.Render("30 days")
	if a.mode == rangeWeek {
		weekTab = activeTabStyle.Render("7 days")
	} else {
		monthTab = activeTabStyle.Render("30 days")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, weekTab, monthTab),
	)

	summary := mutedStyle.Render(fmt.Sprintf(
		"  This week: %s over %d day(s) · %d task(s) done · avg focus %.1f",
		formatMinutes(a.week.StudyTime), a.week.StudyDays, a.week.TasksCompleted, a.week.AvgFocusScore,
	))

	nav := mutedStyle.Render("  ←/→: switch range")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.chart.View(), "", summary, "",
			a.renderSubjects(w), "", a.renderAdvice(), "", nav,
		),
	)
}

func (a analyticsModel) renderSubjects(w int) string {
	if len(a.subjects) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %10s %8s", "Subject", "Time", "Tasks")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))

	total := 0
	for _, s := range a.subjects {
		total += s.Minutes
	}
	for _, s := range a.subjects {
		pct := 0
		if total > 0 {
			pct = s.Minutes * 100 / total
		}
		rows = append(rows, fmt.Sprintf("  %-24s %10s %7d%%",
			truncate(s.Subject, 24), formatMinutes(s.Minutes), pct))
	}

	return strings.Join(rows, "\n")
}

func (a analyticsModel) renderAdvice() string {
	if len(a.advices) == 0 {
		return mutedStyle.Render("  You're all caught up. Keep it going!")
	}

	var rows []string
	rows = append(rows, accentStyle.Render("  Recommendations"))
	for _, rec := range a.advices {
		marker := highlightStyle.Render("•")
		if rec.Kind == advice.KindUrgent {
			marker = errorStyle.Render("!")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", marker, rec.Message))
	}
	return strings.Join(rows, "\n")
}
