package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/stats"
	"github.com/sadopc/studyflow/internal/store"
)

type goalsModel struct {
	store  *store.Store
	width  int
	height int

	goals    []store.StudyGoal
	sessions []store.StudySession
	cursor   int

	formActive bool
	form       *huh.Form

	formType   *string
	formTarget *string
}

func newGoalsModel(s *store.Store) goalsModel {
	goalType, target := "", ""
	return goalsModel{
		store:      s,
		formType:   &goalType,
		formTarget: &target,
	}
}

func (g *goalsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type goalsDataMsg struct {
	goals    []store.StudyGoal
	sessions []store.StudySession
}

func (g goalsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		goals, _ := g.store.ListGoals()
		// The monthly period start padded by a week covers every
		// period type, including weeks straddling a month boundary.
		from := stats.PeriodStart(store.GoalMonthly, time.Now()).AddDate(0, 0, -7)
		sessions, _ := g.store.ListSessions(store.SessionFilter{From: &from})
		return goalsDataMsg{goals: goals, sessions: sessions}
	}
}

func (g goalsModel) update(msg tea.Msg) (goalsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case goalsDataMsg:
		g.goals = msg.goals
		g.sessions = msg.sessions
		if g.cursor >= len(g.goals) {
			g.cursor = max(0, len(g.goals)-1)
		}
		return g, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if g.cursor > 0 {
				g.cursor--
			}
		case key.Matches(msg, keys.Down):
			if g.cursor < len(g.goals)-1 {
				g.cursor++
			}
		case key.Matches(msg, keys.New):
			return g.showForm()
		case key.Matches(msg, keys.Delete):
			if len(g.goals) > 0 {
				if err := g.store.DeleteGoal(g.goals[g.cursor].ID); err != nil {
					return g, errorCmd(err)
				}
				return g, tea.Batch(g.refresh(), statusCmd("Goal deleted"))
			}
		}
	}
	return g, nil
}

func (g goalsModel) showForm() (goalsModel, tea.Cmd) {
	*g.formType = string(store.GoalDaily)
	*g.formTarget = "2"

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Period").
				Options(
					huh.NewOption("Daily", string(store.GoalDaily)),
					huh.NewOption("Weekly", string(store.GoalWeekly)),
					huh.NewOption("Monthly", string(store.GoalMonthly)),
				).Value(g.formType),
			huh.NewInput().Title("Target hours").Value(g.formTarget),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g goalsModel) updateForm(msg tea.Msg) (goalsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		hours, err := strconv.ParseFloat(*g.formTarget, 64)
		if err != nil || hours <= 0 {
			return g, statusCmd("Target hours must be a positive number")
		}
		goalType := store.GoalType(*g.formType)
		periodStart := stats.PeriodStart(goalType, time.Now())
		if _, err := g.store.AddGoal(goalType, hours, periodStart); err != nil {
			return g, errorCmd(err)
		}
		return g, tea.Batch(g.refresh(), statusCmd("Goal created"))
	}

	return g, cmd
}

func (g goalsModel) view() string {
	w := g.width - 4

	if g.formActive && g.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Goal"), "", g.form.View()),
		)
	}

	title := titleStyle.Render("Study Goals")
	if len(g.goals) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No goals yet. Press n to set one."),
		))
	}

	now := time.Now()
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, goal := range g.goals {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		label := fmt.Sprintf("%-8s %4.1fh", goal.Type, goal.TargetHours)
		if !stats.GoalActive(goal, now) {
			rows = append(rows, style.Render(cursor+label)+mutedStyle.Render("  (previous period)"))
			continue
		}

		progress := stats.PeriodProgress(g.sessions, goal.Type, now)
		pct := stats.GoalPercent(goal, progress)
		bar := renderProgressBar(int(pct), 20)
		done := ""
		if pct >= 100 {
			done = successStyle.Render("  ✓ reached")
		}
		rows = append(rows, style.Render(cursor+label)+"  "+bar+
			mutedStyle.Render("  "+formatMinutes(progress))+done)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
