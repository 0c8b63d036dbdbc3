package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/store"
	"github.com/sadopc/studyflow/internal/streak"
	"github.com/sadopc/studyflow/internal/timer"
)

type timerViewModel struct {
	store   *store.Store
	machine *timer.Machine

	// Per-technique focus durations from settings.
	durations map[store.Technique]time.Duration

	width  int
	height int

	tasks           []store.Task
	techniqueCursor int

	formActive  bool
	form        *huh.Form
	formSubject *string
	formTaskID  *string
}

func newTimerViewModel(s *store.Store, m *timer.Machine, durations map[store.Technique]time.Duration) timerViewModel {
	subject, taskID := "", ""
	return timerViewModel{
		store:       s,
		machine:     m,
		durations:   durations,
		formSubject: &subject,
		formTaskID:  &taskID,
	}
}

func (t *timerViewModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t *timerViewModel) setDurations(d map[store.Technique]time.Duration) {
	t.durations = d
}

type timerTasksMsg struct {
	tasks []store.Task
}

func (t timerViewModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := t.store.ListTasks(false)
		return timerTasksMsg{tasks: tasks}
	}
}

func (t timerViewModel) update(msg tea.Msg) (timerViewModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case timerTasksMsg:
		t.tasks = msg.tasks
		return t, nil

	case tickMsg:
		if c := t.machine.Tick(); c != nil {
			return t, t.handleCompletion(c)
		}
		return t, nil

	case tea.KeyMsg:
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t timerViewModel) updateKeys(msg tea.KeyMsg) (timerViewModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		if t.machine.State() != timer.StateIdle {
			return t, nil
		}
		// An idle machine mid-cycle (after a phase boundary without
		// auto-continue) resumes with the subject it already has.
		if t.machine.Phase() != timer.PhaseFocus || t.machine.CompletedFocus() > 0 {
			if err := t.machine.Start(t.machine.Subject(), *t.formTaskID); err != nil {
				return t, errorCmd(err)
			}
			return t, statusCmd(t.machine.Phase().String() + " started")
		}
		return t.showStartForm()

	case key.Matches(msg, keys.Pause):
		switch t.machine.State() {
		case timer.StateRunning:
			t.machine.Pause()
			return t, statusCmd("Timer paused")
		case timer.StatePaused:
			t.machine.Resume()
			return t, statusCmd("Timer resumed")
		}

	case key.Matches(msg, keys.Stop):
		sess := t.machine.Stop()
		if sess == nil {
			return t, statusCmd("Timer stopped")
		}
		return t, t.logSession(sess)

	case key.Matches(msg, keys.Skip):
		t.machine.Skip()
		return t, nil

	case key.Matches(msg, keys.Distraction):
		t.machine.AddDistraction()
		return t, nil

	case key.Matches(msg, keys.Left):
		if t.machine.State() == timer.StateIdle {
			t.moveTechnique(-1)
		} else {
			t.machine.SetFocusRating(t.machine.FocusRating() - 1)
		}

	case key.Matches(msg, keys.Right):
		if t.machine.State() == timer.StateIdle {
			t.moveTechnique(1)
		} else {
			t.machine.SetFocusRating(t.machine.FocusRating() + 1)
		}

	case key.Matches(msg, keys.Up):
		if t.machine.State() == timer.StateIdle {
			t.moveTechnique(-1)
		}

	case key.Matches(msg, keys.Down):
		if t.machine.State() == timer.StateIdle {
			t.moveTechnique(1)
		}
	}
	return t, nil
}

func (t *timerViewModel) moveTechnique(delta int) {
	next := t.techniqueCursor + delta
	if next < 0 || next >= len(timer.TechniqueOrder) {
		return
	}
	t.techniqueCursor = next
	tech := timer.TechniqueOrder[next]
	t.machine.SetTechnique(tech)
	if d, ok := t.durations[tech]; ok {
		t.machine.SetDuration(d)
	}
}

func (t timerViewModel) showStartForm() (timerViewModel, tea.Cmd) {
	*t.formSubject = ""
	*t.formTaskID = ""

	taskOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, task := range t.tasks {
		label := task.Title
		if task.Subject != "" {
			label += "  [" + task.Subject + "]"
		}
		taskOptions = append(taskOptions, huh.NewOption(label, task.ID))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subject").Value(t.formSubject),
			huh.NewSelect[string]().Title("Link to task").Options(taskOptions...).Value(t.formTaskID),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t timerViewModel) updateForm(msg tea.Msg) (timerViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		// A linked task fills in a blank subject.
		if *t.formSubject == "" && *t.formTaskID != "" {
			for _, task := range t.tasks {
				if task.ID == *t.formTaskID && task.Subject != "" {
					*t.formSubject = task.Subject
				}
			}
		}
		if err := t.machine.Start(*t.formSubject, *t.formTaskID); err != nil {
			return t, errorCmd(err)
		}
		return t, statusCmd("Focus session started")
	}

	return t, cmd
}

// handleCompletion persists the session on a phase boundary and surfaces
// the machine's notification, with a terminal bell.
func (t timerViewModel) handleCompletion(c *timer.Completion) tea.Cmd {
	cmds := []tea.Cmd{statusCmd(c.Event.Message + "\a")}
	if c.Session != nil {
		cmds = append(cmds, t.logSession(c.Session))
	}
	return tea.Batch(cmds...)
}

func (t timerViewModel) logSession(sess *store.StudySession) tea.Cmd {
	return func() tea.Msg {
		saved, err := t.store.AddSession(*sess)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error saving session: %v", err), isError: true}
		}
		if saved.TaskID != nil {
			if err := t.store.AddTaskActualMinutes(*saved.TaskID, saved.Duration); err != nil {
				return statusMsg{text: fmt.Sprintf("Error updating task time: %v", err), isError: true}
			}
		}
		// The saved session carries UTC instants; the streak counts local
		// calendar days.
		if err := streak.Record(t.store, saved.EndTime.Local()); err != nil {
			return statusMsg{text: fmt.Sprintf("Error updating streak: %v", err), isError: true}
		}
		return sessionLoggedMsg{session: saved}
	}
}

func (t timerViewModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("Start Session")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	if t.machine.State() == timer.StateIdle && t.machine.Phase() == timer.PhaseFocus && t.machine.CompletedFocus() == 0 {
		return t.renderIdle(w)
	}
	return t.renderActive(w)
}

func (t timerViewModel) renderIdle(w int) string {
	title := titleStyle.Render("Study Timer")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, tech := range timer.TechniqueOrder {
		info := timer.Techniques[tech]
		cursor := "  "
		style := normalItemStyle
		if i == t.techniqueCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		d := info.Default
		if v, ok := t.durations[tech]; ok {
			d = v
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-14s", cursor, info.Name))+
			mutedStyle.Render(fmt.Sprintf(" %-28s %s", info.Description, formatCountdown(d))))
	}

	rows = append(rows, "")
	rows = append(rows, countdownStyle.Width(w-6).Render(formatCountdown(t.machine.Remaining())))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ↑/↓: technique  s: start"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timerViewModel) renderActive(w int) string {
	var timeDisplay, phaseLabel string

	remaining := formatCountdown(t.machine.Remaining())
	switch {
	case t.machine.State() == timer.StatePaused:
		timeDisplay = warningStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(remaining)
		phaseLabel = warningStyle.Bold(true).Render("PAUSED")
	case t.machine.Phase() == timer.PhaseFocus:
		timeDisplay = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(remaining)
		phaseLabel = accentStyle.Bold(true).Render(t.machine.Phase().String())
	default:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(remaining)
		phaseLabel = successStyle.Bold(true).Render(t.machine.Phase().String())
	}

	subjectLine := highlightStyle.Render(t.machine.Subject()) +
		mutedStyle.Render("  ("+timer.Techniques[t.machine.Technique()].Name+")")

	var cycle string
	if t.machine.Technique() == store.TechniquePomodoro {
		cycle = t.renderCycle()
	}

	rating := mutedStyle.Render(fmt.Sprintf("focus %s  distractions %d",
		strings.Repeat("★", t.machine.FocusRating())+strings.Repeat("☆", 5-t.machine.FocusRating()),
		t.machine.Distractions()))

	controls := mutedStyle.Render("space: pause  x: stop  k: skip  !: distraction  ←/→: rating")
	if t.machine.State() == timer.StateIdle {
		controls = mutedStyle.Render("s: continue  x: stop")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		phaseLabel,
		subjectLine,
		"",
		cycle,
		rating,
		"",
		controls,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (t timerViewModel) renderCycle() string {
	target := t.machine.Config().SessionsUntilLongBreak
	done := t.machine.CompletedFocus() % target
	if t.machine.CompletedFocus() > 0 && done == 0 && t.machine.Phase() == timer.PhaseLongBreak {
		done = target
	}

	var parts []string
	for i := 0; i < target; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && t.machine.Phase() == timer.PhaseFocus:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  %d/%d", done, target))
}
