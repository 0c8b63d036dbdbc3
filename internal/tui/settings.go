package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focus        *string
	shortBreak   *string
	longBreak    *string
	count        *string
	autoContinue *bool
	timeblock    *string
	flowtime     *string
	sprint       *string
	dailyGoal    *string
}

func newSettingsModel(s *store.Store) settingsModel {
	f, sb, lb, c := "", "", "", ""
	tb, ft, sp, dg := "", "", "", ""
	ac := false
	return settingsModel{
		store:        s,
		focus:        &f,
		shortBreak:   &sb,
		longBreak:    &lb,
		count:        &c,
		autoContinue: &ac,
		timeblock:    &tb,
		flowtime:     &ft,
		sprint:       &sp,
		dailyGoal:    &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

// settingsSavedMsg signals the root model to rebuild the timer config.
type settingsSavedMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.focus = secsToMin(s.getVal("pomodoro_focus", "1500"))
	*s.shortBreak = secsToMin(s.getVal("pomodoro_break", "300"))
	*s.longBreak = secsToMin(s.getVal("pomodoro_long_break", "900"))
	*s.count = s.getVal("pomodoro_count", "4")
	*s.autoContinue = s.getVal("auto_continue", "false") == "true"
	*s.timeblock = secsToMin(s.getVal("timeblock_duration", "3600"))
	*s.flowtime = secsToMin(s.getVal("flowtime_duration", "5400"))
	*s.sprint = secsToMin(s.getVal("sprint_duration", "900"))
	*s.dailyGoal = s.getVal("daily_goal_hours", "2")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus length (min)").Value(s.focus),
			huh.NewInput().Title("Short break (min)").Value(s.shortBreak),
			huh.NewInput().Title("Long break (min)").Value(s.longBreak),
			huh.NewInput().Title("Focus sessions before long break").Value(s.count),
			huh.NewConfirm().Title("Auto-continue next phase").Value(s.autoContinue),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Time block (min)").Value(s.timeblock),
			huh.NewInput().Title("Flow time (min)").Value(s.flowtime),
			huh.NewInput().Title("Study sprint (min)").Value(s.sprint),
			huh.NewInput().Title("Daily goal (hours)").Value(s.dailyGoal),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsSavedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting("pomodoro_focus", minToSecs(*s.focus))
	s.store.SetSetting("pomodoro_break", minToSecs(*s.shortBreak))
	s.store.SetSetting("pomodoro_long_break", minToSecs(*s.longBreak))
	s.store.SetSetting("pomodoro_count", *s.count)
	s.store.SetSetting("auto_continue", strconv.FormatBool(*s.autoContinue))
	s.store.SetSetting("timeblock_duration", minToSecs(*s.timeblock))
	s.store.SetSetting("flowtime_duration", minToSecs(*s.flowtime))
	s.store.SetSetting("sprint_duration", minToSecs(*s.sprint))
	s.store.SetSetting("daily_goal_hours", *s.dailyGoal)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "pomodoro_focus", "pomodoro_break", "pomodoro_long_break",
		"timeblock_duration", "flowtime_duration", "sprint_duration":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "daily_goal_hours":
		return v + " hours"
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
