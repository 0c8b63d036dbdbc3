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

	"github.com/sadopc/studyflow/internal/store"
)

var taskPriorities = []store.Priority{store.PriorityUrgent, store.PriorityHigh, store.PriorityMedium, store.PriorityLow}
var taskTypes = []store.TaskType{store.TypeAssignment, store.TypeReading, store.TypePractice, store.TypeReview, store.TypeProject, store.TypeExamPrep}

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	tasks         []store.Task
	cursor        int
	showCompleted bool

	formActive bool
	form       *huh.Form
	editingID  string // empty = creating

	// Form field pointers (survive value copies)
	formTitle     *string
	formSubject   *string
	formPriority  *string
	formType      *string
	formDiff      *string
	formEstimate  *string
	formTags      *string
	formDue       *string
}

func newTasksModel(s *store.Store) tasksModel {
	title, subject, prio, typ := "", "", "", ""
	diff, est, tags, due := "", "", "", ""
	return tasksModel{
		store:        s,
		formTitle:    &title,
		formSubject:  &subject,
		formPriority: &prio,
		formType:     &typ,
		formDiff:     &diff,
		formEstimate: &est,
		formTags:     &tags,
		formDue:      &due,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := t.store.ListTasks(t.showCompleted)
		return tasksDataMsg{tasks: tasks}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t tasksModel) updateKeys(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(t.tasks)-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.New):
		return t.showForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(t.tasks) > 0 {
			task := t.tasks[t.cursor]
			return t.showForm(&task)
		}
	case key.Matches(msg, keys.Toggle):
		if len(t.tasks) > 0 {
			if err := t.store.ToggleTask(t.tasks[t.cursor].ID); err != nil {
				return t, errorCmd(err)
			}
			return t, t.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if len(t.tasks) > 0 {
			if err := t.store.DeleteTask(t.tasks[t.cursor].ID); err != nil {
				return t, errorCmd(err)
			}
			return t, tea.Batch(t.refresh(), statusCmd("Task deleted"))
		}
	case key.Matches(msg, keys.Left):
		return t.adjustProgress(-10)
	case key.Matches(msg, keys.Right):
		return t.adjustProgress(10)
	case key.Matches(msg, keys.Enter):
		t.showCompleted = !t.showCompleted
		return t, t.refresh()
	}
	return t, nil
}

func (t tasksModel) adjustProgress(delta int) (tasksModel, tea.Cmd) {
	if len(t.tasks) == 0 {
		return t, nil
	}
	task := t.tasks[t.cursor]
	if err := t.store.SetTaskProgress(task.ID, task.Progress+delta); err != nil {
		return t, errorCmd(err)
	}
	return t, t.refresh()
}

func (t tasksModel) showForm(task *store.Task) (tasksModel, tea.Cmd) {
	if task != nil {
		t.editingID = task.ID
		*t.formTitle = task.Title
		*t.formSubject = task.Subject
		*t.formPriority = string(task.Priority)
		*t.formType = string(task.Type)
		*t.formDiff = strconv.Itoa(task.Difficulty)
		*t.formEstimate = strconv.Itoa(task.EstimatedMinutes)
		*t.formTags = task.Tags
		*t.formDue = ""
		if task.DueDate != nil {
			*t.formDue = task.DueDate.Local().Format("2006-01-02")
		}
	} else {
		t.editingID = ""
		*t.formTitle = ""
		*t.formSubject = ""
		*t.formPriority = string(store.PriorityMedium)
		*t.formType = string(store.TypeAssignment)
		*t.formDiff = "3"
		*t.formEstimate = "30"
		*t.formTags = ""
		*t.formDue = ""
	}

	prioOptions := make([]huh.Option[string], len(taskPriorities))
	for i, p := range taskPriorities {
		prioOptions[i] = huh.NewOption(string(p), string(p))
	}
	typeOptions := make([]huh.Option[string], len(taskTypes))
	for i, tt := range taskTypes {
		typeOptions[i] = huh.NewOption(string(tt), string(tt))
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(t.formTitle),
			huh.NewInput().Title("Subject").Value(t.formSubject),
			huh.NewSelect[string]().Title("Priority").Options(prioOptions...).Value(t.formPriority),
			huh.NewSelect[string]().Title("Type").Options(typeOptions...).Value(t.formType),
		),
		huh.NewGroup(
			huh.NewInput().Title("Difficulty (1-5)").Value(t.formDiff),
			huh.NewInput().Title("Estimated minutes").Value(t.formEstimate),
			huh.NewInput().Title("Due date (YYYY-MM-DD, blank for none)").Value(t.formDue),
			huh.NewInput().Title("Tags (comma-separated)").Value(t.formTags),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		if *t.formTitle == "" {
			return t, statusCmd("Title is required")
		}

		task := store.Task{
			Title:    *t.formTitle,
			Subject:  *t.formSubject,
			Priority: store.Priority(*t.formPriority),
			Type:     store.TaskType(*t.formType),
			Tags:     *t.formTags,
		}
		if n, err := strconv.Atoi(*t.formDiff); err == nil && n >= 1 && n <= 5 {
			task.Difficulty = n
		} else {
			task.Difficulty = 3
		}
		if n, err := strconv.Atoi(*t.formEstimate); err == nil && n > 0 {
			task.EstimatedMinutes = n
		}
		if *t.formDue != "" {
			if d, err := time.ParseInLocation("2006-01-02", *t.formDue, time.Local); err == nil {
				due := d.Add(24*time.Hour - time.Second) // end of day
				task.DueDate = &due
			}
		}

		var err error
		if t.editingID != "" {
			err = t.store.UpdateTask(t.editingID, task)
		} else {
			_, err = t.store.CreateTask(task)
		}
		if err != nil {
			return t, errorCmd(err)
		}
		return t, tea.Batch(t.refresh(), statusCmd("Task saved"))
	}

	return t, cmd
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	label := "Tasks"
	if t.showCompleted {
		label = "Tasks (incl. completed)"
	}
	title := titleStyle.Render(label)

	if len(t.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %-12s %-8s %-10s %s", "", "Title", "Subject", "Prio", "Due", "Progress")))

	now := time.Now()
	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		check := "○"
		if task.Completed {
			check = successStyle.Render("✓")
		}

		prio := lipgloss.NewStyle().Foreground(priorityColors[string(task.Priority)]).Render(fmt.Sprintf("%-8s", task.Priority))

		due := "-"
		dueStyle := mutedStyle
		if task.DueDate != nil {
			due = task.DueDate.Local().Format("Jan 02")
			if !task.Completed && task.DueDate.Before(now) {
				dueStyle = errorStyle
			}
		}

		row := style.Render(fmt.Sprintf("%s%s %-28s", cursor, check, truncate(task.Title, 28))) +
			fmt.Sprintf(" %-12s ", truncate(task.Subject, 12)) +
			prio + " " +
			dueStyle.Render(fmt.Sprintf("%-10s", due)) +
			renderProgressBar(task.Progress, 10)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: complete  d: delete  ←/→: progress  enter: show completed"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return s[:n-1] + "…"
}

func renderProgressBar(pct, width int) string {
	filled := pct * width / 100
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}
