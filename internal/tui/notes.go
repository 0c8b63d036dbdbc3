package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/studyflow/internal/store"
)

type notesModel struct {
	store  *store.Store
	width  int
	height int

	notes  []store.QuickNote
	cursor int

	formActive bool
	form       *huh.Form

	formContent   *string
	formSubject   *string
	formTags      *string
	formImportant *bool
}

func newNotesModel(s *store.Store) notesModel {
	content, subject, tags := "", "", ""
	important := false
	return notesModel{
		store:         s,
		formContent:   &content,
		formSubject:   &subject,
		formTags:      &tags,
		formImportant: &important,
	}
}

func (n *notesModel) setSize(w, h int) {
	n.width = w
	n.height = h
}

type notesDataMsg struct {
	notes []store.QuickNote
}

func (n notesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		notes, _ := n.store.ListNotes()
		return notesDataMsg{notes: notes}
	}
}

func (n notesModel) update(msg tea.Msg) (notesModel, tea.Cmd) {
	if n.formActive && n.form != nil {
		return n.updateForm(msg)
	}

	switch msg := msg.(type) {
	case notesDataMsg:
		n.notes = msg.notes
		if n.cursor >= len(n.notes) {
			n.cursor = max(0, len(n.notes)-1)
		}
		return n, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if n.cursor > 0 {
				n.cursor--
			}
		case key.Matches(msg, keys.Down):
			if n.cursor < len(n.notes)-1 {
				n.cursor++
			}
		case key.Matches(msg, keys.New):
			return n.showForm()
		case key.Matches(msg, keys.Delete):
			if len(n.notes) > 0 {
				if err := n.store.DeleteNote(n.notes[n.cursor].ID); err != nil {
					return n, errorCmd(err)
				}
				return n, tea.Batch(n.refresh(), statusCmd("Note deleted"))
			}
		}
	}
	return n, nil
}

func (n notesModel) showForm() (notesModel, tea.Cmd) {
	*n.formContent = ""
	*n.formSubject = ""
	*n.formTags = ""
	*n.formImportant = false

	n.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Note").Value(n.formContent),
			huh.NewInput().Title("Subject").Value(n.formSubject),
			huh.NewInput().Title("Tags (comma-separated)").Value(n.formTags),
			huh.NewConfirm().Title("Important?").Value(n.formImportant),
		),
	).WithShowHelp(true).WithShowErrors(true)

	n.formActive = true
	return n, n.form.Init()
}

func (n notesModel) updateForm(msg tea.Msg) (notesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			n.formActive = false
			n.form = nil
			return n, nil
		}
	}

	form, cmd := n.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		n.form = f
	}

	if n.form.State == huh.StateCompleted {
		n.formActive = false
		if *n.formContent == "" {
			return n, statusCmd("Empty note discarded")
		}
		if _, err := n.store.AddNote(*n.formContent, *n.formSubject, *n.formTags, *n.formImportant); err != nil {
			return n, errorCmd(err)
		}
		return n, tea.Batch(n.refresh(), statusCmd("Note saved"))
	}

	return n, cmd
}

func (n notesModel) view() string {
	w := n.width - 4

	if n.formActive && n.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Note"), "", n.form.View()),
		)
	}

	title := titleStyle.Render("Quick Notes")
	if len(n.notes) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No notes yet. Press n to jot one down."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, note := range n.notes {
		cursor := "  "
		style := normalItemStyle
		if i == n.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		marker := "  "
		if note.Important {
			marker = accentStyle.Render("★ ")
		}
		meta := note.CreatedAt.Local().Format("Jan 02 15:04")
		if note.Subject != "" {
			meta += " · " + note.Subject
		}
		if note.Tags != "" {
			meta += " [" + note.Tags + "]"
		}

		rows = append(rows, style.Render(fmt.Sprintf("%s%s%s", cursor, marker, truncate(note.Content, w-20))))
		rows = append(rows, mutedStyle.Render("      "+meta))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
