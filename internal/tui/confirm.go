// Package tui provides the full-screen confirmation form built on bubbletea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/engine"
	"github.com/Veraticus/spent/internal/model"
)

// SaveFunc persists a confirmed draft. A non-nil error keeps the form open.
type SaveFunc func(ctx context.Context, draft engine.Draft) error

type savedMsg struct {
	err error
}

var fieldLabels = map[engine.FormField]string{
	engine.FormAmount:      "Amount",
	engine.FormDescription: "Description",
	engine.FormCategory:    "Category",
	engine.FormDate:        "Date",
}

// ConfirmModel is the editable confirmation form: one input per field,
// Tab and Shift+Tab to move, Enter to save and Esc to cancel. Enter does
// nothing but reveal field errors while the draft is invalid.
type ConfirmModel struct {
	ctx        context.Context
	save       SaveFunc
	saveErr    string
	errs       engine.FieldErrors
	draft      engine.Draft
	theme      Theme
	keys       KeyMap
	help       help.Model
	spinner    spinner.Model
	fields     []engine.FormField
	inputs     []textinput.Model
	focus      int
	width      int
	showErrors bool
	saving     bool
	saved      bool
	canceled   bool
}

// NewConfirmModel creates a form pre-filled from draft, focused on the field
// that most needs attention. save may be nil, in which case Enter on a valid
// draft just closes the form.
func NewConfirmModel(ctx context.Context, draft engine.Draft, save SaveFunc) ConfirmModel {
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(DefaultTheme.Primary)

	m := ConfirmModel{
		ctx:     ctx,
		save:    save,
		draft:   draft,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		fields:  engine.FormFields(),
	}

	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.SetValue(draft.Value(f))
		switch f {
		case engine.FormAmount:
			in.Placeholder = "15.00"
		case engine.FormDescription:
			in.Placeholder = "what was it for?"
		case engine.FormCategory:
			in.Placeholder = categoryHint()
		case engine.FormDate:
			in.Placeholder = "YYYY-MM-DD"
		}
		m.inputs[i] = in
	}

	if focus := draft.FocusField(); focus != "" {
		m.focus = m.indexOf(focus)
	}
	m.inputs[m.focus].Focus()
	_, m.errs = draft.Validate()
	return m
}

// Init starts the cursor blinking.
func (m ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.saveErr = common.UserMessage(msg.err, "Couldn't save your expense. Nothing was lost, please try again.")
			return m, nil
		}
		m.saved = true
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.canceled = true
			return m, tea.Quit
		}
		if m.saving {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		case key.Matches(msg, m.keys.Save):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.draft.Set(m.fields[m.focus], m.inputs[m.focus].Value())
	_, m.errs = m.draft.Validate()
	return m, cmd
}

func (m *ConfirmModel) submit() (tea.Model, tea.Cmd) {
	if m.errs != nil {
		m.showErrors = true
		cmd := m.setFocus(m.indexOf(m.draft.FocusField()))
		return *m, cmd
	}
	if m.save == nil {
		m.saved = true
		return *m, tea.Quit
	}

	m.saving = true
	m.saveErr = ""
	ctx, save, draft := m.ctx, m.save, m.draft
	return *m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return savedMsg{err: save(ctx, draft)}
	})
}

func (m *ConfirmModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

func (m ConfirmModel) indexOf(f engine.FormField) int {
	for i, field := range m.fields {
		if field == f {
			return i
		}
	}
	return 0
}

// View renders the form.
func (m ConfirmModel) View() string {
	var b strings.Builder

	title := "Confirm expense"
	if m.draft.ExpenseID != "" {
		title = "Edit expense"
	}
	b.WriteString(m.theme.Title.Render(title))
	b.WriteString("\n")

	for i, f := range m.fields {
		label := fieldLabels[f]
		if m.draft.IsRequired(f) {
			label += "*"
		}
		style := m.theme.Label
		if i == m.focus {
			style = m.theme.Focused
		}
		b.WriteString(style.Render(label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg, bad := m.errs[f]; bad && m.showErrors {
			b.WriteString(m.theme.FieldError.Render(msg))
			b.WriteString("\n")
		}
	}

	if m.draft.RawInput != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Muted.Render("You typed: " + m.draft.RawInput))
		b.WriteString("\n")
	}

	switch {
	case m.saving:
		b.WriteString("\n" + m.spinner.View() + " Saving…\n")
	case m.saveErr != "":
		b.WriteString("\n" + m.theme.Notice.Render(m.saveErr) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.theme.BorderedBox.Render(b.String())
}

// Draft returns the form content as typed.
func (m ConfirmModel) Draft() engine.Draft {
	return m.draft
}

// Saved reports whether the form closed with a successful save.
func (m ConfirmModel) Saved() bool {
	return m.saved
}

// Canceled reports whether the user dismissed the form.
func (m ConfirmModel) Canceled() bool {
	return m.canceled
}

func categoryHint() string {
	cats := model.AllCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, " | ")
}
