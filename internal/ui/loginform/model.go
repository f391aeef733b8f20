package loginform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasksync/internal/theme"
)

// SubmittedMsg carries the credentials entered by the user.
type SubmittedMsg struct {
	Email    string
	Password string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

type formBindings struct {
	email    string
	password string
}

// Model is the Bubble Tea model for the login form.
type Model struct {
	form  *huh.Form
	fb    *formBindings
	width int
}

// New creates a login form model.
func New(width int) Model {
	return Model{fb: &formBindings{}, width: width}
}

// Start builds a fresh form, pre-filling email.
func (m *Model) Start(email string) tea.Cmd {
	m.fb.email = email
	m.fb.password = ""
	m.form = build(m.fb).WithWidth(m.formWidth())
	return m.form.Init()
}

// Active reports whether the form is being shown.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		sub := SubmittedMsg{Email: strings.TrimSpace(m.fb.email), Password: m.fb.password}
		m.form = nil
		m.fb.password = ""
		return m, func() tea.Msg { return sub }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return theme.BorderStyle.
		Padding(1, 2).
		Render(titleStyle.Render("Sign in") + "\n" + m.form.View())
}

// SetSize updates the form width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}

// Prompt runs the login form standalone on the terminal and returns the
// entered email and password.
func Prompt(email string) (string, string, error) {
	fb := &formBindings{email: email}
	if err := build(fb).Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(fb.email), fb.password, nil
}

func build(fb *formBindings) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(s, "@") {
		return errors.New("email must contain @")
	}
	return nil
}
