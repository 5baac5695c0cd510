package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
)

// loginForm collects credentials before the session key exists. Submission
// is driven by the key handler, which owns the API client.
type loginForm struct {
	email      textinput.Model
	password   textinput.Model
	focused    loginField
	submitting bool
	err        string
}

func newLoginForm() *loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Prompt = "> "

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Prompt = "> "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return &loginForm{email: email, password: password}
}

func (f *loginForm) Focus() tea.Cmd {
	f.focused = loginFieldEmail
	f.password.Blur()
	return f.email.Focus()
}

func (f *loginForm) Email() string    { return strings.TrimSpace(f.email.Value()) }
func (f *loginForm) Password() string { return f.password.Value() }
func (f *loginForm) Submitting() bool { return f.submitting }
func (f *loginForm) Error() string    { return f.err }

func (f *loginForm) SetSubmitting(v bool) {
	f.submitting = v
	if v {
		f.err = ""
	}
}

// NextField moves focus between the two inputs, returning the blink
// command for the newly-focused one.
func (f *loginForm) NextField() tea.Cmd {
	if f.focused == loginFieldEmail {
		f.focused = loginFieldPassword
		f.email.Blur()
		return f.password.Focus()
	}
	f.focused = loginFieldEmail
	f.password.Blur()
	return f.email.Focus()
}

// Validate reports whether the form is ready to submit, recording a
// message for the view when it is not.
func (f *loginForm) Validate() bool {
	if f.Email() == "" {
		f.err = "email is required"
		return false
	}
	if f.Password() == "" {
		f.err = "password is required"
		return false
	}
	f.err = ""
	return true
}

func (f *loginForm) SetError(msg string) { f.err = msg }

// Update forwards messages to the focused input. Key routing (tab, enter,
// esc) happens before this is reached.
func (f *loginForm) Update(msg tea.Msg) tea.Cmd {
	if f.submitting {
		return nil
	}
	var cmd tea.Cmd
	if f.focused == loginFieldEmail {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (f *loginForm) View() string {
	var b strings.Builder
	b.WriteString(styles.Header.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(f.email.View())
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")
	switch {
	case f.submitting:
		b.WriteString(styles.Loading.Render("signing in..."))
	case f.err != "":
		b.WriteString(styles.Error.Render(f.err))
	default:
		b.WriteString(styles.Footer.Render("tab switches fields, enter submits, esc quits"))
	}
	return b.String()
}
