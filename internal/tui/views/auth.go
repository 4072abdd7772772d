package views

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"missionhub/internal/tui/components"
	"missionhub/internal/tui/styles"
	"missionhub/pkg/models"
)

// Authenticator is the part of the API client the login form needs
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.LoginResponse, error)
}

type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// field indexes into AuthModel.inputs
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

type AuthModel struct {
	mode   AuthMode
	auth   Authenticator
	inputs []components.Input

	focusIndex int
	loading    bool
	err        error
}

func NewAuthModel(auth Authenticator) AuthModel {
	inputs := []components.Input{
		components.NewInput("Name", "Ada Lovelace"),
		components.NewInput("Email", "you@company.com"),
		components.NewPasswordInput("Password"),
		components.NewPasswordInput("Confirm"),
	}
	for i := range inputs {
		inputs[i].SetRequired(true)
	}

	m := AuthModel{mode: ModeLogin, auth: auth, inputs: inputs}
	m.updateFocus()
	return m
}

func (m AuthModel) Init() tea.Cmd {
	return textinput.Blink
}

// visible lists the input indexes shown in the current mode
func (m AuthModel) visible() []int {
	if m.mode == ModeRegister {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

// submitIndex is the focus slot of the button, after the last field
func (m AuthModel) submitIndex() int {
	return len(m.visible())
}

func (m AuthModel) Update(msg tea.Msg) (AuthModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("tab", "down"))):
			m.focusIndex = (m.focusIndex + 1) % (m.submitIndex() + 1)
			m.updateFocus()
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("shift+tab", "up"))):
			m.focusIndex--
			if m.focusIndex < 0 {
				m.focusIndex = m.submitIndex()
			}
			m.updateFocus()
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if m.focusIndex == m.submitIndex() {
				return m.submit()
			}
			m.focusIndex++
			m.updateFocus()
			return m, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+t"))):
			m.toggleMode()
			return m, nil
		}

	case AuthSuccessMsg:
		m.loading = false
		m.inputs[fieldPassword].SetValue("")
		m.inputs[fieldConfirm].SetValue("")
		return m, nil

	case AuthErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	if m.focusIndex < m.submitIndex() {
		idx := m.visible()[m.focusIndex]
		return m, m.inputs[idx].Update(msg)
	}
	return m, nil
}

func (m AuthModel) View() string {
	var b strings.Builder

	title, button := "🔐 Login", "Login"
	if m.mode == ModeRegister {
		title, button = "📝 Register", "Register"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	var form strings.Builder
	for _, idx := range m.visible() {
		form.WriteString(m.inputs[idx].View())
		form.WriteString("\n")
	}
	form.WriteString("\n")
	buttonStyle := styles.ButtonStyle
	if m.focusIndex == m.submitIndex() {
		buttonStyle = styles.ButtonActiveStyle
	}
	form.WriteString(buttonStyle.Render(button))

	b.WriteString(styles.CardStyle.Render(form.String()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styles.InfoStyle.Render("⟳ Signing in..."))
		b.WriteString("\n\n")
	}

	if m.mode == ModeLogin {
		b.WriteString(styles.HelpStyle.Render("tab next field • ctrl+t register • ctrl+c quit"))
	} else {
		b.WriteString(styles.HelpStyle.Render("tab next field • ctrl+t back to login • ctrl+c quit"))
	}
	return b.String()
}

func (m *AuthModel) updateFocus() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if m.focusIndex < m.submitIndex() {
		m.inputs[m.visible()[m.focusIndex]].Focus()
	}
}

func (m *AuthModel) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeRegister
	} else {
		m.mode = ModeLogin
	}
	m.focusIndex = 0
	m.err = nil
	m.updateFocus()
}

// validate marks missing fields and returns the first problem
func (m *AuthModel) validate() error {
	var first error
	for _, idx := range m.visible() {
		if strings.TrimSpace(m.inputs[idx].Value()) == "" {
			m.inputs[idx].SetError("required")
			if first == nil {
				first = errors.New("please fill in all fields")
			}
		}
	}
	if first != nil {
		return first
	}
	if m.mode == ModeRegister && m.inputs[fieldPassword].Value() != m.inputs[fieldConfirm].Value() {
		m.inputs[fieldConfirm].SetError("does not match")
		return errors.New("passwords do not match")
	}
	return nil
}

func (m AuthModel) submit() (AuthModel, tea.Cmd) {
	if err := m.validate(); err != nil {
		m.err = err
		return m, nil
	}
	m.loading = true
	m.err = nil

	name := strings.TrimSpace(m.inputs[fieldName].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	register := m.mode == ModeRegister
	auth := m.auth

	return m, func() tea.Msg {
		ctx := context.Background()
		var (
			resp *models.LoginResponse
			err  error
		)
		if register {
			resp, err = auth.Register(ctx, name, email, password)
		} else {
			resp, err = auth.Login(ctx, email, password)
		}
		if err != nil {
			return AuthErrorMsg{Err: err}
		}
		return AuthSuccessMsg{Email: email, Response: resp}
	}
}

// AuthSuccessMsg carries the new session
type AuthSuccessMsg struct {
	Email    string
	Response *models.LoginResponse
}

type AuthErrorMsg struct {
	Err error
}
