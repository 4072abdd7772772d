package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"missionhub/internal/tui/styles"
)

// Input is a labelled text field with an inline error
type Input struct {
	textInput textinput.Model
	label     string
	err       string
	required  bool
}

func NewInput(label, placeholder string) Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 36
	return Input{textInput: ti, label: label}
}

func NewPasswordInput(label string) Input {
	in := NewInput(label, "••••••••")
	in.textInput.EchoMode = textinput.EchoPassword
	in.textInput.EchoCharacter = '•'
	in.textInput.CharLimit = 100
	return in
}

func (i *Input) Focus() tea.Cmd { return i.textInput.Focus() }

func (i *Input) Blur() { i.textInput.Blur() }

func (i Input) Focused() bool { return i.textInput.Focused() }

func (i Input) Value() string { return i.textInput.Value() }

func (i *Input) SetValue(v string) { i.textInput.SetValue(v) }

func (i *Input) SetError(msg string) { i.err = msg }

func (i *Input) SetRequired(required bool) { i.required = required }

// Update forwards msg to the field and clears any error on edit
func (i *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		i.err = ""
	}
	return cmd
}

func (i Input) View() string {
	labelStyle, inputStyle := styles.InputPromptStyle, styles.InputStyle
	if i.Focused() {
		labelStyle, inputStyle = styles.InputFocusedStyle, styles.InputFocusedStyle
	}

	label := i.label
	if i.required {
		label += " " + styles.ErrorStyle.Render("*")
	}
	out := labelStyle.Render(label) + "\n" + inputStyle.Render(i.textInput.View())
	if i.err != "" {
		out += "\n" + styles.ErrorStyle.Render("✗ "+i.err)
	}
	return out
}
