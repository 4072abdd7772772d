// Package focus tracks whether keystrokes belong to a text field or to
// navigation.
package focus

type Mode int

const (
	// ModeNavigation routes keys to global bindings and lists
	ModeNavigation Mode = iota
	// ModeInput sends printable keys to the focused field
	ModeInput
)

type Manager struct {
	mode Mode
}

func NewManager() *Manager {
	return &Manager{mode: ModeNavigation}
}

func (m *Manager) SetMode(mode Mode) { m.mode = mode }

func (m *Manager) Mode() Mode { return m.mode }

func (m *Manager) IsInputMode() bool { return m.mode == ModeInput }
