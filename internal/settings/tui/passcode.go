package tui

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
)

// minPasscodeLength is the shortest accepted passcode.
const minPasscodeLength = 4

// passcodePhase is the passcode screen's current step.
type passcodePhase int

const (
	phaseMenu passcodePhase = iota
	phaseVerify
	phaseNew
	phaseConfirm
)

// passcodeChangedMsg reports that the passcode was set, changed, or
// removed. The coordinator patches the settings row and pops the screen.
type passcodeChangedMsg struct {
	on bool
}

// passcodeKeyMap defines key bindings for the passcode screen
type passcodeKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k passcodeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k passcodeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
	}
}

// PasscodeModel manages the browser passcode. Only a salted hash of the
// code ever touches the store; the clear text lives in this model for
// the duration of one entry flow and nowhere else.
type PasscodeModel struct {
	Store prefs.Store

	phase       passcodePhase
	hasPasscode bool

	// Cursor selects the menu action.
	Cursor int

	// remove is set while verifying for removal rather than change.
	remove bool

	// firstEntry holds the new passcode between the entry and confirm
	// phases.
	firstEntry string

	Input  textinput.Model
	Status string

	// UI state
	Width  int
	Height int

	// Help
	Help help.Model
	Keys passcodeKeyMap
}

// NewPasscodeModel builds the passcode screen for the store's current
// state.
func NewPasscodeModel(store prefs.Store) PasscodeModel {
	input := textinput.New()
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 32
	input.Width = 20

	keys := passcodeKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}

	return PasscodeModel{
		Store:       store,
		phase:       phaseMenu,
		hasPasscode: store.String(prefs.KeyPasscodeHash) != "",
		Input:       input,
		Help:        help.New(),
		Keys:        keys,
	}
}

// menuItems returns the actions available for the current passcode state.
func (m PasscodeModel) menuItems() []string {
	if m.hasPasscode {
		return []string{"Change Passcode", "Remove Passcode"}
	}
	return []string{"Set Passcode"}
}

// Init initializes the passcode screen
func (m PasscodeModel) Init() tea.Cmd {
	return nil
}

// Update handles passcode screen input
func (m PasscodeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if sizeMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.Width = sizeMsg.Width
		m.Height = sizeMsg.Height
		return m, nil
	}

	if m.phase == phaseMenu {
		return m.updateMenu(msg)
	}
	return m.updateEntry(msg)
}

// updateMenu handles the set/change/remove menu.
func (m PasscodeModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	items := m.menuItems()
	switch keyMsg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return goBackMsg{} }

	case "up", "k":
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = len(items) - 1
		}

	case "down", "j":
		m.Cursor++
		if m.Cursor >= len(items) {
			m.Cursor = 0
		}

	case "enter", " ":
		return m.chooseMenuItem()
	}

	return m, nil
}

// chooseMenuItem starts the flow for the selected menu action.
func (m PasscodeModel) chooseMenuItem() (tea.Model, tea.Cmd) {
	m.Status = ""
	if !m.hasPasscode {
		// Only "Set Passcode" exists.
		m.phase = phaseNew
		return m.focusInput("New passcode")
	}

	// Both change and removal verify the current code first.
	m.remove = m.Cursor == 1
	m.phase = phaseVerify
	return m.focusInput("Current passcode")
}

// focusInput resets and focuses the entry field.
func (m PasscodeModel) focusInput(placeholder string) (tea.Model, tea.Cmd) {
	m.Input.Placeholder = placeholder
	m.Input.SetValue("")
	m.Input.Focus()
	return m, textinput.Blink
}

// updateEntry handles the passcode entry phases.
func (m PasscodeModel) updateEntry(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			// Abandon the flow but stay on the screen.
			m.phase = phaseMenu
			m.remove = false
			m.firstEntry = ""
			m.Status = ""
			m.Input.Blur()
			m.Input.SetValue("")
			return m, nil

		case "enter":
			return m.submitEntry()
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// submitEntry advances the flow with the entered code.
func (m PasscodeModel) submitEntry() (tea.Model, tea.Cmd) {
	entered := m.Input.Value()

	switch m.phase {
	case phaseVerify:
		salt := m.Store.String(prefs.KeyPasscodeSalt)
		if hashPasscode(salt, entered) != m.Store.String(prefs.KeyPasscodeHash) {
			m.Status = "Incorrect passcode"
			m.Input.SetValue("")
			return m, nil
		}
		if m.remove {
			return m.removePasscode()
		}
		m.phase = phaseNew
		m.Status = ""
		return m.focusInput("New passcode")

	case phaseNew:
		if len(entered) < minPasscodeLength {
			m.Status = fmt.Sprintf("Passcode must be at least %d characters", minPasscodeLength)
			m.Input.SetValue("")
			return m, nil
		}
		m.firstEntry = entered
		m.phase = phaseConfirm
		m.Status = ""
		return m.focusInput("Confirm passcode")

	case phaseConfirm:
		if entered != m.firstEntry {
			m.Status = "Passcodes did not match, try again"
			m.firstEntry = ""
			m.phase = phaseNew
			return m.focusInput("New passcode")
		}
		return m.savePasscode(entered)
	}

	return m, nil
}

// savePasscode persists the salted hash of the new code.
func (m PasscodeModel) savePasscode(code string) (tea.Model, tea.Cmd) {
	salt, err := newSalt()
	if err != nil {
		m.Status = fmt.Sprintf("Could not generate salt: %v", err)
		return m, nil
	}
	if err := m.Store.SetString(prefs.KeyPasscodeSalt, salt); err != nil {
		m.Status = fmt.Sprintf("Could not save passcode: %v", err)
		return m, nil
	}
	if err := m.Store.SetString(prefs.KeyPasscodeHash, hashPasscode(salt, code)); err != nil {
		m.Status = fmt.Sprintf("Could not save passcode: %v", err)
		return m, nil
	}
	logging.Info("Passcode updated")
	return m, func() tea.Msg { return passcodeChangedMsg{on: true} }
}

// removePasscode clears the stored hash and salt.
func (m PasscodeModel) removePasscode() (tea.Model, tea.Cmd) {
	if err := m.Store.SetString(prefs.KeyPasscodeHash, ""); err != nil {
		m.Status = fmt.Sprintf("Could not remove passcode: %v", err)
		return m, nil
	}
	if err := m.Store.SetString(prefs.KeyPasscodeSalt, ""); err != nil {
		m.Status = fmt.Sprintf("Could not remove passcode: %v", err)
		return m, nil
	}
	logging.Info("Passcode removed")
	return m, func() tea.Msg { return passcodeChangedMsg{on: false} }
}

// newSalt returns a fresh random salt, hex encoded.
func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// hashPasscode derives the stored form of a passcode.
func hashPasscode(salt, code string) string {
	sum := sha256.Sum256([]byte(salt + code))
	return hex.EncodeToString(sum[:])
}

// View renders the passcode screen
func (m PasscodeModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent renders the menu or the active entry prompt.
func (m PasscodeModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Require Passcode"))
	b.WriteString("\n")

	switch m.phase {
	case phaseMenu:
		state := "A passcode is currently set."
		if !m.hasPasscode {
			state = "No passcode is set."
		}
		b.WriteString(SubtitleStyle.Render(" " + state))
		b.WriteString("\n\n")
		for i, item := range m.menuItems() {
			b.WriteString(RenderMenuItem(item, i == m.Cursor))
			b.WriteString("\n")
		}

	case phaseVerify:
		b.WriteString("  Enter your current passcode:\n\n")
		b.WriteString("  " + m.Input.View())
		b.WriteString("\n")

	case phaseNew:
		b.WriteString("  Enter a new passcode:\n\n")
		b.WriteString("  " + m.Input.View())
		b.WriteString("\n")

	case phaseConfirm:
		b.WriteString("  Re-enter the new passcode:\n\n")
		b.WriteString("  " + m.Input.View())
		b.WriteString("\n")
	}

	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(StatusErrorStyle.Render("✗ " + m.Status))
		b.WriteString("\n")
	}

	return b.String()
}
