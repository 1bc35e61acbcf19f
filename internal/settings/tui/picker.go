package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/merrow/brim/internal/catalog"
)

// PickerContext identifies the settings row a picker was opened from.
// The picker hands it back unchanged with the chosen option; the row is
// then re-located by UUID, so a row that vanished in the meantime turns
// the resulting patch into a silent no-op.
type PickerContext struct {
	SectionID uuid.UUID
	RowID     uuid.UUID
	Key       string
}

// pickerRequest carries everything the picker needs from the settings row
// that opened it.
type pickerRequest struct {
	Context    PickerContext
	Title      string
	Options    []catalog.Option
	CurrentRaw int
}

// optionPickedMsg delivers the chosen option back to the coordinator.
// A picker emits at most one of these over its lifetime.
type optionPickedMsg struct {
	context PickerContext
	option  catalog.Option
}

// pickerKeyMap defines key bindings for the option picker screen
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
	}
}

// PickerModel is a single-selection list over one settings enumeration.
// The variant whose raw value matches the stored preference is marked as
// current; a stored value no variant matches simply marks nothing.
type PickerModel struct {
	Title   string
	Context PickerContext
	Options []catalog.Option

	// Cursor is the highlighted option index.
	Cursor int

	// Selected is the index of the current value's option, or -1 when
	// the stored raw value matches no variant.
	Selected int

	// delivered is set once the choice has been emitted. Further
	// activations do nothing; the coordinator pops the screen.
	delivered bool

	// UI state
	Width  int
	Height int

	// Help
	Help help.Model
	Keys pickerKeyMap
}

// NewPickerModel builds a picker over req.Options with the current value
// pre-marked.
func NewPickerModel(req pickerRequest) PickerModel {
	selected := -1
	cursor := 0
	for i, opt := range req.Options {
		if opt.Raw() == req.CurrentRaw {
			selected = i
			cursor = i
			break
		}
	}

	keys := pickerKeyMap{
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

	return PickerModel{
		Title:    req.Title,
		Context:  req.Context,
		Options:  req.Options,
		Cursor:   cursor,
		Selected: selected,
		Help:     help.New(),
		Keys:     keys,
	}
}

// Init initializes the picker screen
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles picker input
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.Cursor--
			if m.Cursor < 0 {
				m.Cursor = len(m.Options) - 1
			}

		case "down", "j":
			m.Cursor++
			if m.Cursor >= len(m.Options) {
				m.Cursor = 0
			}

		case "enter", " ":
			return m.choose()

		case "esc", "q":
			// Leave without choosing; the current value stands.
			return m, func() tea.Msg { return goBackMsg{} }
		}
	}

	return m, nil
}

// choose emits the highlighted option. The choice is delivered at most
// once no matter how often activation fires before the screen is popped.
func (m PickerModel) choose() (tea.Model, tea.Cmd) {
	if m.delivered || len(m.Options) == 0 {
		return m, nil
	}
	m.delivered = true

	chosen := m.Options[m.Cursor]
	ctx := m.Context
	return m, func() tea.Msg {
		return optionPickedMsg{context: ctx, option: chosen}
	}
}

// View renders the picker screen
func (m PickerModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent builds the option list content
func (m PickerModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle(m.Title))
	b.WriteString("\n")

	for i, opt := range m.Options {
		mark := "○"
		if i == m.Selected {
			mark = "●"
		}
		b.WriteString(RenderMenuItem(mark+" "+opt.Label(), i == m.Cursor))
		b.WriteString("\n")
	}

	return b.String()
}
