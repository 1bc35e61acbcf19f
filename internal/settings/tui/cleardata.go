package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/discovery"
	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
)

// clearDataCategory pairs a display label with the preference key that
// remembers whether it is selected.
type clearDataCategory struct {
	label string
	key   string
}

// clearDataCategories lists the clearable stores in display order.
var clearDataCategories = []clearDataCategory{
	{"Browsing Cache", prefs.KeyClearDataCache},
	{"Cookies", prefs.KeyClearDataCookies},
	{"Browsing History", prefs.KeyClearDataHistory},
	{"Downloaded Files", prefs.KeyClearDataDownloads},
}

// clearDoneMsg reports the result of a clear request.
type clearDoneMsg struct {
	instance string
	cleared  int
	err      error
}

// ClearFunc executes a clear request against a running instance and
// reports the instance name and how many categories it acknowledged.
type ClearFunc func(selection control.ClearDataPayload) (string, int, error)

// clearDataKeyMap defines key bindings for the clear-data screen
type clearDataKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k clearDataKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k clearDataKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Back},
	}
}

// ClearDataModel picks private-data categories and clears them on a
// running brim instance. Category choices persist as preferences, so the
// next visit starts from the same selection.
type ClearDataModel struct {
	Store prefs.Store

	// Cursor covers the category toggles plus the clear button.
	Cursor int

	Confirming bool
	Clearing   bool
	Spinner    spinner.Model

	Status      string
	StatusError bool

	// Clear performs the actual request; swapped out in tests.
	Clear ClearFunc

	// UI state
	Width  int
	Height int

	// Help
	Help help.Model
	Keys clearDataKeyMap
}

// NewClearDataModel builds the clear-data screen over the store.
func NewClearDataModel(store prefs.Store) ClearDataModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := clearDataKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle/clear"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
	}

	return ClearDataModel{
		Store:   store,
		Spinner: s,
		Clear:   clearOnInstance,
		Help:    help.New(),
		Keys:    keys,
	}
}

// clearOnInstance sends the clear request to the first discovered
// instance.
func clearOnInstance(selection control.ClearDataPayload) (string, int, error) {
	instances, err := discovery.QuickScan()
	if err != nil {
		return "", 0, err
	}
	if len(instances) == 0 {
		return "", 0, fmt.Errorf("no running brim instance found")
	}

	instance := instances[0]
	client := control.NewClient(instance.IP, instance.Port)
	defer client.Close()

	ack, err := client.ClearData(selection)
	if err != nil {
		return instance.Name, 0, err
	}
	return instance.Name, ack.Applied, nil
}

// Init initializes the clear-data screen
func (m ClearDataModel) Init() tea.Cmd {
	return nil
}

// Update handles clear-data screen input
func (m ClearDataModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Clearing {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case clearDoneMsg:
		m.Clearing = false
		if msg.err != nil {
			m.Status = control.GetShortErrorMessage(msg.err)
			m.StatusError = true
		} else {
			m.Status = fmt.Sprintf("Cleared %d categories on %s", msg.cleared, msg.instance)
			m.StatusError = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.Confirming {
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

// updateNormal handles category navigation and toggling.
func (m ClearDataModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return goBackMsg{} }

	case "up", "k":
		m.Cursor--
		if m.Cursor < 0 {
			m.Cursor = len(clearDataCategories)
		}

	case "down", "j":
		m.Cursor++
		if m.Cursor > len(clearDataCategories) {
			m.Cursor = 0
		}

	case "enter", " ":
		return m.activate()
	}

	return m, nil
}

// activate toggles the highlighted category or arms the clear button.
func (m ClearDataModel) activate() (tea.Model, tea.Cmd) {
	if m.Clearing {
		return m, nil
	}
	m.Status = ""

	if m.Cursor < len(clearDataCategories) {
		category := clearDataCategories[m.Cursor]
		oldValue := m.Store.Bool(category.key)
		if err := m.Store.SetBool(category.key, !oldValue); err != nil {
			m.Status = fmt.Sprintf("Could not save selection: %v", err)
			m.StatusError = true
			return m, nil
		}
		logging.LogPrefChange(category.key, oldValue, !oldValue)
		return m, nil
	}

	// Clear button
	if !m.anySelected() {
		m.Status = "Select at least one category to clear"
		m.StatusError = true
		return m, nil
	}
	m.Confirming = true
	return m, nil
}

// updateConfirm handles the yes/no step before anything is cleared.
func (m ClearDataModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.Confirming = false
		m.Clearing = true
		return m, tea.Batch(m.Spinner.Tick, clearCmd(m.Clear, m.selection()))

	case "n", "N", "esc":
		m.Confirming = false
	}
	return m, nil
}

// selection builds the payload from the remembered category choices.
func (m ClearDataModel) selection() control.ClearDataPayload {
	return control.ClearDataPayload{
		Cache:     m.Store.Bool(prefs.KeyClearDataCache),
		Cookies:   m.Store.Bool(prefs.KeyClearDataCookies),
		History:   m.Store.Bool(prefs.KeyClearDataHistory),
		Downloads: m.Store.Bool(prefs.KeyClearDataDownloads),
	}
}

// anySelected reports whether at least one category is picked.
func (m ClearDataModel) anySelected() bool {
	for _, category := range clearDataCategories {
		if m.Store.Bool(category.key) {
			return true
		}
	}
	return false
}

// clearCmd runs the clear request off the update loop.
func clearCmd(clear ClearFunc, selection control.ClearDataPayload) tea.Cmd {
	return func() tea.Msg {
		instance, cleared, err := clear(selection)
		return clearDoneMsg{instance: instance, cleared: cleared, err: err}
	}
}

// View renders the clear-data screen
func (m ClearDataModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent renders the category toggles and clear button.
func (m ClearDataModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Clear Private Data"))
	b.WriteString("\n")

	for i, category := range clearDataCategories {
		mark := "[ ]"
		if m.Store.Bool(category.key) {
			mark = "[✓]"
		}
		b.WriteString(RenderMenuItem(mark+" "+category.label, i == m.Cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderMenuItem("Clear Private Data", m.Cursor == len(clearDataCategories)))
	b.WriteString("\n")

	if m.Confirming {
		b.WriteString("\n")
		b.WriteString(StatusInfoStyle.Render("This cannot be undone. Clear now? (y/N)"))
		b.WriteString("\n")
	}

	if m.Clearing {
		b.WriteString("\n")
		b.WriteString(StatusInfoStyle.Render(m.Spinner.View() + " Clearing..."))
		b.WriteString("\n")
	}

	if m.Status != "" {
		b.WriteString("\n")
		if m.StatusError {
			b.WriteString(StatusErrorStyle.Render("✗ " + m.Status))
		} else {
			b.WriteString(StatusOKStyle.Render("✓ " + m.Status))
		}
		b.WriteString("\n")
	}

	return b.String()
}
