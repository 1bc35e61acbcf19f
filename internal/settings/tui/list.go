package tui

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merrow/brim/internal/catalog"
	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/discovery"
	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
	"github.com/merrow/brim/internal/settings"
	"github.com/merrow/brim/internal/urls"
	"github.com/merrow/brim/internal/version"
)

// Message types for async operations
type syncCompleteMsg struct {
	instance string
	applied  int
	err      error
}

// instanceFoundMsg carries the result of the background instance scan.
// An empty name means nothing was found.
type instanceFoundMsg struct {
	name string
}

type urlOpenedMsg struct {
	url string
	err error
}

type clipboardCopiedMsg struct {
	err error
}

// rowRef addresses a row by its stable identifier pair instead of its
// position, so targeted patches survive rows moving or disappearing.
type rowRef struct {
	sectionID uuid.UUID
	rowID     uuid.UUID
}

// rowRefs keeps references to rows that other screens and background
// work patch after the fact.
type rowRefs struct {
	passcode rowRef
	instance rowRef
}

// settingsKeyMap defines key bindings for the settings list screen
type settingsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Section  key.Binding
	Activate key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k settingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Section, k.Activate, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k settingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Section},
		{k.Activate, k.Quit},
	}
}

// SettingsModel is the main settings screen: a sectioned list over the
// preference store. The list is built once at construction; every later
// change lands as a targeted in-place patch, never a rebuild.
type SettingsModel struct {
	Store      prefs.Store
	ConfigPath string
	Class      DeviceClass

	List *settings.Model
	Refs rowRefs

	// Cursor is the highlighted row's position.
	Cursor settings.IndexPath

	// Inline editing state
	Editing bool
	EditRef rowRef
	EditKey string
	Input   textinput.Model

	// Sync state
	Syncing bool
	Spinner spinner.Model

	// Status is the transient result line under the list.
	Status      string
	StatusError bool

	// UI state
	Width  int
	Height int

	// Help
	Help help.Model
	Keys settingsKeyMap
}

// NewSettingsModel builds the settings screen from the store's current
// values.
func NewSettingsModel(store prefs.Store, configPath string, class DeviceClass) SettingsModel {
	list, refs := BuildSections(store, class, configPath)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	input := textinput.New()
	input.CharLimit = 256
	input.Width = 50

	keys := settingsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Section: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next section"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "change"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return SettingsModel{
		Store:      store,
		ConfigPath: configPath,
		Class:      class,
		List:       list,
		Refs:       refs,
		Spinner:    s,
		Input:      input,
		Help:       help.New(),
		Keys:       keys,
	}
}

// BuildSections assembles the settings list from the store's current
// values. Called once per screen; everything afterwards is a patch.
func BuildSections(store prefs.Store, class DeviceClass, configPath string) (*settings.Model, rowRefs) {
	// Compact terminals get a button row for the clipboard setting in
	// place of the inline switch. Same preference, same behavior.
	clipboardRow := settings.NewToggleRow(
		"Offer to Open Copied Links", prefs.KeyOfferClipboardBar,
		store.Bool(prefs.KeyOfferClipboardBar))
	if class == DeviceClassCompact {
		clipboardRow = settings.NewToggleButtonRow(
			"Offer to Open Copied Links", prefs.KeyOfferClipboardBar,
			store.Bool(prefs.KeyOfferClipboardBar))
	}

	general := settings.NewSection("General",
		settings.NewTextRow("Homepage", prefs.KeyHomepageURL,
			store.String(prefs.KeyHomepageURL), "brim:start"),
		settings.NewTextRow("Search Engine", prefs.KeySearchEngine,
			store.String(prefs.KeySearchEngine), "duckduckgo"),
		settings.NewToggleRow("Search Suggestions", prefs.KeySearchSuggestions,
			store.Bool(prefs.KeySearchSuggestions)),
		settings.NewOptionRow("Show Tabs Bar", prefs.KeyTabBarVisibility,
			"Show Tabs Bar", catalog.TabBarVisibilityVariants(),
			store.Int(prefs.KeyTabBarVisibility)),
		clipboardRow,
		settings.NewToggleRow("Block Pop-up Windows", prefs.KeyBlockPopups,
			store.Bool(prefs.KeyBlockPopups)),
	)

	passcodeRow := settings.NewNavigationRow("Require Passcode",
		string(ScreenPasscode), passcodeDetail(store))

	privacy := settings.NewSection("Privacy",
		settings.NewOptionRow("Accept Cookies", prefs.KeyCookieAcceptPolicy,
			"Accept Cookies", catalog.CookiePolicyVariants(),
			store.Int(prefs.KeyCookieAcceptPolicy)),
		settings.NewToggleRow("Close Private Tabs", prefs.KeyClosePrivateTabs,
			store.Bool(prefs.KeyClosePrivateTabs)),
		passcodeRow,
		settings.NewOptionRow("Require Passcode After", prefs.KeyRequirePasscodeInterval,
			"Require Passcode After", catalog.PasscodeIntervalVariants(),
			store.Int(prefs.KeyRequirePasscodeInterval)),
		settings.NewNavigationRow("Clear Private Data", string(ScreenClearData), ""),
	)

	logins := settings.NewSection("Logins",
		settings.NewToggleRow("Save Logins", prefs.KeySaveLogins,
			store.Bool(prefs.KeySaveLogins)),
		settings.NewOptionRow("Password Manager", prefs.KeyPasswordManagerShortcut,
			"Password Manager", catalog.PasswordManagerVariants(),
			store.Int(prefs.KeyPasswordManagerShortcut)),
	)

	// The instance row starts out as "Searching..."; the scan fired from
	// Init patches in the discovered name, or "Not found".
	instanceRow := settings.NewInfoRow("Running Instance", "Searching...")

	sync := settings.NewSection("Sync",
		instanceRow,
		settings.NewActionRow("Sync Settings Now", settings.SyncAction{}),
		settings.NewURLRow("Sync Guide", urls.SyncGuide),
	)

	support := settings.NewSection("Support",
		settings.NewURLRow("Getting Started", urls.GettingStarted),
		settings.NewURLRow("Help", urls.Help),
		settings.NewURLRow("Privacy Notice", urls.PrivacyNotice),
		settings.NewActionRow("Copy Diagnostic Info",
			settings.CopyAction{Text: diagnosticInfo(configPath)}),
	)

	about := settings.NewSection("About",
		settings.NewInfoRow("Version", version.Full()),
		settings.NewInfoRow("Config File", configPath),
	)

	model := settings.NewModel(general, privacy, logins, sync, support, about)
	refs := rowRefs{
		passcode: rowRef{sectionID: privacy.ID, rowID: passcodeRow.ID},
		instance: rowRef{sectionID: sync.ID, rowID: instanceRow.ID},
	}
	return model, refs
}

// passcodeDetail renders the passcode row's current state.
func passcodeDetail(store prefs.Store) string {
	if store.String(prefs.KeyPasscodeHash) != "" {
		return "On"
	}
	return "Off"
}

// diagnosticInfo builds the text behind "Copy Diagnostic Info".
func diagnosticInfo(configPath string) string {
	return fmt.Sprintf("brim-cfg %s (%s/%s)\nconfig: %s",
		version.Full(), runtime.GOOS, runtime.GOARCH, configPath)
}

// Init starts the background scan that fills the "Running Instance" row.
func (m SettingsModel) Init() tea.Cmd {
	return discoverInstanceCmd()
}

// Update handles messages and updates the model
func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Async results land regardless of editing state.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.Syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case syncCompleteMsg:
		m.Syncing = false
		if msg.err != nil {
			m.Status = control.GetShortErrorMessage(msg.err)
			m.StatusError = true
		} else {
			m.Status = fmt.Sprintf("Synced %d settings to %s", msg.applied, msg.instance)
			m.StatusError = false
			m.List.PatchDetail(m.Refs.instance.sectionID, m.Refs.instance.rowID, msg.instance)
		}
		return m, nil

	case instanceFoundMsg:
		detail := "Not found"
		if msg.name != "" {
			detail = msg.name
		}
		m.List.PatchDetail(m.Refs.instance.sectionID, m.Refs.instance.rowID, detail)
		return m, nil

	case urlOpenedMsg:
		if msg.err != nil {
			m.Status = fmt.Sprintf("Could not open %s", msg.url)
			m.StatusError = true
		} else {
			m.Status = fmt.Sprintf("Opened %s", msg.url)
			m.StatusError = false
		}
		return m, nil

	case clipboardCopiedMsg:
		if msg.err != nil {
			m.Status = "Copy failed: no clipboard available"
			m.StatusError = true
		} else {
			m.Status = "Copied to clipboard"
			m.StatusError = false
		}
		return m, nil
	}

	if m.Editing {
		return m.updateEditor(msg)
	}
	return m.updateNormalMode(msg)
}

// updateNormalMode handles input while no inline editor is open.
func (m SettingsModel) updateNormalMode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "q":
			return m, func() tea.Msg { return quitMsg{} }

		case "up", "k":
			m.cursorUp()

		case "down", "j":
			m.cursorDown()

		case "tab":
			m.nextSection()

		case "enter", " ":
			return m.activate()
		}
	}

	return m, nil
}

// cursorUp moves the highlight to the previous activatable row, crossing
// section boundaries and wrapping at the top.
func (m *SettingsModel) cursorUp() {
	m.Cursor = m.nearestActivatable(m.Cursor, -1)
}

// cursorDown moves the highlight to the next activatable row, crossing
// section boundaries and wrapping at the bottom.
func (m *SettingsModel) cursorDown() {
	m.Cursor = m.nearestActivatable(m.Cursor, +1)
}

// nextSection jumps to the first activatable row of the next section.
func (m *SettingsModel) nextSection() {
	section := m.Cursor.Section + 1
	if section >= len(m.List.Sections) {
		section = 0
	}
	m.Cursor = m.nearestActivatable(settings.IndexPath{Section: section, Row: -1}, +1)
}

// nearestActivatable walks row positions in the given direction until one
// responds to activation, wrapping at both ends. Info rows never take the
// cursor. When no row qualifies the cursor stays where it is.
func (m *SettingsModel) nearestActivatable(from settings.IndexPath, dir int) settings.IndexPath {
	total := 0
	for _, section := range m.List.Sections {
		total += len(section.Rows)
	}

	p := from
	for i := 0; i < total; i++ {
		p = m.stepCursor(p, dir)
		if row, ok := m.List.RowAt(p); ok && row.Activatable() {
			return p
		}
	}
	return m.Cursor
}

// stepCursor advances one row position with wraparound, skipping over
// empty sections.
func (m *SettingsModel) stepCursor(p settings.IndexPath, dir int) settings.IndexPath {
	if dir > 0 {
		p.Row++
		for p.Row >= len(m.List.Sections[p.Section].Rows) {
			p.Row = 0
			p.Section++
			if p.Section >= len(m.List.Sections) {
				p.Section = 0
			}
		}
		return p
	}

	p.Row--
	for p.Row < 0 {
		if p.Section > 0 {
			p.Section--
		} else {
			p.Section = len(m.List.Sections) - 1
		}
		p.Row = len(m.List.Sections[p.Section].Rows) - 1
	}
	return p
}

// activate dispatches the highlighted row's action.
func (m SettingsModel) activate() (tea.Model, tea.Cmd) {
	row, ok := m.List.RowAt(m.Cursor)
	if !ok {
		return m, nil
	}
	section := m.List.Sections[m.Cursor.Section]
	m.Status = ""

	switch action := row.Action.(type) {
	case settings.ToggleAction:
		return m.toggle(section.ID, row.ID, action.Key)

	case settings.PickAction:
		req := pickerRequest{
			Context:    PickerContext{SectionID: section.ID, RowID: row.ID, Key: action.Key},
			Title:      action.Title,
			Options:    action.Options,
			CurrentRaw: m.Store.Int(action.Key),
		}
		return m, func() tea.Msg {
			return screenTransitionMsg{screen: ScreenPicker, data: req}
		}

	case settings.EditStringAction:
		m.Editing = true
		m.EditRef = rowRef{sectionID: section.ID, rowID: row.ID}
		m.EditKey = action.Key
		m.Input.Placeholder = action.Prompt
		m.Input.SetValue(m.Store.String(action.Key))
		m.Input.CursorEnd()
		m.Input.Focus()
		return m, textinput.Blink

	case settings.NavigateAction:
		screen := Screen(action.Screen)
		return m, func() tea.Msg {
			return screenTransitionMsg{screen: screen}
		}

	case settings.OpenURLAction:
		return m, openURLCmd(action.URL)

	case settings.CopyAction:
		return m, copyToClipboardCmd(action.Text)

	case settings.SyncAction:
		if m.Syncing {
			return m, nil
		}
		m.Syncing = true
		return m, tea.Batch(m.Spinner.Tick, syncCmd(m.Store.Snapshot()))
	}

	return m, nil
}

// toggle flips a boolean preference and patches the row's switch. The
// write is synchronous; the list is only touched once the store accepted
// the new value.
func (m SettingsModel) toggle(sectionID, rowID uuid.UUID, prefKey string) (tea.Model, tea.Cmd) {
	oldValue := m.Store.Bool(prefKey)
	newValue := !oldValue
	if err := m.Store.SetBool(prefKey, newValue); err != nil {
		m.Status = fmt.Sprintf("Could not save %s: %v", prefKey, err)
		m.StatusError = true
		return m, nil
	}
	logging.LogPrefChange(prefKey, oldValue, newValue)
	m.List.SetToggle(sectionID, rowID, newValue)
	return m, nil
}

// updateEditor handles input while a string preference is being edited
// inline.
func (m SettingsModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.Editing = false
			m.Input.Blur()
			return m, nil

		case "enter":
			return m.commitEdit()
		}
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// commitEdit persists the edited value and patches the row's detail.
func (m SettingsModel) commitEdit() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.Input.Value())
	oldValue := m.Store.String(m.EditKey)
	m.Editing = false
	m.Input.Blur()

	if value == oldValue {
		return m, nil
	}
	if err := m.Store.SetString(m.EditKey, value); err != nil {
		m.Status = fmt.Sprintf("Could not save %s: %v", m.EditKey, err)
		m.StatusError = true
		return m, nil
	}
	logging.LogPrefChange(m.EditKey, oldValue, value)
	m.List.PatchDetail(m.EditRef.sectionID, m.EditRef.rowID, value)
	return m, nil
}

// applyPickedOption persists a picker choice and patches the originating
// row's detail text. The row is re-located by UUID; when it no longer
// exists the preference is still written but the list stays untouched.
func (m SettingsModel) applyPickedOption(msg optionPickedMsg) SettingsModel {
	oldValue := m.Store.Int(msg.context.Key)
	if err := m.Store.SetInt(msg.context.Key, msg.option.Raw()); err != nil {
		m.Status = fmt.Sprintf("Could not save %s: %v", msg.context.Key, err)
		m.StatusError = true
		return m
	}
	logging.LogPrefChange(msg.context.Key, oldValue, msg.option.Raw())

	if !m.List.PatchDetail(msg.context.SectionID, msg.context.RowID, msg.option.Label()) {
		logging.Debug("Settings row gone before detail patch",
			zap.String("key", msg.context.Key),
			zap.String("label", msg.option.Label()))
	}
	return m
}

// setPasscodeState patches the passcode row after the passcode screen
// changed it.
func (m SettingsModel) setPasscodeState(on bool) SettingsModel {
	detail := "Off"
	if on {
		detail = "On"
	}
	m.List.PatchDetail(m.Refs.passcode.sectionID, m.Refs.passcode.rowID, detail)
	return m
}

// discoverInstanceCmd scans for a running brim instance to show in the
// sync section.
func discoverInstanceCmd() tea.Cmd {
	return func() tea.Msg {
		instances, err := discovery.QuickScan()
		if err != nil || len(instances) == 0 {
			return instanceFoundMsg{}
		}
		return instanceFoundMsg{name: instances[0].Name}
	}
}

// syncCmd pushes a settings snapshot to the first discovered brim
// instance.
func syncCmd(values map[string]any) tea.Cmd {
	return func() tea.Msg {
		instances, err := discovery.QuickScan()
		if err != nil {
			return syncCompleteMsg{err: err}
		}
		if len(instances) == 0 {
			return syncCompleteMsg{err: fmt.Errorf("no running brim instance found")}
		}

		instance := instances[0]
		client := control.NewClient(instance.IP, instance.Port)
		defer client.Close()

		ack, err := client.Push(values)
		if err != nil {
			return syncCompleteMsg{instance: instance.Name, err: err}
		}
		return syncCompleteMsg{instance: instance.Name, applied: ack.Applied}
	}
}

// openURLCmd opens a documentation page in the platform browser.
func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return urlOpenedMsg{url: url, err: urls.Open(url)}
	}
}

// copyToClipboardCmd copies text to the system clipboard.
func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardCopiedMsg{err: clipboard.WriteAll(text)}
	}
}

// View renders the settings screen
func (m SettingsModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// buildContent renders the sectioned list with the inline editor and
// status line.
func (m SettingsModel) buildContent() string {
	var parts []string

	if m.ConfigPath != "" {
		parts = append(parts, SubtitleStyle.Render(" "+m.ConfigPath))
	}

	for si, section := range m.List.Sections {
		if section.Title != "" {
			parts = append(parts, RenderSectionTitle(section.Title))
		}
		for ri, row := range section.Rows {
			selected := si == m.Cursor.Section && ri == m.Cursor.Row
			if m.Editing && selected {
				parts = append(parts, m.renderInlineEditor(row))
				continue
			}
			parts = append(parts, m.renderRow(row, selected))
		}
	}

	if status := m.renderStatusLine(); status != "" {
		parts = append(parts, "", status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderRow renders one settings row as a flat line:
//
//	"→ Label            Value ›"  when selected
//	"  Label            Value ›"  when not selected
func (m SettingsModel) renderRow(row settings.Row, selected bool) string {
	labelStyle := lipgloss.NewStyle().Width(LabelColumnWidth).Foreground(TextColor)
	valueStyle := DetailStyle
	if selected {
		labelStyle = labelStyle.Foreground(HighlightColor).Bold(true)
		valueStyle = lipgloss.NewStyle().Foreground(HighlightColor).Bold(true)
	}

	value := row.Detail
	switch row.Accessory.Kind {
	case settings.AccessoryToggle:
		if row.Accessory.On {
			value = "[✓] On"
		} else {
			value = "[ ] Off"
		}
	case settings.AccessoryDisclosure:
		value += " ›"
	}

	arrow := "  "
	if selected {
		arrow = "→ "
	}

	return lipgloss.JoinHorizontal(lipgloss.Left,
		arrow,
		labelStyle.Render(row.Label),
		valueStyle.Render(value),
	)
}

// renderInlineEditor renders the text editor in place of the row being
// edited.
func (m SettingsModel) renderInlineEditor(row settings.Row) string {
	return InlineEditorStyle().Render(row.Label + ": " + m.Input.View())
}

// renderStatusLine renders the transient status or sync progress line.
func (m SettingsModel) renderStatusLine() string {
	if m.Syncing {
		return StatusInfoStyle.Render(m.Spinner.View() + " Syncing settings...")
	}
	if m.Status == "" {
		return ""
	}
	if m.StatusError {
		return StatusErrorStyle.Render("✗ " + m.Status)
	}
	return StatusOKStyle.Render("✓ " + m.Status)
}
