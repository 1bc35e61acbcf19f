package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/prefs"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenSettings  Screen = "settings"
	ScreenPicker    Screen = "picker"
	ScreenPasscode  Screen = "passcode"
	ScreenClearData Screen = "cleardata"
)

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
	data   interface{}
}

type goBackMsg struct{}
type quitMsg struct{}

// AppModel is the top-level coordinator model that manages screen
// transitions. The settings list survives every push and pop; sub-screen
// results come back as messages and land as targeted patches.
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	SettingsModel  SettingsModel
	PickerModel    PickerModel
	PasscodeModel  PasscodeModel
	ClearDataModel ClearDataModel

	// Shared application state
	Store prefs.Store

	// UI state
	Width  int
	Height int
}

// NewAppModel creates the application model with the settings screen
// built from the store's current values.
func NewAppModel(store prefs.Store, configPath string, class DeviceClass) AppModel {
	return AppModel{
		CurrentScreen: ScreenSettings,
		SettingsModel: NewSettingsModel(store, configPath, class),
		Store:         store,
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return m.SettingsModel.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.SettingsModel.Width = msg.Width
		m.SettingsModel.Height = msg.Height
		m.PickerModel.Width = msg.Width
		m.PickerModel.Height = msg.Height
		m.PasscodeModel.Width = msg.Width
		m.PasscodeModel.Height = msg.Height
		m.ClearDataModel.Width = msg.Width
		m.ClearDataModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screenTransitionMsg:
		return m.transitionTo(msg.screen, msg.data)

	case goBackMsg:
		return m.goBack()

	case quitMsg:
		return m, tea.Quit

	case optionPickedMsg:
		// Apply the choice to the settings list, then pop the picker.
		m.SettingsModel = m.SettingsModel.applyPickedOption(msg)
		return m.goBack()

	case passcodeChangedMsg:
		m.SettingsModel = m.SettingsModel.setPasscodeState(msg.on)
		return m.goBack()

	case syncCompleteMsg, instanceFoundMsg, urlOpenedMsg, clipboardCopiedMsg:
		// Background work reports to the settings screen even when a
		// sub-screen is up; its patches target rows by UUID.
		updated, cmd := m.SettingsModel.Update(msg)
		m.SettingsModel = updated.(SettingsModel)
		return m, cmd
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenSettings:
		updated, c := m.SettingsModel.Update(msg)
		m.SettingsModel = updated.(SettingsModel)
		cmd = c

	case ScreenPicker:
		updated, c := m.PickerModel.Update(msg)
		m.PickerModel = updated.(PickerModel)
		cmd = c

	case ScreenPasscode:
		updated, c := m.PasscodeModel.Update(msg)
		m.PasscodeModel = updated.(PasscodeModel)
		cmd = c

	case ScreenClearData:
		updated, c := m.ClearDataModel.Update(msg)
		m.ClearDataModel = updated.(ClearDataModel)
		cmd = c
	}

	return m, cmd
}

// transitionTo pushes a new screen. Unknown screen names and malformed
// transition data are ignored rather than surfaced; a navigation row
// pointing nowhere is a no-op.
func (m AppModel) transitionTo(screen Screen, data interface{}) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch screen {
	case ScreenSettings:
		// The settings list is never rebuilt on return; pending patches
		// already landed while the sub-screen was up.

	case ScreenPicker:
		req, ok := data.(pickerRequest)
		if !ok {
			return m, nil
		}
		m.PickerModel = NewPickerModel(req)
		m.PickerModel.Width = m.Width
		m.PickerModel.Height = m.Height
		cmd = m.PickerModel.Init()

	case ScreenPasscode:
		m.PasscodeModel = NewPasscodeModel(m.Store)
		m.PasscodeModel.Width = m.Width
		m.PasscodeModel.Height = m.Height
		cmd = m.PasscodeModel.Init()

	case ScreenClearData:
		m.ClearDataModel = NewClearDataModel(m.Store)
		m.ClearDataModel.Width = m.Width
		m.ClearDataModel.Height = m.Height
		cmd = m.ClearDataModel.Init()

	default:
		return m, nil
	}

	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen
	return m, cmd
}

// goBack returns to the settings screen, or quits when already there.
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	if m.CurrentScreen == ScreenSettings {
		return m, tea.Quit
	}
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = ScreenSettings
	if m.SettingsModel.Syncing {
		// Restart the spinner; its tick chain broke while the sub-screen
		// had the update loop.
		return m, m.SettingsModel.Spinner.Tick
	}
	return m, nil
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenPicker:
		return m.PickerModel.View()
	case ScreenPasscode:
		return m.PasscodeModel.View()
	case ScreenClearData:
		return m.ClearDataModel.View()
	default:
		return m.SettingsModel.View()
	}
}

// Run starts the interactive settings application over the given store
// and blocks until the user quits.
func Run(store prefs.Store, configPath string) error {
	model := NewAppModel(store, configPath, DetectDeviceClass())

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("settings ui failed: %w", err)
	}
	return nil
}
