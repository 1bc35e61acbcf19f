package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/prefs"
)

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	return NewAppModel(prefs.NewMemoryStore(), "/tmp/brim/settings.yaml", DeviceClassRegular)
}

// pressApp sends one key to the coordinator and feeds any immediately
// produced message back into it, the way the runtime would.
func pressApp(t *testing.T, m AppModel, msg tea.KeyMsg) AppModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	app := updated.(AppModel)
	if cmd == nil {
		return app
	}
	if next := cmd(); next != nil {
		updated, _ = app.Update(next)
		app = updated.(AppModel)
	}
	return app
}

func TestPickingTabBarOptionWritesPrefAndPatchesRow(t *testing.T) {
	app := newTestApp(t)
	if got := app.Store.Int(prefs.KeyTabBarVisibility); got != 0 {
		t.Fatalf("initial tabBarVisibility = %d, want 0", got)
	}

	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Show Tabs Bar")
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.CurrentScreen != ScreenPicker {
		t.Fatalf("screen = %q, want %q", app.CurrentScreen, ScreenPicker)
	}
	if app.PickerModel.Selected != 0 {
		t.Errorf("picker pre-marked index %d, want 0", app.PickerModel.Selected)
	}

	// Move to "Never show" and choose it.
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	if got := app.Store.Int(prefs.KeyTabBarVisibility); got != 2 {
		t.Errorf("tabBarVisibility = %d, want 2", got)
	}
	row, _ := app.SettingsModel.List.RowAt(findRow(t, app.SettingsModel.List, "Show Tabs Bar"))
	if row.Detail != "Never show" {
		t.Errorf("row detail = %q, want Never show", row.Detail)
	}
	if app.CurrentScreen != ScreenSettings {
		t.Errorf("screen = %q, want %q after choosing", app.CurrentScreen, ScreenSettings)
	}
}

func TestPickerEscKeepsStoredValue(t *testing.T) {
	app := newTestApp(t)
	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Show Tabs Bar")

	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	if app.CurrentScreen != ScreenSettings {
		t.Fatalf("screen = %q, want %q", app.CurrentScreen, ScreenSettings)
	}
	if got := app.Store.Int(prefs.KeyTabBarVisibility); got != 0 {
		t.Errorf("tabBarVisibility = %d, want unchanged 0", got)
	}
	row, _ := app.SettingsModel.List.RowAt(findRow(t, app.SettingsModel.List, "Show Tabs Bar"))
	if row.Detail != "Always show" {
		t.Errorf("row detail = %q, want Always show", row.Detail)
	}
}

func TestChoiceAfterRowRemovedStillWritesPref(t *testing.T) {
	app := newTestApp(t)
	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Show Tabs Bar")
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	// The originating section disappears while the picker is up.
	if !app.SettingsModel.List.RemoveSection(app.SettingsModel.List.Sections[0].ID) {
		t.Fatal("RemoveSection() = false, want true")
	}

	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyDown})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	if got := app.Store.Int(prefs.KeyTabBarVisibility); got != 2 {
		t.Errorf("tabBarVisibility = %d, want 2", got)
	}
	if app.CurrentScreen != ScreenSettings {
		t.Errorf("screen = %q, want %q", app.CurrentScreen, ScreenSettings)
	}
	if app.SettingsModel.StatusError {
		t.Errorf("stale row surfaced an error: %q", app.SettingsModel.Status)
	}
}

func TestSettingsListSurvivesRoundTrip(t *testing.T) {
	app := newTestApp(t)
	before := app.SettingsModel.List

	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Show Tabs Bar")
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	if app.SettingsModel.List != before {
		t.Error("settings list was rebuilt across a picker round trip")
	}
}

func TestNavigationRowsPushScreens(t *testing.T) {
	tests := []struct {
		label string
		want  Screen
	}{
		{"Require Passcode", ScreenPasscode},
		{"Clear Private Data", ScreenClearData},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			app := newTestApp(t)
			app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, tt.label)

			app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
			if app.CurrentScreen != tt.want {
				t.Fatalf("screen = %q, want %q", app.CurrentScreen, tt.want)
			}

			app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEsc})
			if app.CurrentScreen != ScreenSettings {
				t.Errorf("screen after esc = %q, want %q", app.CurrentScreen, ScreenSettings)
			}
		})
	}
}

func TestPasscodeChangePatchesSettingsRow(t *testing.T) {
	app := newTestApp(t)
	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Require Passcode")
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.CurrentScreen != ScreenPasscode {
		t.Fatalf("screen = %q, want %q", app.CurrentScreen, ScreenPasscode)
	}

	updated, _ := app.Update(passcodeChangedMsg{on: true})
	app = updated.(AppModel)

	if app.CurrentScreen != ScreenSettings {
		t.Errorf("screen = %q, want %q after passcode change", app.CurrentScreen, ScreenSettings)
	}
	row, _ := app.SettingsModel.List.RowAt(findRow(t, app.SettingsModel.List, "Require Passcode"))
	if row.Detail != "On" {
		t.Errorf("passcode row detail = %q, want On", row.Detail)
	}
}

func TestAsyncResultsLandWhileSubScreenUp(t *testing.T) {
	app := newTestApp(t)
	app.SettingsModel.Syncing = true

	app.SettingsModel.Cursor = findRow(t, app.SettingsModel.List, "Clear Private Data")
	app = pressApp(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.CurrentScreen != ScreenClearData {
		t.Fatalf("screen = %q, want %q", app.CurrentScreen, ScreenClearData)
	}

	updated, _ := app.Update(syncCompleteMsg{instance: "study", applied: 4})
	app = updated.(AppModel)

	if app.SettingsModel.Syncing {
		t.Error("sync result did not reach the settings screen")
	}
	if app.CurrentScreen != ScreenClearData {
		t.Errorf("screen = %q, want still %q", app.CurrentScreen, ScreenClearData)
	}

	updated, _ = app.Update(instanceFoundMsg{name: "study"})
	app = updated.(AppModel)
	row, _ := app.SettingsModel.List.RowAt(findRow(t, app.SettingsModel.List, "Running Instance"))
	if row.Detail != "study" {
		t.Errorf("instance row detail = %q, want study", row.Detail)
	}
}

func TestUnknownScreenTransitionIgnored(t *testing.T) {
	app := newTestApp(t)

	updated, cmd := app.Update(screenTransitionMsg{screen: Screen("bookmarks")})
	app = updated.(AppModel)
	if cmd != nil {
		t.Error("unknown screen produced a command")
	}
	if app.CurrentScreen != ScreenSettings {
		t.Errorf("screen = %q, want %q", app.CurrentScreen, ScreenSettings)
	}
}

func TestMalformedPickerDataIgnored(t *testing.T) {
	app := newTestApp(t)

	updated, _ := app.Update(screenTransitionMsg{screen: ScreenPicker, data: "not a request"})
	app = updated.(AppModel)
	if app.CurrentScreen != ScreenSettings {
		t.Errorf("screen = %q, want %q", app.CurrentScreen, ScreenSettings)
	}
}

func TestWindowSizePropagatesToAllScreens(t *testing.T) {
	app := newTestApp(t)

	updated, _ := app.Update(tea.WindowSizeMsg{Width: 132, Height: 43})
	app = updated.(AppModel)

	if app.Width != 132 || app.Height != 43 {
		t.Errorf("app size = %dx%d, want 132x43", app.Width, app.Height)
	}
	for name, got := range map[string]int{
		"settings":  app.SettingsModel.Width,
		"picker":    app.PickerModel.Width,
		"passcode":  app.PasscodeModel.Width,
		"cleardata": app.ClearDataModel.Width,
	} {
		if got != 132 {
			t.Errorf("%s width = %d, want 132", name, got)
		}
	}
}

func TestCtrlCQuits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestQQuitsFromSettings(t *testing.T) {
	app := newTestApp(t)

	updated, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	app = updated.(AppModel)
	if cmd == nil {
		t.Fatal("q returned no command")
	}

	// The settings screen asks to leave; the coordinator turns that into
	// a quit.
	_, cmd = app.Update(cmd())
	if cmd == nil {
		t.Fatal("quit request produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit request did not quit")
	}
}
