package tui

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/catalog"
	"github.com/merrow/brim/internal/prefs"
	"github.com/merrow/brim/internal/settings"
)

func newTestSettingsModel(t *testing.T, class DeviceClass) SettingsModel {
	t.Helper()
	return NewSettingsModel(prefs.NewMemoryStore(), "/tmp/brim/settings.yaml", class)
}

// findRow locates a row by its label and fails the test when no such row
// exists.
func findRow(t *testing.T, list *settings.Model, label string) settings.IndexPath {
	t.Helper()
	for si, section := range list.Sections {
		for ri, row := range section.Rows {
			if row.Label == label {
				return settings.IndexPath{Section: si, Row: ri}
			}
		}
	}
	t.Fatalf("row %q not found in settings list", label)
	return settings.IndexPath{}
}

func pressList(t *testing.T, m SettingsModel, msg tea.KeyMsg) (SettingsModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(SettingsModel), cmd
}

func TestBuildSectionsReflectsStoreDefaults(t *testing.T) {
	store := prefs.NewMemoryStore()
	list, _ := BuildSections(store, DeviceClassRegular, "/etc/brim/settings.yaml")

	tests := []struct {
		label      string
		wantDetail string
	}{
		{"Homepage", "brim:start"},
		{"Search Engine", "duckduckgo"},
		{"Show Tabs Bar", "Always show"},
		{"Accept Cookies", "Always"},
		{"Require Passcode", "Off"},
		{"Require Passcode After", "Immediately"},
		{"Password Manager", "Show Picker"},
		{"Config File", "/etc/brim/settings.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p := findRow(t, list, tt.label)
			row, ok := list.RowAt(p)
			if !ok {
				t.Fatalf("RowAt(%+v) not found", p)
			}
			if row.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", row.Detail, tt.wantDetail)
			}
		})
	}
}

func TestBuildSectionsUsesStoredValues(t *testing.T) {
	store := prefs.NewMemoryStore()
	if err := store.SetInt(prefs.KeyTabBarVisibility, 2); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBool(prefs.KeyBlockPopups, false); err != nil {
		t.Fatal(err)
	}

	list, _ := BuildSections(store, DeviceClassRegular, "")

	row, _ := list.RowAt(findRow(t, list, "Show Tabs Bar"))
	if row.Detail != "Never show" {
		t.Errorf("tab bar detail = %q, want Never show", row.Detail)
	}
	row, _ = list.RowAt(findRow(t, list, "Block Pop-up Windows"))
	if row.Accessory.On {
		t.Error("popup toggle on, want off")
	}
}

func TestBuildSectionsClipboardRowByDeviceClass(t *testing.T) {
	store := prefs.NewMemoryStore()

	list, _ := BuildSections(store, DeviceClassRegular, "")
	row, _ := list.RowAt(findRow(t, list, "Offer to Open Copied Links"))
	if row.Accessory.Kind != settings.AccessoryToggle {
		t.Errorf("regular accessory = %v, want %v", row.Accessory.Kind, settings.AccessoryToggle)
	}

	list, _ = BuildSections(store, DeviceClassCompact, "")
	row, _ = list.RowAt(findRow(t, list, "Offer to Open Copied Links"))
	if row.Accessory.Kind != settings.AccessoryButton {
		t.Errorf("compact accessory = %v, want %v", row.Accessory.Kind, settings.AccessoryButton)
	}
	if row.Detail != "Off" {
		t.Errorf("compact detail = %q, want Off", row.Detail)
	}
}

func TestToggleActivationWritesStoreAndPatchesRow(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	m.Cursor = findRow(t, m.List, "Block Pop-up Windows")

	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Store.Bool(prefs.KeyBlockPopups) {
		t.Error("blockPopups still true after toggle")
	}
	row, _ := m.List.RowAt(m.Cursor)
	if row.Accessory.On {
		t.Error("row switch still on after toggle")
	}

	// Toggling again restores the original value.
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Store.Bool(prefs.KeyBlockPopups) {
		t.Error("blockPopups not restored by second toggle")
	}
}

func TestToggleButtonRowOnCompactClass(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassCompact)
	m.Cursor = findRow(t, m.List, "Offer to Open Copied Links")

	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Store.Bool(prefs.KeyOfferClipboardBar) {
		t.Error("offerClipboardBar not written through button row")
	}
	row, _ := m.List.RowAt(m.Cursor)
	if row.Detail != "On" {
		t.Errorf("button detail = %q, want On", row.Detail)
	}
}

func TestOptionRowActivationRequestsPicker(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	if err := m.Store.SetInt(prefs.KeyTabBarVisibility, 1); err != nil {
		t.Fatal(err)
	}
	m.Cursor = findRow(t, m.List, "Show Tabs Bar")

	m, cmd := pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("activation returned no command")
	}
	raw := cmd()
	trans, ok := raw.(screenTransitionMsg)
	if !ok {
		t.Fatalf("activation produced %T, want screenTransitionMsg", raw)
	}
	if trans.screen != ScreenPicker {
		t.Errorf("screen = %q, want %q", trans.screen, ScreenPicker)
	}
	req, ok := trans.data.(pickerRequest)
	if !ok {
		t.Fatalf("transition data is %T, want pickerRequest", trans.data)
	}

	if req.Context.Key != prefs.KeyTabBarVisibility {
		t.Errorf("request key = %q, want %q", req.Context.Key, prefs.KeyTabBarVisibility)
	}
	// The current value is read from the store at activation time, not
	// from the row.
	if req.CurrentRaw != 1 {
		t.Errorf("CurrentRaw = %d, want 1", req.CurrentRaw)
	}
	if len(req.Options) != 3 {
		t.Errorf("options = %d, want 3", len(req.Options))
	}

	section := m.List.Sections[m.Cursor.Section]
	row, _ := m.List.RowAt(m.Cursor)
	if req.Context.SectionID != section.ID || req.Context.RowID != row.ID {
		t.Error("picker context does not address the activated row")
	}
}

func TestApplyPickedOptionWritesAndPatches(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	p := findRow(t, m.List, "Show Tabs Bar")
	section := m.List.Sections[p.Section]
	row, _ := m.List.RowAt(p)

	opt, ok := catalog.TabBarVisibilityFromRaw(2)
	if !ok {
		t.Fatal("raw 2 is not a tab bar variant")
	}
	m = m.applyPickedOption(optionPickedMsg{
		context: PickerContext{SectionID: section.ID, RowID: row.ID, Key: prefs.KeyTabBarVisibility},
		option:  opt,
	})

	if got := m.Store.Int(prefs.KeyTabBarVisibility); got != 2 {
		t.Errorf("tabBarVisibility = %d, want 2", got)
	}
	row, _ = m.List.RowAt(p)
	if row.Detail != "Never show" {
		t.Errorf("detail = %q, want Never show", row.Detail)
	}
}

func TestApplyPickedOptionAfterSectionRemoved(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	p := findRow(t, m.List, "Show Tabs Bar")
	section := m.List.Sections[p.Section]
	row, _ := m.List.RowAt(p)
	ctx := PickerContext{SectionID: section.ID, RowID: row.ID, Key: prefs.KeyTabBarVisibility}

	if !m.List.RemoveSection(section.ID) {
		t.Fatal("RemoveSection() = false, want true")
	}

	opt, _ := catalog.TabBarVisibilityFromRaw(2)
	m = m.applyPickedOption(optionPickedMsg{context: ctx, option: opt})

	// The preference is written even though the row is gone; the miss is
	// not an error.
	if got := m.Store.Int(prefs.KeyTabBarVisibility); got != 2 {
		t.Errorf("tabBarVisibility = %d, want 2", got)
	}
	if m.StatusError {
		t.Errorf("stale row surfaced an error: %q", m.Status)
	}
}

func TestInlineEditCommitsToStore(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	m.Cursor = findRow(t, m.List, "Search Engine")

	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Editing {
		t.Fatal("activation did not open the inline editor")
	}
	if got := m.Input.Value(); got != "duckduckgo" {
		t.Errorf("editor prefilled with %q, want duckduckgo", got)
	}

	m.Input.SetValue("searx")
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Editing {
		t.Error("editor still open after commit")
	}
	if got := m.Store.String(prefs.KeySearchEngine); got != "searx" {
		t.Errorf("searchEngine = %q, want searx", got)
	}
	row, _ := m.List.RowAt(m.Cursor)
	if row.Detail != "searx" {
		t.Errorf("detail = %q, want searx", row.Detail)
	}
}

func TestInlineEditEscCancels(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	m.Cursor = findRow(t, m.List, "Homepage")

	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m.Input.SetValue("http://example.test")
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.Editing {
		t.Error("editor still open after esc")
	}
	if got := m.Store.String(prefs.KeyHomepageURL); got != "brim:start" {
		t.Errorf("homepageURL = %q, want brim:start", got)
	}
	row, _ := m.List.RowAt(m.Cursor)
	if row.Detail != "brim:start" {
		t.Errorf("detail = %q, want brim:start", row.Detail)
	}
}

func TestCursorCrossesSectionsAndWraps(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)

	// Down from the last row of a section lands on the next section.
	m.Cursor = settings.IndexPath{Section: 0, Row: len(m.List.Sections[0].Rows) - 1}
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != (settings.IndexPath{Section: 1, Row: 0}) {
		t.Errorf("Cursor = %+v, want {1 0}", m.Cursor)
	}

	// Up from the very first row wraps to the last activatable row. The
	// About section holds only info rows, so the cursor lands before it.
	m.Cursor = settings.IndexPath{}
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != findRow(t, m.List, "Copy Diagnostic Info") {
		t.Errorf("Cursor = %+v, want the Copy Diagnostic Info row", m.Cursor)
	}

	// Tab jumps to the head of the next section.
	m.Cursor = settings.IndexPath{Section: 0, Row: 2}
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Cursor != (settings.IndexPath{Section: 1, Row: 0}) {
		t.Errorf("Cursor after tab = %+v, want {1 0}", m.Cursor)
	}
}

func TestCursorSkipsInertRows(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)

	// Down from the last activatable row skips the About info rows and
	// wraps to the top.
	m.Cursor = findRow(t, m.List, "Copy Diagnostic Info")
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != (settings.IndexPath{}) {
		t.Errorf("Cursor = %+v, want {0 0}", m.Cursor)
	}

	// Up over the inert "Running Instance" row lands in the previous
	// section.
	m.Cursor = findRow(t, m.List, "Sync Settings Now")
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != findRow(t, m.List, "Password Manager") {
		t.Errorf("Cursor = %+v, want the Password Manager row", m.Cursor)
	}

	// Tab out of the last activatable section crosses the info-only About
	// section entirely.
	m.Cursor = findRow(t, m.List, "Getting Started")
	m, _ = pressList(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Cursor != (settings.IndexPath{}) {
		t.Errorf("Cursor after tab = %+v, want {0 0}", m.Cursor)
	}
}

func TestRunningInstanceRowPatchedByDiscovery(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)

	row, _ := m.List.RowAt(findRow(t, m.List, "Running Instance"))
	if row.Detail != "Searching..." {
		t.Errorf("initial detail = %q, want Searching...", row.Detail)
	}
	if row.Activatable() {
		t.Error("instance row responds to activation, want inert")
	}

	updated, _ := m.Update(instanceFoundMsg{name: "study"})
	m = updated.(SettingsModel)
	row, _ = m.List.RowAt(findRow(t, m.List, "Running Instance"))
	if row.Detail != "study" {
		t.Errorf("detail after discovery = %q, want study", row.Detail)
	}

	updated, _ = m.Update(instanceFoundMsg{})
	m = updated.(SettingsModel)
	row, _ = m.List.RowAt(findRow(t, m.List, "Running Instance"))
	if row.Detail != "Not found" {
		t.Errorf("detail after empty scan = %q, want Not found", row.Detail)
	}
}

func TestQRequestsQuit(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	_, cmd := pressList(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	raw := cmd()
	if _, ok := raw.(quitMsg); !ok {
		t.Errorf("q produced %T, want quitMsg", raw)
	}
}

func TestNavigationRowRequestsScreen(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	m.Cursor = findRow(t, m.List, "Clear Private Data")

	_, cmd := pressList(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("activation returned no command")
	}
	raw := cmd()
	trans, ok := raw.(screenTransitionMsg)
	if !ok {
		t.Fatalf("activation produced %T, want screenTransitionMsg", raw)
	}
	if trans.screen != ScreenClearData {
		t.Errorf("screen = %q, want %q", trans.screen, ScreenClearData)
	}
	if trans.data != nil {
		t.Errorf("transition data = %v, want nil", trans.data)
	}
}

func TestSyncResultUpdatesStatus(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)
	m.Syncing = true

	updated, _ := m.Update(syncCompleteMsg{instance: "study", applied: 17})
	got := updated.(SettingsModel)
	if got.Syncing {
		t.Error("still syncing after completion")
	}
	if got.Status != "Synced 17 settings to study" {
		t.Errorf("status = %q", got.Status)
	}
	if got.StatusError {
		t.Error("successful sync flagged as error")
	}

	// A successful sync doubles as an instance sighting.
	row, _ := got.List.RowAt(findRow(t, got.List, "Running Instance"))
	if row.Detail != "study" {
		t.Errorf("instance row detail = %q, want study", row.Detail)
	}

	updated, _ = m.Update(syncCompleteMsg{err: errors.New("connection refused")})
	got = updated.(SettingsModel)
	if !got.StatusError {
		t.Error("failed sync not flagged as error")
	}
	if got.Status == "" {
		t.Error("failed sync left no status")
	}
}

func TestSetPasscodeStatePatchesRow(t *testing.T) {
	m := newTestSettingsModel(t, DeviceClassRegular)

	m = m.setPasscodeState(true)
	row, _ := m.List.RowAt(findRow(t, m.List, "Require Passcode"))
	if row.Detail != "On" {
		t.Errorf("detail = %q, want On", row.Detail)
	}

	m = m.setPasscodeState(false)
	row, _ = m.List.RowAt(findRow(t, m.List, "Require Passcode"))
	if row.Detail != "Off" {
		t.Errorf("detail = %q, want Off", row.Detail)
	}
}

func TestDiagnosticInfoNamesPlatformAndConfig(t *testing.T) {
	info := diagnosticInfo("/home/u/.config/brim/settings.yaml")
	if !strings.Contains(info, "/home/u/.config/brim/settings.yaml") {
		t.Errorf("diagnostic info missing config path: %q", info)
	}
	if !strings.Contains(info, runtime.GOOS) {
		t.Errorf("diagnostic info missing platform: %q", info)
	}
}
