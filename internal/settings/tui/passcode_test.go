package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/merrow/brim/internal/prefs"
)

func pressPasscode(t *testing.T, m PasscodeModel, msg tea.KeyMsg) (PasscodeModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(PasscodeModel), cmd
}

// submitCode fills the entry field and submits it. The keystrokes in
// between are the text input's business, not ours.
func submitCode(t *testing.T, m PasscodeModel, code string) (PasscodeModel, tea.Cmd) {
	t.Helper()
	m.Input.SetValue(code)
	return pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func seedPasscode(t *testing.T, store prefs.Store, code string) {
	t.Helper()
	const salt = "00112233445566778899aabbccddeeff"
	if err := store.SetString(prefs.KeyPasscodeSalt, salt); err != nil {
		t.Fatal(err)
	}
	if err := store.SetString(prefs.KeyPasscodeHash, hashPasscode(salt, code)); err != nil {
		t.Fatal(err)
	}
}

func TestSetPasscodeFlow(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := NewPasscodeModel(store)

	if got := m.menuItems(); len(got) != 1 || got[0] != "Set Passcode" {
		t.Fatalf("menu = %v, want [Set Passcode]", got)
	}

	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseNew {
		t.Fatalf("phase = %d, want phaseNew", m.phase)
	}

	m, _ = submitCode(t, m, "4711")
	if m.phase != phaseConfirm {
		t.Fatalf("phase = %d, want phaseConfirm", m.phase)
	}

	m, cmd := submitCode(t, m, "4711")
	if cmd == nil {
		t.Fatal("confirming returned no command")
	}
	raw := cmd()
	msg, ok := raw.(passcodeChangedMsg)
	if !ok {
		t.Fatalf("confirming produced %T, want passcodeChangedMsg", raw)
	}
	if !msg.on {
		t.Error("passcodeChangedMsg.on = false, want true")
	}

	salt := store.String(prefs.KeyPasscodeSalt)
	hash := store.String(prefs.KeyPasscodeHash)
	if salt == "" || hash == "" {
		t.Fatal("salt or hash not persisted")
	}
	if strings.Contains(hash, "4711") {
		t.Error("passcode recoverable from the stored hash")
	}
	if hash != hashPasscode(salt, "4711") {
		t.Error("stored hash does not verify against the entered code")
	}
}

func TestSetPasscodeRejectsShortCodes(t *testing.T) {
	m := NewPasscodeModel(prefs.NewMemoryStore())
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = submitCode(t, m, "12")
	if m.phase != phaseNew {
		t.Errorf("phase = %d, want still phaseNew", m.phase)
	}
	if !strings.Contains(m.Status, "at least") {
		t.Errorf("status = %q, want length complaint", m.Status)
	}
}

func TestSetPasscodeConfirmMismatch(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := NewPasscodeModel(store)
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = submitCode(t, m, "4711")

	m, cmd := submitCode(t, m, "9999")
	if cmd != nil {
		t.Error("mismatched confirmation produced a command")
	}
	if m.phase != phaseNew {
		t.Errorf("phase = %d, want phaseNew for a fresh attempt", m.phase)
	}
	if m.Status == "" {
		t.Error("mismatch left no status")
	}
	if store.String(prefs.KeyPasscodeHash) != "" {
		t.Error("mismatched confirmation persisted a passcode")
	}
}

func TestChangePasscodeVerifiesCurrent(t *testing.T) {
	store := prefs.NewMemoryStore()
	seedPasscode(t, store, "1234")
	oldSalt := store.String(prefs.KeyPasscodeSalt)

	m := NewPasscodeModel(store)
	if got := m.menuItems(); len(got) != 2 {
		t.Fatalf("menu = %v, want change and remove entries", got)
	}

	// "Change Passcode" asks for the current code first.
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseVerify {
		t.Fatalf("phase = %d, want phaseVerify", m.phase)
	}

	m, _ = submitCode(t, m, "0000")
	if m.phase != phaseVerify {
		t.Errorf("phase = %d, want still phaseVerify after wrong code", m.phase)
	}
	if m.Status != "Incorrect passcode" {
		t.Errorf("status = %q, want Incorrect passcode", m.Status)
	}
	if m.Input.Value() != "" {
		t.Error("entry field not cleared after wrong code")
	}

	m, _ = submitCode(t, m, "1234")
	if m.phase != phaseNew {
		t.Fatalf("phase = %d, want phaseNew after verification", m.phase)
	}

	m, _ = submitCode(t, m, "9876")
	m, cmd := submitCode(t, m, "9876")
	if cmd == nil {
		t.Fatal("confirming returned no command")
	}

	salt := store.String(prefs.KeyPasscodeSalt)
	hash := store.String(prefs.KeyPasscodeHash)
	if salt == oldSalt {
		t.Error("salt not rotated on change")
	}
	if hash != hashPasscode(salt, "9876") {
		t.Error("stored hash does not verify against the new code")
	}
	if hash == hashPasscode(salt, "1234") {
		t.Error("old code still verifies after change")
	}
}

func TestRemovePasscodeFlow(t *testing.T) {
	store := prefs.NewMemoryStore()
	seedPasscode(t, store, "1234")

	m := NewPasscodeModel(store)
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.phase != phaseVerify {
		t.Fatalf("phase = %d, want phaseVerify", m.phase)
	}

	m, cmd := submitCode(t, m, "1234")
	if cmd == nil {
		t.Fatal("removal returned no command")
	}
	raw := cmd()
	msg, ok := raw.(passcodeChangedMsg)
	if !ok {
		t.Fatalf("removal produced %T, want passcodeChangedMsg", raw)
	}
	if msg.on {
		t.Error("passcodeChangedMsg.on = true, want false")
	}

	if store.String(prefs.KeyPasscodeHash) != "" {
		t.Error("hash survived removal")
	}
	if store.String(prefs.KeyPasscodeSalt) != "" {
		t.Error("salt survived removal")
	}
}

func TestPasscodeEntryEscReturnsToMenu(t *testing.T) {
	store := prefs.NewMemoryStore()
	seedPasscode(t, store, "1234")

	m := NewPasscodeModel(store)
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.phase != phaseMenu {
		t.Errorf("phase = %d, want phaseMenu", m.phase)
	}
	if m.remove {
		t.Error("remove intent survived esc")
	}
	if m.Status != "" {
		t.Errorf("status = %q, want empty", m.Status)
	}
}

func TestPasscodeMenuEscGoesBack(t *testing.T) {
	m := NewPasscodeModel(prefs.NewMemoryStore())

	_, cmd := pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(goBackMsg); !ok {
		t.Error("esc from the menu did not go back")
	}
}

func TestPasscodeMenuCursorWraps(t *testing.T) {
	store := prefs.NewMemoryStore()
	seedPasscode(t, store, "1234")
	m := NewPasscodeModel(store)

	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 1 {
		t.Errorf("Cursor after wrapping up = %d, want 1", m.Cursor)
	}
	m, _ = pressPasscode(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 0 {
		t.Errorf("Cursor after wrapping down = %d, want 0", m.Cursor)
	}
}

func TestHashPasscode(t *testing.T) {
	if hashPasscode("a", "1234") != hashPasscode("a", "1234") {
		t.Error("hash not deterministic")
	}
	if hashPasscode("a", "1234") == hashPasscode("b", "1234") {
		t.Error("hash ignores the salt")
	}
	if hashPasscode("a", "1234") == hashPasscode("a", "4321") {
		t.Error("hash ignores the code")
	}
	if len(hashPasscode("a", "1234")) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(hashPasscode("a", "1234")))
	}
}
